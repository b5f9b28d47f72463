package scene

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
	"github.com/san-kum/animattach/internal/stabilize"
)

// File is the YAML form of a scene.
type File struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Owner       OwnerSpec       `yaml:"owner"`
	Transforms  []TransformSpec `yaml:"transforms,omitempty"`
	Nodes       []NodeSpec      `yaml:"nodes,omitempty"`
	Geometries  []GeometrySpec  `yaml:"geometries,omitempty"`
	Tracks      []TrackSpec     `yaml:"tracks,omitempty"`
	Dependents  []DependentSpec `yaml:"dependents,omitempty"`
	Events      []EventSpec     `yaml:"events,omitempty"`
}

type OwnerSpec struct {
	ID      string  `yaml:"id"`
	Rescale float64 `yaml:"rescale,omitempty"`
	// Parent names a dependent that is the owner's structural parent.
	Parent string `yaml:"parent,omitempty"`
	Strut  string `yaml:"strut,omitempty"`
}

type TransformSpec struct {
	Name     string    `yaml:"name"`
	Parent   string    `yaml:"parent,omitempty"`
	Position []float64 `yaml:"position,omitempty"`
	Rotation []float64 `yaml:"rotation,omitempty"`
	Scale    []float64 `yaml:"scale,omitempty"`
}

type NodeSpec struct {
	Name      string `yaml:"name"`
	Transform string `yaml:"transform,omitempty"`
}

type GeometrySpec struct {
	Name         string    `yaml:"name"`
	Transform    string    `yaml:"transform"`
	Center       []float64 `yaml:"center,omitempty"`
	Size         []float64 `yaml:"size"`
	OriginInside bool      `yaml:"origin_inside,omitempty"`
}

type TrackSpec struct {
	Transform string    `yaml:"transform"`
	Axis      []float64 `yaml:"axis"`
	From      float64   `yaml:"from"`
	To        float64   `yaml:"to"`
	Start     float64   `yaml:"start,omitempty"`
	Duration  float64   `yaml:"duration"`
	Mode      string    `yaml:"mode,omitempty"`
	Translate bool      `yaml:"translate,omitempty"`
}

type DependentSpec struct {
	ID       string    `yaml:"id"`
	Kind     string    `yaml:"kind"`
	Node     string    `yaml:"node,omitempty"`
	Position []float64 `yaml:"position,omitempty"`
	Rotation []float64 `yaml:"rotation,omitempty"`
	Contact  []float64 `yaml:"contact,omitempty"`
	Mass     float64   `yaml:"mass,omitempty"`
	// Physical dependents are joint-linked to the owner; others are
	// parented to the owner root and posed kinematically.
	Physical bool   `yaml:"physical"`
	NoJoint  bool   `yaml:"no_joint,omitempty"`
	Strut    string `yaml:"strut,omitempty"`
	Detached bool   `yaml:"detached,omitempty"`
}

type EventSpec struct {
	Tick      int     `yaml:"tick"`
	Type      string  `yaml:"type"`
	Body      string  `yaml:"body,omitempty"`
	Transform string  `yaml:"transform,omitempty"`
	Rate      float64 `yaml:"rate,omitempty"`
}

// LoadFile reads and builds a scene from a YAML file.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Scene, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return Build(f)
}

func vec(field string, v []float64, def r3.Vec) (r3.Vec, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return r3.Vec{}, fmt.Errorf("%s: %w", field, ErrBadVector)
	}
}

// Build constructs the scene graph described by f.
func Build(f File) (*Scene, error) {
	if f.Owner.ID == "" {
		return nil, fmt.Errorf("owner id: %w", ErrUnknownBody)
	}
	owner := NewOwner(f.Owner.ID)
	if f.Owner.Rescale != 0 {
		owner.SetRescale(f.Owner.Rescale)
	}
	owner.SetAutoStrut(stabilize.ParseStrutMode(f.Owner.Strut))

	s := newScene(f.Name, f.Description, owner)

	for _, ts := range f.Transforms {
		if err := s.buildTransform(ts); err != nil {
			return nil, err
		}
	}
	for _, ns := range f.Nodes {
		if err := s.buildNode(ns); err != nil {
			return nil, err
		}
	}
	for _, gs := range f.Geometries {
		if err := s.buildGeometry(gs); err != nil {
			return nil, err
		}
	}
	for i, tr := range f.Tracks {
		if err := s.buildTrack(i, tr); err != nil {
			return nil, err
		}
	}
	for _, ds := range f.Dependents {
		if err := s.buildDependent(ds); err != nil {
			return nil, err
		}
	}

	if f.Owner.Parent != "" {
		p, ok := s.byID[f.Owner.Parent]
		if !ok {
			return nil, fmt.Errorf("owner parent %q: %w", f.Owner.Parent, ErrUnknownBody)
		}
		owner.SetParent(p)
	}

	for _, es := range f.Events {
		if err := s.buildEvent(es); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scene) buildTransform(ts TransformSpec) error {
	if _, dup := s.Owner.transforms[ts.Name]; dup || ts.Name == "" {
		return fmt.Errorf("transform %q: %w", ts.Name, ErrDuplicateName)
	}
	var parent *Transform
	if ts.Parent != "" {
		p, ok := s.Owner.Lookup(ts.Parent)
		if !ok {
			return fmt.Errorf("transform %q parent %q: %w", ts.Name, ts.Parent, ErrUnknownTransform)
		}
		parent = p
	}

	pos, err := vec(ts.Name+".position", ts.Position, r3.Vec{})
	if err != nil {
		return err
	}
	euler, err := vec(ts.Name+".rotation", ts.Rotation, r3.Vec{})
	if err != nil {
		return err
	}
	scale, err := vec(ts.Name+".scale", ts.Scale, r3.Vec{X: 1, Y: 1, Z: 1})
	if err != nil {
		return err
	}

	t := s.Owner.AddTransform(ts.Name, parent)
	t.SetLocalPose(pos, geom.Euler(euler))
	t.SetScale(scale)
	return nil
}

func (s *Scene) buildNode(ns NodeSpec) error {
	if _, dup := s.Owner.SceneNode(ns.Name); dup {
		return fmt.Errorf("node %q: %w", ns.Name, ErrDuplicateName)
	}
	var t *Transform
	if ns.Transform != "" {
		var ok bool
		if t, ok = s.Owner.Lookup(ns.Transform); !ok {
			return fmt.Errorf("node %q transform %q: %w", ns.Name, ns.Transform, ErrUnknownTransform)
		}
	}
	s.Owner.AddNode(NewNode(ns.Name, t))
	return nil
}

func (s *Scene) buildGeometry(gs GeometrySpec) error {
	t, ok := s.Owner.Lookup(gs.Transform)
	if !ok {
		return fmt.Errorf("geometry %q transform %q: %w", gs.Name, gs.Transform, ErrUnknownTransform)
	}
	center, err := vec(gs.Name+".center", gs.Center, r3.Vec{})
	if err != nil {
		return err
	}
	size, err := vec(gs.Name+".size", gs.Size, r3.Vec{X: 1, Y: 1, Z: 1})
	if err != nil {
		return err
	}
	box := NewBox(gs.Name, t, center, size)
	box.SetOriginInside(gs.OriginInside)
	s.Owner.AddGeometry(box)
	return nil
}

func (s *Scene) buildTrack(i int, ts TrackSpec) error {
	t, ok := s.Owner.Lookup(ts.Transform)
	if !ok {
		return fmt.Errorf("track %d transform %q: %w", i, ts.Transform, ErrUnknownTransform)
	}
	axis, err := vec(fmt.Sprintf("track %d axis", i), ts.Axis, geom.Up)
	if err != nil {
		return err
	}
	if r3.Norm(axis) == 0 {
		return fmt.Errorf("track %d: zero axis: %w", i, ErrBadTrack)
	}
	mode, ok := ParseTrackMode(ts.Mode)
	if !ok {
		return fmt.Errorf("track %d mode %q: %w", i, ts.Mode, ErrBadTrack)
	}

	tr := &Track{
		Target:    t,
		Axis:      axis,
		From:      ts.From,
		To:        ts.To,
		Start:     ts.Start,
		Duration:  ts.Duration,
		Mode:      mode,
		Translate: ts.Translate,
	}
	tr.Bind()
	s.tracks = append(s.tracks, tr)
	return nil
}

func (s *Scene) buildDependent(ds DependentSpec) error {
	if _, dup := s.byID[ds.ID]; dup || ds.ID == "" || ds.ID == s.Owner.id {
		return fmt.Errorf("dependent %q: %w", ds.ID, ErrDuplicateName)
	}
	kind, ok := host.ParseKind(ds.Kind)
	if !ok {
		return fmt.Errorf("dependent %q kind %q: %w", ds.ID, ds.Kind, ErrUnknownKind)
	}

	pos, err := vec(ds.ID+".position", ds.Position, r3.Vec{})
	if err != nil {
		return err
	}
	euler, err := vec(ds.ID+".rotation", ds.Rotation, r3.Vec{})
	if err != nil {
		return err
	}
	contact, err := vec(ds.ID+".contact", ds.Contact, r3.Vec{})
	if err != nil {
		return err
	}

	var parent *Transform
	if !ds.Physical {
		parent = s.Owner.transform
	}
	t := NewTransform(ds.ID, parent)
	t.SetLocalPose(pos, geom.Euler(euler))

	b := NewBody(ds.ID, t)
	b.physical = ds.Physical
	b.parent = s.Owner.Body
	if ds.Mass > 0 {
		b.mass = ds.Mass
	}
	b.SetContactPoint(contact)
	b.SetAutoStrut(stabilize.ParseStrutMode(ds.Strut))
	if ds.Physical && !ds.NoJoint {
		b.SetJoint(NewJoint())
	}

	if ds.Node != "" {
		n, ok := s.Owner.SceneNode(ds.Node)
		if !ok {
			return fmt.Errorf("dependent %q node %q: %w", ds.ID, ds.Node, ErrUnknownNode)
		}
		s.nodeOf[ds.ID] = n
	}

	s.addDependent(b, kind, !ds.Detached)
	return nil
}

func (s *Scene) buildEvent(es EventSpec) error {
	ev := Event{Tick: es.Tick, Type: EventType(es.Type), Body: es.Body, Transform: es.Transform, Rate: es.Rate}
	switch ev.Type {
	case EventAttach, EventDetach, EventJettison, EventReorder:
		if _, ok := s.byID[ev.Body]; !ok {
			return fmt.Errorf("event %s body %q: %w", ev.Type, ev.Body, ErrUnknownBody)
		}
	case EventBreak:
		if _, ok := s.Owner.Lookup(ev.Transform); !ok {
			return fmt.Errorf("event %s transform %q: %w", ev.Type, ev.Transform, ErrUnknownTransform)
		}
	case EventWarp:
	default:
		return fmt.Errorf("event %q: %w", es.Type, ErrUnknownEvent)
	}
	s.events = append(s.events, ev)
	return nil
}
