// Package scene is an in-memory host for the attachment engine: a transform
// tree rooted at the owner, keyframed animation tracks, box colliders, attach
// nodes and dependents that are either posed kinematically or pulled along
// by spring/damper joints.
//
// Scenes are built from YAML (see File) and driven tick by tick by the
// runner in internal/sim.
package scene

import (
	"fmt"
	"sort"

	"github.com/san-kum/animattach/internal/dynamo"
	"github.com/san-kum/animattach/internal/host"
	"github.com/san-kum/animattach/internal/stabilize"
)

type EventType string

const (
	EventAttach   EventType = "attach"
	EventDetach   EventType = "detach"
	EventJettison EventType = "jettison"
	EventReorder  EventType = "reorder"
	EventBreak    EventType = "break"
	EventWarp     EventType = "warp"
)

// Event is a scripted change applied before the engine runs on Tick.
//
// attach/detach go through the editor event stream; jettison and reorder
// change the dependent list silently; break unparents a transform so frames
// below it stop resolving; warp sets the time-warp rate.
type Event struct {
	Tick      int
	Type      EventType
	Body      string
	Transform string
	Rate      float64
}

type Scene struct {
	Name        string
	Description string
	Owner       *Owner

	bodies []*Body
	byID   map[string]*Body
	kinds  map[string]host.Kind
	nodeOf map[string]*Node
	tracks []*Track
	events []Event

	time float64
	warp float64
}

func newScene(name, description string, owner *Owner) *Scene {
	return &Scene{
		Name:        name,
		Description: description,
		Owner:       owner,
		byID:        make(map[string]*Body),
		kinds:       make(map[string]host.Kind),
		nodeOf:      make(map[string]*Node),
		warp:        1,
	}
}

func (s *Scene) addDependent(b *Body, kind host.Kind, attached bool) {
	s.bodies = append(s.bodies, b)
	s.byID[b.id] = b
	s.kinds[b.id] = kind
	if attached {
		s.attach(b)
	}
}

func (s *Scene) attach(b *Body) host.Attachment {
	if n, ok := s.nodeOf[b.id]; ok {
		n.Attach(b)
	}
	return s.Owner.Attach(b, s.kinds[b.id])
}

func (s *Scene) Time() float64     { return s.time }
func (s *Scene) WarpRate() float64 { return s.warp }
func (s *Scene) Tracks() []*Track  { return s.tracks }

// Dependents returns every dependent body declared by the scene, attached or
// not, in declaration order.
func (s *Scene) Dependents() []*Body { return s.bodies }

func (s *Scene) Body(id string) (*Body, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// Advance moves the animation clock forward and poses every tracked
// transform.
func (s *Scene) Advance(dt float64) {
	s.time += dt
	for _, tr := range s.tracks {
		tr.Apply(s.time)
	}
}

// AnyMoving reports whether any track is animating at the current time.
func (s *Scene) AnyMoving() bool {
	for _, tr := range s.tracks {
		if tr.Moving(s.time) {
			return true
		}
	}
	return false
}

// Step integrates every joint-linked dependent by dt.
func (s *Scene) Step(integ dynamo.Integrator, dt float64) error {
	for _, b := range s.bodies {
		j := b.joint
		if j == nil || b.transform.parent != nil {
			continue
		}
		if err := j.Step(integ, s.time, dt); err != nil {
			return fmt.Errorf("step %s: %w", b.id, err)
		}
	}
	return nil
}

// Strutted lists the owner and all dependents for the strut coordinator.
func (s *Scene) Strutted() []stabilize.Strutted {
	out := make([]stabilize.Strutted, 0, len(s.bodies)+1)
	out = append(out, s.Owner.Body)
	for _, b := range s.bodies {
		out = append(out, b)
	}
	return out
}

// UpdateOriginalPositions snapshots every body's current pose as the pose
// it returns to on reload.
func (s *Scene) UpdateOriginalPositions() {
	s.Owner.UpdateOriginalPose()
	for _, b := range s.bodies {
		b.UpdateOriginalPose()
	}
}

// EventsAt returns the scripted events for tick in declaration order.
func (s *Scene) EventsAt(tick int) []Event {
	var out []Event
	for _, ev := range s.events {
		if ev.Tick == tick {
			out = append(out, ev)
		}
	}
	return out
}

// LastEventTick is the highest tick any event is scheduled on, -1 without
// events.
func (s *Scene) LastEventTick() int {
	ticks := make([]int, 0, len(s.events))
	for _, ev := range s.events {
		ticks = append(ticks, ev.Tick)
	}
	if len(ticks) == 0 {
		return -1
	}
	sort.Ints(ticks)
	return ticks[len(ticks)-1]
}

// Apply performs ev and returns the editor events the attachment engine
// should see.
func (s *Scene) Apply(ev Event) ([]host.Event, error) {
	switch ev.Type {
	case EventAttach:
		b, err := s.lookup(ev.Body)
		if err != nil {
			return nil, err
		}
		for _, a := range s.Owner.attachments {
			if a.Body == host.Body(b) {
				return nil, nil
			}
		}
		a := s.attach(b)
		return []host.Event{{Kind: host.EventAttached, Attachment: a}}, nil

	case EventDetach:
		b, err := s.lookup(ev.Body)
		if err != nil {
			return nil, err
		}
		a, ok := s.Owner.Detach(b)
		if !ok {
			return nil, nil
		}
		return []host.Event{{Kind: host.EventDetached, Attachment: a}}, nil

	case EventJettison:
		b, err := s.lookup(ev.Body)
		if err != nil {
			return nil, err
		}
		s.Owner.Detach(b)
		b.SetJoint(nil)
		return nil, nil

	case EventReorder:
		b, err := s.lookup(ev.Body)
		if err != nil {
			return nil, err
		}
		if _, ok := s.Owner.Detach(b); ok {
			s.attach(b)
		}
		return nil, nil

	case EventBreak:
		t, ok := s.Owner.Lookup(ev.Transform)
		if !ok {
			return nil, fmt.Errorf("break %q: %w", ev.Transform, ErrUnknownTransform)
		}
		t.SetParent(nil)
		return nil, nil

	case EventWarp:
		s.warp = ev.Rate
		return nil, nil
	}
	return nil, fmt.Errorf("event %q: %w", ev.Type, ErrUnknownEvent)
}

func (s *Scene) lookup(id string) (*Body, error) {
	b, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("body %q: %w", id, ErrUnknownBody)
	}
	return b, nil
}
