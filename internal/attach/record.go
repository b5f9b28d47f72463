package attach

import (
	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

// Binding tracks whether a record has a dependent body.
type Binding int

const (
	// BindingNone: no dependent. Distinct from a dependent that happens to
	// be the owner's structural parent.
	BindingNone Binding = iota
	// BindingPending: loaded from persisted state, waiting for Sync to hand
	// it a live body.
	BindingPending
	BindingLive
)

func (b Binding) String() string {
	switch b {
	case BindingNone:
		return "none"
	case BindingPending:
		return "pending"
	default:
		return "live"
	}
}

// Record is the attachment state for one dependent body.
type Record struct {
	Kind host.Kind

	anchor    string
	node      host.Node
	frame     host.Transform
	geometry  host.Geometry
	inert     bool
	dependent host.Body
	binding   Binding

	// Offset is the dependent's pose in frame space, frozen at first
	// observation. Rest is the dependent's owner-relative pose at that moment.
	Offset *geom.Pose
	Rest   *geom.Pose
}

func newRecord(a host.Attachment) *Record {
	r := &Record{Kind: a.Kind}
	if a.Body != nil {
		r.dependent = a.Body
		r.binding = BindingLive
	}
	return r
}

// Dependent returns the live dependent body, if any.
func (r *Record) Dependent() (host.Body, bool) {
	if r.binding != BindingLive || r.dependent == nil {
		return nil, false
	}
	return r.dependent, true
}

func (r *Record) Binding() Binding { return r.binding }

// Anchor is the name of the node transform or geometry the record is bound
// to, empty until resolved.
func (r *Record) Anchor() string { return r.anchor }

// Bound reports whether both offset and rest pose are held.
func (r *Record) Bound() bool { return r.Offset != nil && r.Rest != nil }

// Inert reports whether the record's frame has no source transform and will
// never resolve.
func (r *Record) Inert() bool { return r.inert }

// Frame returns the transform the record's attachment frame is read from.
func (r *Record) Frame() host.Transform {
	switch r.Kind {
	case host.KindSurface:
		if r.geometry == nil {
			return nil
		}
		return r.geometry.Transform()
	default:
		return r.frame
	}
}

// Bind captures the offset of body relative to frame and records body as
// the rest pose. It refuses to overwrite an existing offset.
func (r *Record) Bind(frame, body geom.Pose) error {
	if r.Offset != nil {
		return ErrAlreadyBound
	}
	offset := Capture(frame, body)
	rest := body
	r.Offset = &offset
	r.Rest = &rest
	return nil
}

// Clear drops offset and rest pose so the next valid observation captures
// them again.
func (r *Record) Clear() {
	r.Offset = nil
	r.Rest = nil
}

func (r *Record) bindNode(n host.Node) {
	r.node = n
	r.frame = n.Transform()
	if r.frame == nil {
		r.inert = true
		return
	}
	r.anchor = r.frame.Name()
}

func (r *Record) bindGeometry(g host.Geometry) {
	r.geometry = g
	r.anchor = g.Name()
	if g.Transform() == nil {
		r.inert = true
	}
}

// reclassify turns a node record without a node into a surface record that
// will pick its geometry on a later tick.
func (r *Record) reclassify() {
	r.Kind = host.KindSurface
	r.node = nil
	r.frame = nil
	r.anchor = ""
}

func (r *Record) resolved() bool {
	if r.Kind == host.KindSurface {
		return r.geometry != nil
	}
	return r.frame != nil
}
