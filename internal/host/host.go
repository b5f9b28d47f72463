// Package host declares what the attachment core needs from the surrounding
// engine: the transform hierarchy, bodies and their joints, attach nodes,
// contact geometry and the attach/detach event stream.
//
// Implementations must return an untyped nil (not a typed nil pointer) from
// any method documented as possibly returning nil, since the core compares
// references by identity.
package host

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is one link of the host's scene graph.
type Transform interface {
	Name() string
	LocalPosition() r3.Vec
	LocalRotation() quat.Number
	LocalScale() r3.Vec
	// Parent returns nil for roots and for detached sub-assemblies.
	Parent() Transform
	SetLocalPose(position r3.Vec, rotation quat.Number)
}

// Body is a rigid part: an owner or one of its dependents.
type Body interface {
	ID() string
	Transform() Transform
	RescaleFactor() float64
	// Parent is the structural parent body, nil at the root.
	Parent() Body
	// Joint is the compliant constraint linking this body to its parent, nil
	// when the body is parented kinematically or the joint is not built yet.
	Joint() Joint
	// ContactPoint is the recorded surface attachment point in world space.
	ContactPoint() r3.Vec
}

// Kind says how a dependent is attached to its owner.
type Kind int

const (
	KindNode Kind = iota
	KindSurface
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "node":
		return KindNode, true
	case "surface":
		return KindSurface, true
	default:
		return KindNode, false
	}
}

// Attachment is one entry of an owner's ordered dependent list.
type Attachment struct {
	Body Body
	Kind Kind
}

// Node is a named attach point on the owner.
type Node interface {
	Name() string
	// Transform may be nil for nodes not backed by model geometry.
	Transform() Transform
	Attached() Body
	// SetPose publishes the node's resolved position and forward direction
	// in owner space.
	SetPose(position, orientation r3.Vec)
}

// Geometry is a candidate contact surface on the owner.
type Geometry interface {
	Name() string
	Transform() Transform
	// Origin is the geometry's own origin in world space.
	Origin() r3.Vec
	// ClosestPoint returns the closest point on or in the geometry to p,
	// both in world space. Some implementations return Origin for points
	// inside the volume.
	ClosestPoint(p r3.Vec) r3.Vec
}

// Owner is a body that carries animated attachment frames.
type Owner interface {
	Body
	Attachments() []Attachment
	Nodes() []Node
	Geometries() []Geometry
	// FindTransform looks a model transform up by name, nil if absent.
	FindTransform(name string) Transform
}

// NodeFor returns the owner's node whose attached body is b, or nil.
func NodeFor(o Owner, b Body) Node {
	if b == nil {
		return nil
	}
	for _, n := range o.Nodes() {
		if n.Attached() == b {
			return n
		}
	}
	return nil
}

// GeometryByName returns the owner's geometry called name, or nil.
func GeometryByName(o Owner, name string) Geometry {
	for _, g := range o.Geometries() {
		if g.Name() == name {
			return g
		}
	}
	return nil
}
