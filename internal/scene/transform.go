package scene

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

// Transform is an in-memory scene-graph node.
type Transform struct {
	name     string
	position r3.Vec
	rotation quat.Number
	scale    r3.Vec
	parent   *Transform
}

func NewTransform(name string, parent *Transform) *Transform {
	return &Transform{
		name:     name,
		rotation: geom.Identity(),
		scale:    r3.Vec{X: 1, Y: 1, Z: 1},
		parent:   parent,
	}
}

func (t *Transform) Name() string               { return t.name }
func (t *Transform) LocalPosition() r3.Vec      { return t.position }
func (t *Transform) LocalRotation() quat.Number { return t.rotation }
func (t *Transform) LocalScale() r3.Vec         { return t.scale }

func (t *Transform) Parent() host.Transform {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

func (t *Transform) SetLocalPose(position r3.Vec, rotation quat.Number) {
	t.position = position
	t.rotation = rotation
}

func (t *Transform) SetScale(s r3.Vec) { t.scale = s }

// SetParent relinks t. A nil parent detaches it from the hierarchy.
func (t *Transform) SetParent(p *Transform) { t.parent = p }

func (t *Transform) LocalPose() geom.Pose {
	return geom.NewPose(t.position, t.rotation)
}

// World composes t up to its root, scaling each local position by the
// parent's local scale.
func (t *Transform) World() geom.Pose {
	if t.parent == nil {
		return t.LocalPose()
	}
	local := geom.NewPose(geom.MulElem(t.parent.scale, t.position), t.rotation)
	return geom.Compose(t.parent.World(), local)
}
