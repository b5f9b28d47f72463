package scene

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
	"github.com/san-kum/animattach/internal/stabilize"
)

// Body is a rigid part in the reference host.
type Body struct {
	id        string
	transform *Transform
	rescale   float64
	parent    *Body
	joint     *Joint
	contact   r3.Vec
	mass      float64
	physical  bool
	strut     stabilize.StrutMode
	original  geom.Pose
	released  int
}

func NewBody(id string, transform *Transform) *Body {
	return &Body{
		id:        id,
		transform: transform,
		rescale:   1,
		mass:      1,
		original:  transform.LocalPose(),
	}
}

func (b *Body) ID() string                 { return b.id }
func (b *Body) Transform() host.Transform  { return b.transform }
func (b *Body) RescaleFactor() float64     { return b.rescale }
func (b *Body) ContactPoint() r3.Vec       { return b.contact }
func (b *Body) Mass() float64              { return b.mass }
func (b *Body) Physical() bool             { return b.physical }
func (b *Body) SceneTransform() *Transform { return b.transform }

func (b *Body) Parent() host.Body {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

func (b *Body) Joint() host.Joint {
	if b.joint == nil {
		return nil
	}
	return b.joint
}

// SceneJoint returns the concrete joint, nil for kinematic bodies.
func (b *Body) SceneJoint() *Joint { return b.joint }

func (b *Body) SetContactPoint(p r3.Vec) { b.contact = p }
func (b *Body) SetRescale(f float64)     { b.rescale = f }

// SetJoint links b to the owner through j, or removes the joint when j is
// nil. The joint's rest rotation is b's rotation at link time.
func (b *Body) SetJoint(j *Joint) {
	b.joint = j
	if j != nil {
		j.body = b
		j.rest = b.transform.rotation
	}
}

func (b *Body) AutoStrut() stabilize.StrutMode     { return b.strut }
func (b *Body) SetAutoStrut(m stabilize.StrutMode) { b.strut = m }
func (b *Body) ReleaseAutoStruts()                 { b.released++ }
func (b *Body) Released() int                      { return b.released }
func (b *Body) OriginalPose() geom.Pose            { return b.original }
func (b *Body) UpdateOriginalPose()                { b.original = b.transform.LocalPose() }
