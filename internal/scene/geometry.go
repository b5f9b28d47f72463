package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

// Box is an oriented box collider attached to a transform. Center and Size
// are in the transform's local space.
type Box struct {
	name      string
	transform *Transform
	center    r3.Vec
	size      r3.Vec

	// originInside makes ClosestPoint return the origin for interior
	// points, like mesh colliders in some engines.
	originInside bool
}

func NewBox(name string, transform *Transform, center, size r3.Vec) *Box {
	return &Box{name: name, transform: transform, center: center, size: size}
}

func (b *Box) Name() string { return b.name }

func (b *Box) Transform() host.Transform {
	if b.transform == nil {
		return nil
	}
	return b.transform
}

func (b *Box) SetOriginInside(v bool) { b.originInside = v }

func (b *Box) Origin() r3.Vec {
	if b.transform == nil {
		return r3.Vec{}
	}
	return b.transform.World().Position
}

func (b *Box) ClosestPoint(p r3.Vec) r3.Vec {
	world := geom.IdentityPose()
	if b.transform != nil {
		world = b.transform.World()
	}
	local := world.Inverse().Apply(p)

	half := r3.Scale(0.5, b.size)
	lo := r3.Sub(b.center, half)
	hi := r3.Add(b.center, half)
	clamped := r3.Vec{
		X: math.Max(lo.X, math.Min(hi.X, local.X)),
		Y: math.Max(lo.Y, math.Min(hi.Y, local.Y)),
		Z: math.Max(lo.Z, math.Min(hi.Z, local.Z)),
	}
	if clamped == local && b.originInside {
		return b.Origin()
	}
	return world.Apply(clamped)
}
