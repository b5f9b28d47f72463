package geom

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a rigid transform. Orientation is derived from Rotation and is
// carried along for consumers that only want the forward direction.
type Pose struct {
	Rotation    quat.Number
	Position    r3.Vec
	Orientation r3.Vec
}

func IdentityPose() Pose {
	return Pose{Rotation: Identity(), Orientation: Forward}
}

func NewPose(position r3.Vec, rotation quat.Number) Pose {
	p := Pose{Rotation: rotation, Position: position}
	p.UpdateOrientation()
	return p
}

// UpdateOrientation recomputes Orientation from Rotation.
func (p *Pose) UpdateOrientation() {
	p.Orientation = Rotate(p.Rotation, Forward)
}

// Apply maps a point expressed in p's local space into p's parent space.
func (p Pose) Apply(v r3.Vec) r3.Vec {
	return r3.Add(p.Position, Rotate(p.Rotation, v))
}

func (p Pose) Inverse() Pose {
	inv := Inverse(p.Rotation)
	return NewPose(Rotate(inv, r3.Scale(-1, p.Position)), inv)
}

// Compose returns a∘b: b expressed in a's space, then a applied.
func Compose(a, b Pose) Pose {
	return NewPose(a.Apply(b.Position), Mul(a.Rotation, b.Rotation))
}

// Near reports whether two poses match within tol on both position and
// rotation.
func (p Pose) Near(o Pose, tol float64) bool {
	return NearVec(p.Position, o.Position, tol) && SameRotation(p.Rotation, o.Rotation, tol)
}

func (p Pose) String() string {
	return fmt.Sprintf("%s, %s, %s", FormatVec(p.Position), FormatQuat(p.Rotation), FormatVec(p.Orientation))
}
