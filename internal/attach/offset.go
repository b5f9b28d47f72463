package attach

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

// Capture expresses body, a pose in owner space, in the local space of
// frame. Composing frame with the result reproduces body.
func Capture(frame, body geom.Pose) geom.Pose {
	inv := geom.Inverse(frame.Rotation)
	return geom.NewPose(
		geom.Rotate(inv, r3.Sub(body.Position, frame.Position)),
		geom.Mul(inv, body.Rotation),
	)
}

// Target is the owner-space pose a dependent should have given the current
// frame pose and its captured offset.
func Target(frame, offset geom.Pose) geom.Pose {
	return geom.Compose(frame, offset)
}

// JointTargetRotation is the joint target that turns a body from rest to
// target.
func JointTargetRotation(target, rest geom.Pose) quat.Number {
	return geom.Mul(geom.Inverse(target.Rotation), rest.Rotation)
}

// JointAnchor is the frame origin expressed in the dependent's local space,
// i.e. the translation of the inverse offset. With the connected anchor at
// the frame position, the joint holds the dependent at Target.
func JointAnchor(offset geom.Pose) r3.Vec {
	return offset.Inverse().Position
}

// LocalPose reads a body's current pose relative to its owner.
func LocalPose(b host.Body) geom.Pose {
	t := b.Transform()
	return geom.NewPose(t.LocalPosition(), t.LocalRotation())
}
