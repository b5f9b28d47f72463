// Package geom provides the rigid-transform primitives shared by the
// attachment core and the reference host.
//
// Vectors are [r3.Vec] and rotations are unit quaternions ([quat.Number])
// from gonum. Rotations act on vectors as q·v·q*, so composing a then b is
// Mul(a, b) and applies b first.
//
//   - [Pose]: rotation + position, with a derived forward orientation
//   - [Compose] / [Pose.Inverse]: rotation-then-translation semantics
//   - [FormatVec], [ParseVec], [FormatQuat], [ParseQuat]: persisted encoding
//
// # Conventions
//
// Y is up and +Z is forward ([Forward]). A positive rotation about +Y takes
// +X to -Z.
package geom
