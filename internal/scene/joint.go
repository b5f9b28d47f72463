package scene

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

// Joint is a 6-DOF constraint between a body and the owner. All axes start
// locked with zero drives, which holds the body where the joint was built.
type Joint struct {
	body            *Body
	motion          [6]host.Motion
	drives          [5]host.Drive
	targetRotation  quat.Number
	targetPosition  r3.Vec
	anchor          r3.Vec
	connectedAnchor r3.Vec
	rest            quat.Number
	velocity        r3.Vec
	writes          int
}

func NewJoint() *Joint {
	return &Joint{
		targetRotation: geom.Identity(),
		rest:           geom.Identity(),
	}
}

func (j *Joint) SetDrive(ch host.DriveChannel, d host.Drive) {
	j.drives[ch] = d
	j.writes++
}

func (j *Joint) SetMotion(axis host.Axis, m host.Motion) { j.motion[axis] = m }
func (j *Joint) SetTargetRotation(q quat.Number)         { j.targetRotation = q }
func (j *Joint) SetTargetPosition(p r3.Vec)              { j.targetPosition = p }
func (j *Joint) SetAnchor(p r3.Vec)                      { j.anchor = p }
func (j *Joint) SetConnectedAnchor(p r3.Vec)             { j.connectedAnchor = p }

func (j *Joint) Motion(axis host.Axis) host.Motion     { return j.motion[axis] }
func (j *Joint) Drive(ch host.DriveChannel) host.Drive { return j.drives[ch] }
func (j *Joint) TargetRotation() quat.Number           { return j.targetRotation }
func (j *Joint) TargetPosition() r3.Vec                { return j.targetPosition }
func (j *Joint) Anchor() r3.Vec                        { return j.anchor }
func (j *Joint) ConnectedAnchor() r3.Vec               { return j.connectedAnchor }
func (j *Joint) Velocity() r3.Vec                      { return j.velocity }

// DriveWrites counts SetDrive calls, for checking that drives are rewritten
// in full.
func (j *Joint) DriveWrites() int { return j.writes }

// Rest is the body rotation captured when the joint was linked.
func (j *Joint) Rest() quat.Number { return j.rest }

// Free reports whether every linear axis is unconstrained.
func (j *Joint) Free() bool {
	for _, ax := range []host.Axis{host.AxisX, host.AxisY, host.AxisZ} {
		if j.motion[ax] != host.MotionFree {
			return false
		}
	}
	return true
}

// Rotation is the body rotation the angular drive settles at.
func (j *Joint) Rotation() quat.Number {
	return geom.Mul(j.rest, geom.Inverse(j.targetRotation))
}

// Goal is the body position that puts the anchor on the connected anchor
// plus target offset, for body rotation q.
func (j *Joint) Goal(q quat.Number) r3.Vec {
	return r3.Sub(r3.Add(j.connectedAnchor, j.targetPosition), geom.Rotate(q, j.anchor))
}

func (j *Joint) angularDriven() bool {
	if j.motion[host.AxisAngularX] == host.MotionLocked {
		return false
	}
	return j.drives[host.DriveAngularX].PositionSpring > 0 || j.drives[host.DriveAngularYZ].PositionSpring > 0
}
