package host

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

type Motion int

const (
	MotionLocked Motion = iota
	MotionLimited
	MotionFree
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisAngularX
	AxisAngularY
	AxisAngularZ
)

// AllAxes lists the six degrees of freedom in order.
var AllAxes = []Axis{AxisX, AxisY, AxisZ, AxisAngularX, AxisAngularY, AxisAngularZ}

type DriveChannel int

const (
	DriveX DriveChannel = iota
	DriveY
	DriveZ
	DriveAngularX
	DriveAngularYZ
)

// AllDrives lists every linear and angular drive channel.
var AllDrives = []DriveChannel{DriveX, DriveY, DriveZ, DriveAngularX, DriveAngularYZ}

// Drive is a spring/damper parameter set. Hosts replace drives wholesale;
// there is no partial update.
type Drive struct {
	MaximumForce   float64
	PositionSpring float64
	PositionDamper float64
}

// Joint is a 6-DOF compliant constraint. Anchor is in the connected (child)
// body's local space; ConnectedAnchor is in the parent body's space.
type Joint interface {
	SetMotion(axis Axis, m Motion)
	SetDrive(ch DriveChannel, d Drive)
	SetTargetRotation(q quat.Number)
	SetTargetPosition(p r3.Vec)
	SetAnchor(p r3.Vec)
	SetConnectedAnchor(p r3.Vec)
}
