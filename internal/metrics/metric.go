package metrics

import (
	"github.com/san-kum/animattach/internal/geom"
)

// Sample is one dependent's state after a tick: where it is and, when the
// engine propagated it, where it was told to go.
type Sample struct {
	Tick       int
	Time       float64
	Body       string
	Propagated bool
	Actual     geom.Pose
	Target     geom.Pose
}

// PositionError is the distance between actual and target position, zero
// for samples that were not propagated.
func (s Sample) PositionError() float64 {
	if !s.Propagated {
		return 0
	}
	return geom.Distance(s.Actual.Position, s.Target.Position)
}

// AngleError is the rotation between actual and target in radians.
func (s Sample) AngleError() float64 {
	if !s.Propagated {
		return 0
	}
	return geom.Angle(s.Actual.Rotation, s.Target.Rotation)
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Default returns the metric set every run records.
func Default(settleTolerance float64, maxForce, spring float64) []Metric {
	return []Metric{
		NewTrackingError(),
		NewPeakError(),
		NewSettled(settleTolerance),
		NewDriveEffort(maxForce, spring),
	}
}
