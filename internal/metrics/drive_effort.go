package metrics

import (
	"math"
)

// DriveEffort estimates the mean linear drive force a joint spends pulling
// its body toward target: the spring force on the position error, capped at
// the maximum force.
type DriveEffort struct {
	name     string
	maxForce float64
	spring   float64
	sum      float64
	samples  int
}

func NewDriveEffort(maxForce, spring float64) *DriveEffort {
	return &DriveEffort{
		name:     "drive_effort",
		maxForce: maxForce,
		spring:   spring,
	}
}

func (d *DriveEffort) Name() string {
	return d.name
}

func (d *DriveEffort) Observe(s Sample) {
	if !s.Propagated {
		return
	}
	d.sum += math.Min(d.maxForce, d.spring*s.PositionError())
	d.samples++
}

func (d *DriveEffort) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

func (d *DriveEffort) Reset() {
	d.sum = 0
	d.samples = 0
}
