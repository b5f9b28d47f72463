package scene

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/dynamo"
	"github.com/san-kum/animattach/internal/host"
)

// JointDynamics is the linear part of a driven joint: three independent
// spring/damper axes pulling a point mass toward the goal given as control.
// State is [x, y, z, vx, vy, vz].
type JointDynamics struct {
	Mass   float64
	Drives [3]host.Drive
}

func (d *JointDynamics) StateDim() int   { return 6 }
func (d *JointDynamics) ControlDim() int { return 3 }

func (d *JointDynamics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, 6)
	for i := 0; i < 3; i++ {
		dx[i] = x[3+i]

		dr := d.Drives[i]
		force := dr.PositionSpring*(u[i]-x[i]) - dr.PositionDamper*x[3+i]
		if dr.MaximumForce > 0 {
			force = math.Max(-dr.MaximumForce, math.Min(dr.MaximumForce, force))
		}
		dx[3+i] = force / d.Mass
	}
	return dx
}

// substeps picks a step count that keeps explicit integration of the
// stiffest axis stable.
func (d *JointDynamics) substeps(dt float64) int {
	rate := 0.0
	for _, dr := range d.Drives {
		r := dr.PositionDamper/d.Mass + math.Sqrt(dr.PositionSpring/d.Mass)
		rate = math.Max(rate, r)
	}
	n := int(math.Ceil(dt * rate))
	if n < 1 {
		n = 1
	}
	return n
}

// Step advances the joint's body by dt. Locked joints hold the body still;
// free joints snap rotation to the angular target and integrate position.
func (j *Joint) Step(integ dynamo.Integrator, t, dt float64) error {
	b := j.body
	if b == nil || !j.Free() {
		return nil
	}
	tr := b.transform

	rot := tr.rotation
	if j.angularDriven() {
		rot = j.Rotation()
	}

	dyn := &JointDynamics{
		Mass:   b.mass,
		Drives: [3]host.Drive{j.drives[host.DriveX], j.drives[host.DriveY], j.drives[host.DriveZ]},
	}
	goal := j.Goal(rot)
	u := dynamo.Control{goal.X, goal.Y, goal.Z}
	x := dynamo.State{tr.position.X, tr.position.Y, tr.position.Z, j.velocity.X, j.velocity.Y, j.velocity.Z}

	n := dyn.substeps(dt)
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		x = integ.Step(dyn, x, u, t+float64(i)*h, h)
	}
	if err := dynamo.Check(dyn, x); err != nil {
		return &dynamo.StepError{Time: t, Body: b.id, Wrapped: fmt.Errorf("joint step: %w", err)}
	}

	tr.SetLocalPose(r3.Vec{X: x[0], Y: x[1], Z: x[2]}, rot)
	j.velocity = r3.Vec{X: x[3], Y: x[4], Z: x[5]}
	return nil
}
