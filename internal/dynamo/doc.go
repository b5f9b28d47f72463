// Package dynamo provides the numerical primitives the reference host uses
// to advance joint-driven bodies.
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//
// # Example
//
//	dyn := &scene.JointDynamics{Mass: mass, Drives: drives}
//	integ := integrators.NewRK4()
//	x = integ.Step(dyn, x, target, t, dt)
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT thread-safe.
package dynamo
