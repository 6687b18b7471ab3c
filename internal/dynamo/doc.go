// Package dynamo provides the core state primitives for one-dimensional
// molecular dynamics.
//
// The package defines the pieces every other package builds on:
//
//   - [State]: vector of per-particle scalars (positions, velocities, forces)
//   - [Potential]: energy/force pair over position, closed over [PotentialKind]
//   - [System]: mass, potential and the current phase-space arrays
//   - [Integrator]: fixed-step propagator that mutates a [System] in place
//
// # Example
//
//	pot, _ := physics.NewHarmonic(1.0, 0.0)
//	sys, _ := dynamo.NewSystem(1.0, pot)
//	_ = sys.Initialize(dynamo.State{1.0}, dynamo.State{0.0})
//	vv, _ := integrators.NewVelocityVerlet(sys, 0.01)
//	for i := 0; i < 1000; i++ {
//	    _ = vv.Step()
//	}
//
// # Thread Safety
//
// A System is owned by a single simulation loop. Nothing in this package is
// safe for concurrent mutation.
package dynamo
