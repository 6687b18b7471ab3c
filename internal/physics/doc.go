// Package physics provides the one-dimensional potentials a particle can
// move in.
//
// Each potential implements [dynamo.Potential]:
//
//   - [Harmonic]: U(x) = k/2 (x - x0)^2
//   - [DoubleWell]: U(x) = a x^4 - b x^2 + c x + d
//
// Forces are the analytic negative derivative of the energy. Potentials are
// immutable once built, so one instance can be shared by every system that
// uses it.
//
// # Energy Conservation
//
// For a harmonic well the total energy of a particle released from rest at
// amplitude A is k A^2 / 2; the integrators package tests use this to
// check drift:
//
//	h, _ := physics.NewHarmonic(1, 0)
//	e0 := h.Energy(1.0) // 0.5
package physics
