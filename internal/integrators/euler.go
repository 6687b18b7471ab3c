package integrators

import (
	"github.com/san-kum/mdsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Euler is the explicit forward Euler step. It is not symplectic and its
// energy grows without bound; it only serves as a baseline for compare runs.
type Euler struct {
	sys     *dynamo.System
	dt      float64
	scratch dynamo.State
}

func NewEuler(sys *dynamo.System, dt float64) (*Euler, error) {
	if err := checkBinding(sys, dt); err != nil {
		return nil, err
	}
	return &Euler{sys: sys, dt: dt, scratch: make(dynamo.State, sys.N())}, nil
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Dt() float64 { return e.dt }

func (e *Euler) Step() error {
	ph, err := e.sys.Phase()
	if err != nil {
		return err
	}
	copy(e.scratch, ph.V)
	floats.AddScaled(ph.V, e.dt/ph.Mass, ph.F)
	floats.AddScaled(ph.X, e.dt, e.scratch)
	ph.Refresh()
	return nil
}
