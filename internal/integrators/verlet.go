package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// VelocityVerlet is the symplectic kick-drift-kick propagator used for NVE
// runs. Each step mutates the bound system in place:
//
//	v += dt/2 * F/m
//	x += dt * v
//	F  = force(x)
//	v += dt/2 * F/m
//
// The second kick must use the refreshed force; reusing the old sample
// breaks time reversibility and the energy bound.
type VelocityVerlet struct {
	sys *dynamo.System
	dt  float64
}

func NewVelocityVerlet(sys *dynamo.System, dt float64) (*VelocityVerlet, error) {
	if err := checkBinding(sys, dt); err != nil {
		return nil, err
	}
	return &VelocityVerlet{sys: sys, dt: dt}, nil
}

func (vv *VelocityVerlet) Name() string { return "verlet" }

func (vv *VelocityVerlet) Dt() float64 { return vv.dt }

func (vv *VelocityVerlet) Step() error {
	ph, err := vv.sys.Phase()
	if err != nil {
		return err
	}
	halfKick := 0.5 * vv.dt / ph.Mass

	floats.AddScaled(ph.V, halfKick, ph.F)
	floats.AddScaled(ph.X, vv.dt, ph.V)
	ph.Refresh()
	floats.AddScaled(ph.V, halfKick, ph.F)
	return nil
}

func checkBinding(sys *dynamo.System, dt float64) error {
	if sys == nil {
		return fmt.Errorf("%w: nil system", dynamo.ErrInvalidState)
	}
	if !sys.Initialized() {
		return fmt.Errorf("%w: integrator bound to uninitialized system", dynamo.ErrInvalidState)
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return dynamo.Invalidf("time step must be positive and finite, got %g", dt)
	}
	return nil
}
