package physics

import (
	"math"

	"github.com/san-kum/mdsim/internal/dynamo"
)

const (
	DefaultStiffness   = 1.0
	DefaultEquilibrium = 0.0
)

// Harmonic is the spring potential U(x) = k/2 (x - x0)^2.
type Harmonic struct {
	k, x0 float64
}

// NewHarmonic rejects non-positive or non-finite stiffness.
func NewHarmonic(k, x0 float64) (*Harmonic, error) {
	if k <= 0 || !finite(k) {
		return nil, dynamo.Invalidf("harmonic stiffness must be positive and finite, got %g", k)
	}
	if !finite(x0) {
		return nil, dynamo.Invalidf("harmonic equilibrium must be finite, got %g", x0)
	}
	return &Harmonic{k: k, x0: x0}, nil
}

func (h *Harmonic) Kind() dynamo.PotentialKind { return dynamo.KindHarmonic }

func (h *Harmonic) K() float64  { return h.k }
func (h *Harmonic) X0() float64 { return h.x0 }

func (h *Harmonic) Energy(x float64) float64 {
	d := x - h.x0
	return 0.5 * h.k * d * d
}

func (h *Harmonic) Force(x float64) float64 {
	return -h.k * (x - h.x0)
}

// AngularFrequency returns sqrt(k/m) for a particle of mass m.
func (h *Harmonic) AngularFrequency(mass float64) float64 {
	return math.Sqrt(h.k / mass)
}

func (h *Harmonic) Params() map[string]float64 {
	return map[string]float64{"k": h.k, "x0": h.x0}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
