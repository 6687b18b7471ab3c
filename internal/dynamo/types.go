package dynamo

import "math"

// State holds one scalar per particle.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PotentialKind enumerates the supported potentials. The set is closed:
// factories and renderers switch over it exhaustively.
type PotentialKind int

const (
	KindHarmonic PotentialKind = iota + 1
	KindDoubleWell
)

func (k PotentialKind) String() string {
	switch k {
	case KindHarmonic:
		return "harmonic"
	case KindDoubleWell:
		return "double_well"
	default:
		return "unknown"
	}
}

// Potential maps a position to energy and force. Implementations are
// immutable and side-effect free; Force is the negative derivative of Energy.
type Potential interface {
	Kind() PotentialKind
	Energy(x float64) float64
	Force(x float64) float64
	Params() map[string]float64
}

// Energies evaluates p element-wise over xs.
func Energies(p Potential, xs State) State {
	out := make(State, len(xs))
	for i, x := range xs {
		out[i] = p.Energy(x)
	}
	return out
}

// Forces evaluates the force element-wise over xs.
func Forces(p Potential, xs State) State {
	out := make(State, len(xs))
	ForcesInto(p, xs, out)
	return out
}

// ForcesInto writes the force at xs[i] into dst[i]. dst must have len(xs).
func ForcesInto(p Potential, xs, dst State) {
	for i, x := range xs {
		dst[i] = p.Force(x)
	}
}

// Integrator advances its bound System by one fixed step.
type Integrator interface {
	Step() error
	Dt() float64
}

// Named is implemented by integrators that report a registry name.
type Named interface {
	Name() string
}
