package physics

import (
	"math"

	"github.com/san-kum/mdsim/internal/dynamo"
)

// Default double-well coefficients. C tilts the wells so the left one is
// deeper.
const (
	DefaultWellA = 1.0
	DefaultWellB = 1.0
	DefaultWellC = 0.5
	DefaultWellD = 0.0
)

// DoubleWell models a particle in a bistable quartic potential
// U(x) = a x^4 - b x^2 + c x + d.
//
// Larger b deepens the wells and pushes them apart, c sets the asymmetry
// and a controls the steepness of the walls.
type DoubleWell struct {
	a, b, c, d float64
}

func NewDoubleWell(a, b, c, d float64) (*DoubleWell, error) {
	for name, v := range map[string]float64{"a": a, "b": b, "c": c, "d": d} {
		if !finite(v) {
			return nil, dynamo.Invalidf("double well coefficient %s must be finite, got %g", name, v)
		}
	}
	return &DoubleWell{a: a, b: b, c: c, d: d}, nil
}

// NewDefaultDoubleWell returns the well with the default coefficients.
func NewDefaultDoubleWell() *DoubleWell {
	return &DoubleWell{DefaultWellA, DefaultWellB, DefaultWellC, DefaultWellD}
}

func (w *DoubleWell) Kind() dynamo.PotentialKind { return dynamo.KindDoubleWell }

func (w *DoubleWell) Energy(x float64) float64 {
	x2 := x * x
	return w.a*x2*x2 - w.b*x2 + w.c*x + w.d
}

func (w *DoubleWell) Force(x float64) float64 {
	return -4*w.a*x*x*x + 2*w.b*x - w.c
}

// Minima returns the stationary points where the force vanishes and the
// curvature is positive, in ascending order.
func (w *DoubleWell) Minima() []float64 {
	roots := cubicRoots(4*w.a, 0, -2*w.b, w.c)
	minima := make([]float64, 0, 2)
	for _, r := range roots {
		if 12*w.a*r*r-2*w.b > 0 {
			minima = append(minima, r)
		}
	}
	return minima
}

func (w *DoubleWell) Params() map[string]float64 {
	return map[string]float64{"a": w.a, "b": w.b, "c": w.c, "d": w.d}
}

// cubicRoots returns the real roots of p x^3 + q x^2 + r x + s, ascending.
// Degenerate leading coefficients fall back to the quadratic/linear case.
func cubicRoots(p, q, r, s float64) []float64 {
	if p == 0 {
		if q == 0 {
			if r == 0 {
				return nil
			}
			return []float64{-s / r}
		}
		disc := r*r - 4*q*s
		if disc < 0 {
			return nil
		}
		sq := math.Sqrt(disc)
		lo, hi := (-r-sq)/(2*q), (-r+sq)/(2*q)
		if lo > hi {
			lo, hi = hi, lo
		}
		return []float64{lo, hi}
	}

	// depressed cubic t^3 + m t + n with x = t - q/(3p)
	b, c, d := q/p, r/p, s/p
	m := c - b*b/3
	n := 2*b*b*b/27 - b*c/3 + d
	shift := -b / 3

	disc := n*n/4 + m*m*m/27
	switch {
	case disc > 0:
		sq := math.Sqrt(disc)
		return []float64{math.Cbrt(-n/2+sq) + math.Cbrt(-n/2-sq) + shift}
	case m == 0:
		return []float64{shift}
	default:
		rad := 2 * math.Sqrt(-m/3)
		phi := math.Acos(math.Max(-1, math.Min(1, 3*n/(m*rad))))
		roots := make([]float64, 3)
		for k := 0; k < 3; k++ {
			roots[k] = rad*math.Cos((phi-2*math.Pi*float64(k))/3) + shift
		}
		if roots[0] > roots[1] {
			roots[0], roots[1] = roots[1], roots[0]
		}
		if roots[1] > roots[2] {
			roots[1], roots[2] = roots[2], roots[1]
		}
		if roots[0] > roots[1] {
			roots[0], roots[1] = roots[1], roots[0]
		}
		return roots
	}
}
