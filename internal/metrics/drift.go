package metrics

import "math"

// EnergyDrift tracks the largest deviation of the total energy from its
// first observed value. The deviation is relative unless the initial energy
// is zero, in which case it is absolute.
type EnergyDrift struct {
	initial  float64
	current  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(total float64) {
	if e.samples == 0 {
		e.initial = total
	}
	e.current = total
	e.samples++
	e.maxDrift = math.Max(e.maxDrift, e.deviation(total))
}

func (e *EnergyDrift) deviation(total float64) float64 {
	if e.initial == 0 {
		return math.Abs(total)
	}
	return math.Abs(total-e.initial) / math.Abs(e.initial)
}

// Value returns the worst drift seen so far.
func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// Final returns the drift of the most recent observation.
func (e *EnergyDrift) Final() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.deviation(e.current)
}

func (e *EnergyDrift) Initial() float64 { return e.initial }
func (e *EnergyDrift) Current() float64 { return e.current }
func (e *EnergyDrift) Samples() int     { return e.samples }

func (e *EnergyDrift) Reset() {
	*e = EnergyDrift{}
}
