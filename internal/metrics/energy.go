package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/mdsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// EnergyRecord is one reported step. Energies, position and velocity are
// those of particle 0.
type EnergyRecord struct {
	Step      int     `json:"step"`
	Potential float64 `json:"potential"`
	Kinetic   float64 `json:"kinetic"`
	Total     float64 `json:"total"`
	Position  float64 `json:"position"`
	Velocity  float64 `json:"velocity"`
}

// ComputeEnergyRecord evaluates the energies of particle 0. It does not
// mutate the system.
func ComputeEnergyRecord(sys *dynamo.System, step int) (EnergyRecord, error) {
	x, v, err := sys.Particle(0)
	if err != nil {
		return EnergyRecord{}, err
	}
	kinetic := 0.5 * sys.Mass() * v * v
	potential := sys.Potential().Energy(x)
	return EnergyRecord{
		Step:      step,
		Potential: potential,
		Kinetic:   kinetic,
		Total:     kinetic + potential,
		Position:  x,
		Velocity:  v,
	}, nil
}

// Line renders the record in log order:
// step, potential, kinetic, total, position, velocity.
// Plotting reads this column order, so it must not change.
func (r EnergyRecord) Line() string {
	return fmt.Sprintf("%d, %s, %s, %s, %s, %s\n",
		r.Step,
		formatFloat(r.Potential),
		formatFloat(r.Kinetic),
		formatFloat(r.Total),
		formatFloat(r.Position),
		formatFloat(r.Velocity),
	)
}

// ParseRecord reads a line produced by Line. Surrounding whitespace and the
// trailing newline are ignored.
func ParseRecord(line string) (EnergyRecord, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 6 {
		return EnergyRecord{}, fmt.Errorf("energy record: expected 6 fields, got %d", len(fields))
	}

	step, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return EnergyRecord{}, fmt.Errorf("energy record: step: %w", err)
	}
	vals := make([]float64, 5)
	for i := range vals {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return EnergyRecord{}, fmt.Errorf("energy record: field %d: %w", i+1, err)
		}
	}
	return EnergyRecord{
		Step:      step,
		Potential: vals[0],
		Kinetic:   vals[1],
		Total:     vals[2],
		Position:  vals[3],
		Velocity:  vals[4],
	}, nil
}

// Sink accepts formatted log lines.
type Sink interface {
	WriteLine(line string) error
}

// WriteRecord hands the formatted record to sink. A sink failure is
// reported as dynamo.ErrIO; the caller must stop the run.
func WriteRecord(sink Sink, r EnergyRecord) error {
	if err := sink.WriteLine(r.Line()); err != nil {
		return fmt.Errorf("%w: record at step %d: %v", dynamo.ErrIO, r.Step, err)
	}
	return nil
}

// Totals holds energies summed over every particle.
type Totals struct {
	Kinetic   float64
	Potential float64
	Total     float64
}

// SystemEnergy sums kinetic and potential energy over all particles.
func SystemEnergy(sys *dynamo.System) (Totals, error) {
	x, err := sys.Positions()
	if err != nil {
		return Totals{}, err
	}
	v, err := sys.Velocities()
	if err != nil {
		return Totals{}, err
	}
	kinetic := 0.5 * sys.Mass() * floats.Dot(v, v)
	potential := floats.Sum(dynamo.Energies(sys.Potential(), x))
	return Totals{Kinetic: kinetic, Potential: potential, Total: kinetic + potential}, nil
}

// formatFloat writes the shortest round-trip form, switching to exponent
// notation outside [1e-4, 1e16) and always keeping a decimal point or an
// exponent, so whole numbers read as 1.0 rather than 1.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
