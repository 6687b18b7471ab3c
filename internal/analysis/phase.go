package analysis

import (
	"strings"

	"github.com/san-kum/mdsim/internal/metrics"
	"gonum.org/v1/gonum/floats"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds (position, velocity) pairs of particle 0.
type PhasePortrait struct {
	Points []Point
}

func NewPhasePortrait(records []metrics.EnergyRecord) *PhasePortrait {
	p := &PhasePortrait{Points: make([]Point, 0, len(records))}
	for _, r := range records {
		p.Points = append(p.Points, Point{X: r.Position, Y: r.Velocity})
	}
	return p
}

// Range is a closed interval of data values.
type Range struct{ Lo, Hi float64 }

// PaddedRange spans v with a 10% margin on each side; a degenerate range
// is widened to unit width first.
func PaddedRange(v []float64) Range {
	lo, hi := floats.Min(v), floats.Max(v)
	pad := 0.1 * (hi - lo)
	if hi == lo {
		pad = 0.1
	}
	return Range{lo - pad, hi + pad}
}

// Scale maps v onto [0, n-1].
func (r Range) Scale(v float64, n int) int {
	return int((v - r.Lo) / (r.Hi - r.Lo) * float64(n-1))
}

func (r Range) Contains(v float64) bool { return v >= r.Lo && v <= r.Hi }

// Axes returns the padded position and velocity ranges.
func (p *PhasePortrait) Axes() (x, v Range) {
	xs := make([]float64, len(p.Points))
	vs := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], vs[i] = pt.X, pt.Y
	}
	return PaddedRange(xs), PaddedRange(vs)
}

// ASCII renders the portrait on a width x height character grid, with the
// x = 0 and v = 0 axes when they fall inside the plot.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}
	xr, vr := p.Axes()

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	if xr.Contains(0) {
		col := xr.Scale(0, width)
		for row := range grid {
			grid[row][col] = '│'
		}
	}
	if vr.Contains(0) {
		row := height - 1 - vr.Scale(0, height)
		for col := range grid[row] {
			if grid[row][col] == '│' {
				grid[row][col] = '┼'
			} else {
				grid[row][col] = '─'
			}
		}
	}
	for _, pt := range p.Points {
		grid[height-1-vr.Scale(pt.Y, height)][xr.Scale(pt.X, width)] = '•'
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n") + "\n"
}

// CrossingPeriod estimates the oscillation period from upward crossings of
// level by the logged position, interpolating between records. It returns
// 0 when fewer than two crossings occur.
func CrossingPeriod(records []metrics.EnergyRecord, interval, level float64) float64 {
	var crossings []float64
	for i := 1; i < len(records); i++ {
		prev, curr := records[i-1].Position, records[i].Position
		if prev < level && curr >= level {
			frac := (level - prev) / (curr - prev)
			crossings = append(crossings, (float64(i-1)+frac)*interval)
		}
	}
	if len(crossings) < 2 {
		return 0
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1)
}
