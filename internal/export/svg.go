package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/mdsim/internal/analysis"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/viz"
)

const background = "#0a0a0a"

// Series colours match the terminal energy plot.
const (
	ColorPotential = "#3b82f6"
	ColorKinetic   = "#ef4444"
	ColorTotal     = "#22c55e"
)

// CanvasToSVG draws every lit Braille sub-pixel of canvas as a dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}
	pw, ph := canvas.PixelSize()
	width, height := float64(pw)*scale, float64(ph)*scale

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", fill)
	r := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// PhaseSVG draws the (position, velocity) trajectory as one path.
func PhaseSVG(p *analysis.PhasePortrait, width, height int, stroke string) string {
	if p == nil || len(p.Points) < 2 {
		return ""
	}
	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	xr, vr := p.Axes()

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	path(&sb, xs, ys, xr, vr, width, height, stroke)
	sb.WriteString("</svg>\n")
	return sb.String()
}

// EnergySVG draws potential, kinetic and total energy of particle 0 against
// step on shared axes.
func EnergySVG(records []metrics.EnergyRecord, width, height int) string {
	if len(records) < 2 {
		return ""
	}
	steps := make([]float64, len(records))
	series := [3][]float64{}
	for i := range series {
		series[i] = make([]float64, len(records))
	}
	for i, r := range records {
		steps[i] = float64(r.Step)
		series[0][i], series[1][i], series[2][i] = r.Potential, r.Kinetic, r.Total
	}
	yr := analysis.PaddedRange(append(append(append([]float64(nil), series[0]...), series[1]...), series[2]...))
	xr := analysis.PaddedRange(steps)

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	for i, color := range []string{ColorPotential, ColorKinetic, ColorTotal} {
		path(&sb, steps, series[i], xr, yr, width, height, color)
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteFile stores svg at path.
func WriteFile(path, svg string) error {
	if svg == "" {
		return dynamo.Invalidf("nothing to draw")
	}
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrIO, err)
	}
	return nil
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func path(sb *strings.Builder, xs, ys []float64, xr, yr analysis.Range, width, height int, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i := range xs {
		x := (xs[i] - xr.Lo) / (xr.Hi - xr.Lo) * float64(width)
		y := float64(height) - (ys[i]-yr.Lo)/(yr.Hi-yr.Lo)*float64(height)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}
