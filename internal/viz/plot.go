package viz

import (
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/metrics"
)

// PlotEnergies charts potential, kinetic and total energy against record
// index.
func PlotEnergies(records []metrics.EnergyRecord, w, h int) string {
	if len(records) == 0 {
		return ""
	}
	pe := Series(records, func(r metrics.EnergyRecord) float64 { return r.Potential })
	ke := Series(records, func(r metrics.EnergyRecord) float64 { return r.Kinetic })
	total := Series(records, func(r metrics.EnergyRecord) float64 { return r.Total })
	return asciigraph.PlotMany([][]float64{pe, ke, total},
		asciigraph.Height(h),
		asciigraph.Width(w),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
		asciigraph.Caption("potential (blue), kinetic (red), total (green)"),
	)
}

func PlotPosition(records []metrics.EnergyRecord, w, h int) string {
	if len(records) == 0 {
		return ""
	}
	x := Series(records, func(r metrics.EnergyRecord) float64 { return r.Position })
	return asciigraph.Plot(x,
		asciigraph.Height(h),
		asciigraph.Width(w),
		asciigraph.Caption("position"),
	)
}

// PlotPotential samples U(x) at n points over [lo, hi].
func PlotPotential(pot dynamo.Potential, lo, hi float64, n, w, h int) string {
	if n < 2 || hi <= lo {
		return ""
	}
	xs := make(dynamo.State, n)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return asciigraph.Plot(dynamo.Energies(pot, xs),
		asciigraph.Height(h),
		asciigraph.Width(w),
		asciigraph.Caption(pot.Kind().String()+" potential"),
	)
}

// Series extracts one column from records for plotting or analysis.
func Series(records []metrics.EnergyRecord, pick func(metrics.EnergyRecord) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = pick(r)
	}
	return out
}
