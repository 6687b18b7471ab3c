package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/experiment"
	"gonum.org/v1/gonum/stat"
)

type SweepPoint struct {
	Dt       float64
	Steps    int
	MaxDrift float64
}

// DtSweep reruns cfg at each time step over the same simulated duration,
// recording every step, and returns the worst energy drift of each run.
func DtSweep(ctx context.Context, cfg *config.Config, dts []float64, integrator string, logger *slog.Logger) ([]SweepPoint, error) {
	duration := cfg.Dt * float64(cfg.Steps)
	if duration <= 0 {
		return nil, dynamo.Invalidf("sweep needs a positive duration, got %g", duration)
	}

	points := make([]SweepPoint, 0, len(dts))
	for _, dt := range dts {
		run := cfg.Clone()
		run.Dt = dt
		run.Steps = int(math.Round(duration / dt))
		run.PrintFreq = 1

		res, err := experiment.NewRunner(run,
			experiment.WithIntegrator(integrator),
			experiment.WithLogger(logger),
		).Run(ctx, nil)
		if err != nil {
			return points, fmt.Errorf("sweep at dt=%g: %w", dt, err)
		}
		points = append(points, SweepPoint{Dt: dt, Steps: run.Steps, MaxDrift: res.MaxDrift})
	}
	return points, nil
}

// Order fits log(drift) = a + order*log(dt). Points with zero drift are
// ignored; fewer than two usable points give NaN.
func Order(points []SweepPoint) float64 {
	var xs, ys []float64
	for _, p := range points {
		if p.MaxDrift > 0 && p.Dt > 0 {
			xs = append(xs, math.Log(p.Dt))
			ys = append(ys, math.Log(p.MaxDrift))
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}
