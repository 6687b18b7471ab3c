package experiment

import (
	"context"
	"log/slog"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/metrics"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Replica is one member of an ensemble.
type Replica struct {
	Seed   uint64
	Result *Result
	// Temperature is the kinetic temperature 2<KE>/N averaged over the
	// recorded steps, in units with k_B = 1.
	Temperature float64
}

// EnsembleResult aggregates independent replicas of one configuration.
type EnsembleResult struct {
	Replicas        []Replica
	MeanTemperature float64
	StdTemperature  float64
	MeanFinalTotal  float64
}

// Ensemble runs n copies of cfg concurrently, replica i seeded with
// cfg.Seed+i, at most workers at a time (workers <= 0 means unbounded).
// The first failing replica cancels the rest.
func Ensemble(ctx context.Context, cfg *config.Config, n, workers int, logger *slog.Logger) (*EnsembleResult, error) {
	if n < 1 {
		return nil, dynamo.Invalidf("ensemble size must be positive, got %d", n)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	replicas := make([]Replica, n)
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range replicas {
		g.Go(func() error {
			c := cfg.Clone()
			c.Seed = cfg.Seed + uint64(i)

			var temps []float64
			runner := NewRunner(c,
				WithLogger(logger.With("replica", i)),
				WithRecorder(metrics.NewRecorder()),
				WithObserver(ObserverFunc(func(_ metrics.EnergyRecord, t metrics.Totals) {
					temps = append(temps, 2*t.Kinetic/float64(len(c.Positions)))
				})),
			)
			res, err := runner.Run(ctx, nil)
			if err != nil {
				return err
			}
			replicas[i] = Replica{Seed: c.Seed, Result: res, Temperature: stat.Mean(temps, nil)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	temps := make([]float64, n)
	totals := make([]float64, n)
	for i, r := range replicas {
		temps[i] = r.Temperature
		totals[i] = r.Result.Final.Total
	}
	out := &EnsembleResult{Replicas: replicas, MeanFinalTotal: stat.Mean(totals, nil)}
	out.MeanTemperature = stat.Mean(temps, nil)
	if n > 1 {
		out.StdTemperature = stat.StdDev(temps, nil)
	}
	return out, nil
}
