package experiment

import (
	"context"
	"log/slog"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/metrics"
)

// Comparison summarises one integrator run over a shared configuration.
type Comparison struct {
	Integrator string
	FinalTotal float64
	FinalDrift float64
	MaxDrift   float64
	Err        error
}

// Compare runs each named integrator on its own copy of cfg, without a
// sink. A failing integrator is reported in its row and does not stop the
// others.
func Compare(ctx context.Context, cfg *config.Config, names []string, logger *slog.Logger) []Comparison {
	rows := make([]Comparison, 0, len(names))
	for _, name := range names {
		runner := NewRunner(cfg.Clone(),
			WithIntegrator(name),
			WithLogger(logger),
			WithRecorder(metrics.NewRecorder()),
		)
		res, err := runner.Run(ctx, nil)
		row := Comparison{Integrator: name, Err: err}
		if err == nil {
			row.FinalTotal = res.Final.Total
			row.FinalDrift = res.FinalDrift
			row.MaxDrift = res.MaxDrift
		}
		rows = append(rows, row)
	}
	return rows
}
