package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/mdsim/internal/analysis"
	"github.com/san-kum/mdsim/internal/automation"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/experiment"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/physics"
	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/viz"
	"github.com/spf13/cobra"
)

func (a *app) runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := a.logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	if a.metricsAddr != "" {
		shutdown, err := serveMetrics(a.metricsAddr, recorder, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	st, err := storage.Open(a.dataDir, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	outcome, err := automation.Execute(ctx, cfg, st,
		experiment.WithLogger(logger),
		experiment.WithRecorder(recorder),
	)
	if err != nil {
		return err
	}
	res, runID := outcome.Result, outcome.RunID

	// keep stdout clean when it carries the log
	out := cmd.OutOrStdout()
	if cfg.Output == config.StdoutOutput {
		out = cmd.ErrOrStderr()
	}
	fmt.Fprintf(out, "completed in %v\n", res.Elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "integrator: %s\n", res.Integrator)
	fmt.Fprintf(out, "steps: %d\n", res.StepsTaken)
	fmt.Fprintf(out, "records: %d -> %s\n", len(res.Records), cfg.Output)
	fmt.Fprintf(out, "total energy: %.10g -> %.10g\n", res.Initial.Total, res.Final.Total)
	fmt.Fprintf(out, "energy drift: final %.3e, max %.3e\n", res.FinalDrift, res.MaxDrift)
	return nil
}

// serveMetrics exposes the recorder's registry on addr until the returned
// function is called.
func serveMetrics(addr string, recorder *metrics.Recorder, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func (a *app) runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = filepath.Join(a.dataDir, "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	logger := a.logger()
	st, err := storage.Open(a.dataDir, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes, runErr := automation.RunScenario(ctx, sc, dir, st, logger)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s (%d/%d runs)\n", sc.Name, len(outcomes), len(sc.Runs))
	if sc.Description != "" {
		fmt.Fprintf(out, "%s\n", sc.Description)
	}
	fmt.Fprintln(out)
	for _, o := range outcomes {
		fmt.Fprintf(out, "  %-20s %s  records=%d  max_drift=%.2e\n", o.Name, o.RunID[:8], len(o.Result.Records), o.Result.MaxDrift)
	}
	return runErr
}

func (a *app) runLive(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	// the live view writes no log; keep warnings off the alternate screen
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m, err := viz.NewModel(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m.WithTheme(a.theme), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func vizThemeNames() []string { return viz.ThemeNames() }

func (a *app) compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = experiment.NewRegistry().ListIntegrators()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing integrators for %s (dt=%.4f, steps=%d, particles=%d)\n\n",
		cfg.Potential, cfg.Dt, cfg.Steps, len(cfg.Positions))
	fmt.Fprintf(out, "%-12s  %-14s  %-12s  %-12s\n", "integrator", "final_total", "final_drift", "max_drift")
	fmt.Fprintln(out, strings.Repeat("-", 56))

	rows := experiment.Compare(cmd.Context(), cfg, names, a.logger())
	for _, r := range rows {
		if r.Err != nil {
			fmt.Fprintf(out, "%-12s  error: %v\n", r.Integrator, r.Err)
			continue
		}
		fmt.Fprintf(out, "%-12s  %14.8f  %12.2e  %12.2e\n", r.Integrator, r.FinalTotal, r.FinalDrift, r.MaxDrift)
	}
	return nil
}

func (a *app) sweepDt(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	dts, err := cmd.Flags().GetFloat64Slice("dts")
	if err != nil {
		return err
	}
	integrator, err := cmd.Flags().GetString("integrator")
	if err != nil {
		return err
	}

	points, err := analysis.DtSweep(cmd.Context(), cfg, dts, integrator, a.logger())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s drift over t=%.3f\n\n", integrator, cfg.Dt*float64(cfg.Steps))
	fmt.Fprintf(out, "%-10s  %-8s  %-12s\n", "dt", "steps", "max_drift")
	fmt.Fprintln(out, strings.Repeat("-", 34))
	for _, p := range points {
		fmt.Fprintf(out, "%-10g  %-8d  %12.3e\n", p.Dt, p.Steps, p.MaxDrift)
	}
	fmt.Fprintf(out, "\nfitted order: %.2f\n", analysis.Order(points))
	return nil
}

func (a *app) runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	n, _ := cmd.Flags().GetInt("replicas")
	workers, _ := cmd.Flags().GetInt("workers")

	res, err := experiment.Ensemble(cmd.Context(), cfg, n, workers, a.logger())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d replicas of %s/%s (T=%g, gamma=%g)\n\n", n, cfg.Potential, cfg.SimType, cfg.Temperature, cfg.Gamma)
	fmt.Fprintf(out, "%-8s  %-12s  %-14s\n", "seed", "temperature", "final_total")
	fmt.Fprintln(out, strings.Repeat("-", 38))
	for _, r := range res.Replicas {
		fmt.Fprintf(out, "%-8d  %12.6f  %14.8f\n", r.Seed, r.Temperature, r.Result.Final.Total)
	}
	fmt.Fprintf(out, "\nkinetic temperature: %.6f +/- %.6f\n", res.MeanTemperature, res.StdTemperature)
	fmt.Fprintf(out, "mean final total energy: %.8f\n", res.MeanFinalTotal)
	return nil
}

func (a *app) plotPotential(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	from, _ := cmd.Flags().GetFloat64("from")
	to, _ := cmd.Flags().GetFloat64("to")
	if to <= from {
		return dynamo.Invalidf("empty range [%g, %g]", from, to)
	}

	pot, err := experiment.NewRegistry().Potential(cfg.Potential, cfg.PotentialParams())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.PlotPotential(pot, from, to, 160, 80, 15))
	fmt.Fprintln(out)
	for _, k := range sortedParamKeys(pot.Params()) {
		fmt.Fprintf(out, "  %s = %g\n", k, pot.Params()[k])
	}

	switch pot.Kind() {
	case dynamo.KindHarmonic:
		if h, ok := pot.(*physics.Harmonic); ok {
			fmt.Fprintf(out, "  minimum at x = %g, angular frequency %g (mass %g)\n", h.X0(), h.AngularFrequency(cfg.Mass), cfg.Mass)
		}
	case dynamo.KindDoubleWell:
		if w, ok := pot.(*physics.DoubleWell); ok {
			for _, xm := range w.Minima() {
				fmt.Fprintf(out, "  minimum at x = %.6f, U = %.6f\n", xm, w.Energy(xm))
			}
		}
	}
	return nil
}
