package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/metrics"
)

// Observer is notified after every record is written.
type Observer interface {
	OnRecord(rec metrics.EnergyRecord, totals metrics.Totals)
}

type ObserverFunc func(rec metrics.EnergyRecord, totals metrics.Totals)

func (f ObserverFunc) OnRecord(rec metrics.EnergyRecord, totals metrics.Totals) { f(rec, totals) }

type Result struct {
	Integrator string
	Particles  int
	StepsTaken int
	Records    []metrics.EnergyRecord
	Initial    metrics.Totals
	Final      metrics.Totals
	MaxDrift   float64
	FinalDrift float64
	Elapsed    time.Duration
}

type Runner struct {
	cfg        *config.Config
	registry   *Registry
	logger     *slog.Logger
	recorder   *metrics.Recorder
	integrator string
	observers  []Observer
}

type Option func(*Runner)

func WithLogger(l *slog.Logger) Option { return func(r *Runner) { r.logger = l } }

func WithRecorder(rec *metrics.Recorder) Option { return func(r *Runner) { r.recorder = rec } }

func WithRegistry(reg *Registry) Option { return func(r *Runner) { r.registry = reg } }

// WithIntegrator overrides the integrator chosen by sim_type.
func WithIntegrator(name string) Option { return func(r *Runner) { r.integrator = name } }

func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = NewRegistry()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.recorder == nil {
		r.recorder = metrics.NewRecorder()
	}
	return r
}

// Setup validates the configuration and returns an initialized system
// bound to its integrator. Nothing is built when validation fails.
func (r *Runner) Setup() (*dynamo.System, dynamo.Integrator, error) {
	cfg := r.cfg
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	name := r.integrator
	if name == "" {
		var err error
		if name, err = IntegratorFor(cfg.SimType); err != nil {
			return nil, nil, err
		}
	}

	pot, err := r.registry.Potential(cfg.Potential, cfg.PotentialParams())
	if err != nil {
		return nil, nil, err
	}
	sys, err := dynamo.NewSystem(cfg.Mass, pot)
	if err != nil {
		return nil, nil, err
	}
	if err := sys.Initialize(cfg.Positions, cfg.Velocities); err != nil {
		return nil, nil, err
	}

	integ, err := r.registry.Integrator(name, sys, cfg.Dt, Thermostat(cfg))
	if err != nil {
		return nil, nil, err
	}
	return sys, integ, nil
}

// Thermostat extracts the Langevin parameters from a configuration.
func Thermostat(cfg *config.Config) integrators.LangevinParams {
	return integrators.LangevinParams{
		Temperature: cfg.Temperature,
		Gamma:       cfg.Gamma,
		Seed:        cfg.Seed,
	}
}

// Run records the initial state as step 0, then advances cfg.Steps steps,
// writing a record whenever the step index is a multiple of print_freq.
// A nil sink keeps the records in the result only.
func (r *Runner) Run(ctx context.Context, sink metrics.Sink) (*Result, error) {
	sys, integ, err := r.Setup()
	if err != nil {
		return nil, err
	}
	return r.drive(ctx, sys, integ, sink)
}

func (r *Runner) drive(ctx context.Context, sys *dynamo.System, integ dynamo.Integrator, sink metrics.Sink) (*Result, error) {
	cfg := r.cfg
	name := integratorName(integ)
	log := r.logger.With("integrator", name)

	result := &Result{
		Integrator: name,
		Particles:  sys.N(),
		Records:    make([]metrics.EnergyRecord, 0, cfg.Steps/cfg.PrintFreq+1),
	}
	drift := metrics.NewEnergyDrift()

	start := time.Now()
	last := start
	lastStep := 0

	report := func(step int) error {
		rec, err := metrics.ComputeEnergyRecord(sys, step)
		if err != nil {
			return err
		}
		totals, err := metrics.SystemEnergy(sys)
		if err != nil {
			return err
		}
		if err := r.write(sink, rec, log); err != nil {
			return err
		}
		drift.Observe(totals.Total)

		now := time.Now()
		r.recorder.Steps(name, step-lastStep)
		r.recorder.Record(totals.Total, drift.Value())
		r.recorder.ReportInterval(now.Sub(last).Seconds())
		last, lastStep = now, step

		if step == 0 {
			result.Initial = totals
		}
		result.Final = totals
		result.Records = append(result.Records, rec)
		for _, o := range r.observers {
			o.OnRecord(rec, totals)
		}
		log.Debug("record", "step", step, "total", totals.Total, "drift", drift.Value())
		return nil
	}

	log.Info("run started",
		"potential", cfg.Potential,
		"particles", sys.N(),
		"steps", cfg.Steps,
		"dt", cfg.Dt,
		"print_freq", cfg.PrintFreq)

	if err := report(0); err != nil {
		return result, &dynamo.SimulationError{Step: 0, Wrapped: err}
	}

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			log.Warn("run cancelled", "step", i)
			return result, &dynamo.SimulationError{Step: i, Wrapped: ctx.Err()}
		default:
		}

		if err := integ.Step(); err != nil {
			return result, &dynamo.SimulationError{Step: i, Wrapped: err}
		}
		result.StepsTaken = i

		if i%cfg.PrintFreq != 0 && i != cfg.Steps {
			continue
		}
		if err := checkState(sys); err != nil {
			log.Error("state diverged", "step", i)
			return result, &dynamo.SimulationError{Step: i, Wrapped: err}
		}
		if i%cfg.PrintFreq != 0 {
			continue
		}
		if err := report(i); err != nil {
			return result, &dynamo.SimulationError{Step: i, Wrapped: err}
		}
	}

	if rest := result.StepsTaken - lastStep; rest > 0 {
		r.recorder.Steps(name, rest)
	}
	result.MaxDrift = drift.Value()
	result.FinalDrift = drift.Final()
	result.Elapsed = time.Since(start)

	log.Info("run finished",
		"steps", result.StepsTaken,
		"records", len(result.Records),
		"final_drift", result.FinalDrift,
		"max_drift", result.MaxDrift,
		"elapsed", result.Elapsed)
	return result, nil
}

// write hands the record to the sink, retrying once with the same line.
func (r *Runner) write(sink metrics.Sink, rec metrics.EnergyRecord, log *slog.Logger) error {
	if sink == nil {
		return nil
	}
	err := metrics.WriteRecord(sink, rec)
	if err == nil {
		return nil
	}
	log.Warn("sink write failed, retrying", "step", rec.Step, "err", err)
	r.recorder.SinkRetry()
	return metrics.WriteRecord(sink, rec)
}

func checkState(sys *dynamo.System) error {
	ph, err := sys.Phase()
	if err != nil {
		return err
	}
	if !ph.X.IsValid() || !ph.V.IsValid() {
		return fmt.Errorf("%w: non-finite position or velocity", dynamo.ErrInvalidState)
	}
	return nil
}

func integratorName(integ dynamo.Integrator) string {
	if n, ok := integ.(dynamo.Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", integ)
}
