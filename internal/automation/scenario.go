// Package automation runs simulations end to end: into their record sink,
// then into the run catalog. Scenarios chain several such runs from one
// YAML file.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/experiment"
	"github.com/san-kum/mdsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from the defaults, or from a preset when one is named,
// and overlays the keys given under config.
type ScenarioRun struct {
	Name      string    `yaml:"name"`
	Potential string    `yaml:"potential"`
	Preset    string    `yaml:"preset"`
	Config    yaml.Node `yaml:"config"`
}

// Outcome is a finished run. RunID is empty when no catalog was given.
type Outcome struct {
	Name   string
	RunID  string
	Result *experiment.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrIO, err)
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: scenario: %v", dynamo.ErrConfiguration, err)
	}
	if len(sc.Runs) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no runs", dynamo.ErrConfiguration, sc.Name)
	}
	return &sc, nil
}

// Resolve builds the configuration of run i. Runs that keep the default
// output path write to dir/<scenario>-<i>-<name>.log instead.
func (sc *Scenario) Resolve(i int, dir string) (*config.Config, error) {
	run := sc.Runs[i]

	cfg := config.DefaultConfig()
	if run.Preset != "" {
		pot := run.Potential
		if pot == "" {
			pot = config.PotentialHarmonic
		}
		if cfg = config.GetPreset(pot, run.Preset); cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %s/%s", dynamo.ErrConfiguration, pot, run.Preset)
		}
	} else if run.Potential != "" {
		cfg.Potential = run.Potential
	}

	if !run.Config.IsZero() {
		if err := run.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", dynamo.ErrConfiguration, err)
		}
	}
	if cfg.Output == config.DefaultOutput {
		cfg.Output = filepath.Join(dir, fmt.Sprintf("%s-%d-%s.log", slug(sc.Name), i, slug(run.Name)))
	}
	return cfg, nil
}

// RunScenario executes the runs in order and stops at the first failure,
// returning the outcomes completed so far.
func RunScenario(ctx context.Context, sc *Scenario, dir string, st *storage.Store, logger *slog.Logger) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(sc.Runs))
	for i, run := range sc.Runs {
		logger.Info("scenario run", "scenario", sc.Name, "index", i, "name", run.Name)

		cfg, err := sc.Resolve(i, dir)
		if err != nil {
			return outcomes, fmt.Errorf("run %d (%s): %w", i, run.Name, err)
		}
		out, err := Execute(ctx, cfg, st, experiment.WithLogger(logger.With("run", run.Name)))
		if err != nil {
			return outcomes, fmt.Errorf("run %d (%s): %w", i, run.Name, err)
		}
		out.Name = run.Name
		outcomes = append(outcomes, *out)
	}
	return outcomes, nil
}

// Execute runs cfg into the sink named by cfg.Output and catalogues the
// result in st when st is non-nil. Nothing is written for an invalid
// configuration.
func Execute(ctx context.Context, cfg *config.Config, st *storage.Store, opts ...experiment.Option) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sink, err := storage.CreateSink(cfg.Output)
	if err != nil {
		return nil, err
	}
	res, err := experiment.NewRunner(cfg, opts...).Run(ctx, sink)
	if cerr := sink.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	out := &Outcome{Result: res}
	if st == nil {
		return out, nil
	}
	out.RunID, err = st.Save(ctx, cfg, storage.Summary{
		Integrator: res.Integrator,
		Particles:  res.Particles,
		Records:    len(res.Records),
		FinalTotal: res.Final.Total,
		FinalDrift: res.FinalDrift,
		MaxDrift:   res.MaxDrift,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if s == "" {
		return "run"
	}
	return s
}
