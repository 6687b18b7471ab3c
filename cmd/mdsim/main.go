package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/spf13/cobra"
)

// app holds the flag values shared by the subcommands.
type app struct {
	dataDir     string
	configFile  string
	preset      string
	logLevel    string
	logJSON     bool
	metricsAddr string
	theme       string

	// sim is bound to the simulation flags; only flags the user set are
	// copied onto the resolved configuration.
	sim *config.Config

	stderr io.Writer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{sim: config.DefaultConfig(), stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:           "mdsim",
		Short:         "one-dimensional molecular dynamics sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.stderr = cmd.ErrOrStderr()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data", ".mdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and write the energy log",
		Args:  cobra.NoArgs,
		RunE:  a.runSimulation,
	}
	a.addSimFlags(runCmd)
	runCmd.Flags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every simulation of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runBatch,
	}
	batchCmd.Flags().String("dir", "", "directory for record logs (default <data>/logs)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  a.runLive,
	}
	a.addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&a.theme, "theme", "well", "color theme ("+strings.Join(vizThemeNames(), ", ")+")")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same configuration",
		RunE:  a.compareIntegrators,
	}
	a.addSimFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "energy drift against time step",
		Args:  cobra.NoArgs,
		RunE:  a.sweepDt,
	}
	a.addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Slice("dts", []float64{0.04, 0.02, 0.01, 0.005}, "time steps to try")
	sweepCmd.Flags().String("integrator", "verlet", "integrator to sweep")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independently seeded replicas and report the kinetic temperature",
		Args:  cobra.NoArgs,
		RunE:  a.runEnsemble,
	}
	a.addSimFlags(ensembleCmd)
	ensembleCmd.Flags().Int("replicas", 8, "number of replicas")
	ensembleCmd.Flags().Int("workers", 0, "replicas run at once (0 for all)")

	potentialCmd := &cobra.Command{
		Use:   "potential",
		Short: "plot a potential energy curve",
		Args:  cobra.NoArgs,
		RunE:  a.plotPotential,
	}
	a.addSimFlags(potentialCmd)
	potentialCmd.Flags().Float64("from", -2, "left end of the x range")
	potentialCmd.Flags().Float64("to", 2, "right end of the x range")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list catalogued runs",
		Args:  cobra.NoArgs,
		RunE:  a.listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  a.showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energies and position of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  a.plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis and phase portrait of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  a.analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and records to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  a.exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run records to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  a.exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the phase portrait or energy trace of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  a.exportSVG,
	}
	exportSVGCmd.Flags().String("kind", "phase", "what to draw (phase, energy)")
	exportSVGCmd.Flags().StringP("out", "o", "", "output file (default <run_id>-<kind>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets [potential]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.listPresets,
	}

	rootCmd.AddCommand(runCmd, batchCmd, liveCmd, compareCmd, sweepCmd, ensembleCmd, potentialCmd,
		listCmd, showCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd)
	return rootCmd
}

// addSimFlags binds the simulation flags of cmd to a.sim. Flag names
// follow the configuration keys.
func (a *app) addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	s := a.sim
	f.StringVar(&a.configFile, "config", "", "config file path (yaml)")
	f.StringVar(&a.preset, "preset", "", "use preset configuration")

	f.StringVar(&s.Potential, "potential", s.Potential, "potential (harmonic, double_well)")
	f.Float64Var(&s.K, "k", s.K, "harmonic spring constant")
	f.Float64Var(&s.X0, "x0", s.X0, "harmonic equilibrium position")
	f.Float64Var(&s.A, "a", s.A, "double well quartic coefficient")
	f.Float64Var(&s.B, "b", s.B, "double well quadratic coefficient")
	f.Float64Var(&s.C, "c", s.C, "double well linear coefficient")
	f.Float64Var(&s.D, "d", s.D, "double well constant")
	f.Float64Var(&s.Mass, "mass", s.Mass, "particle mass")
	f.Float64SliceVar(&s.Positions, "positions", s.Positions, "initial positions")
	f.Float64SliceVar(&s.Velocities, "velocities", s.Velocities, "initial velocities")
	f.StringVar(&s.SimType, "sim_type", s.SimType, "ensemble (nve, nvt)")
	f.Float64Var(&s.Dt, "dt", s.Dt, "time step")
	f.IntVar(&s.Steps, "steps", s.Steps, "number of steps")
	f.IntVar(&s.PrintFreq, "print_freq", s.PrintFreq, "record every n steps")
	f.StringVar(&s.Output, "output", s.Output, "energy log path (- for stdout)")
	f.Float64Var(&s.Temperature, "temperature", s.Temperature, "thermostat temperature (nvt)")
	f.Float64Var(&s.Gamma, "gamma", s.Gamma, "thermostat friction (nvt)")
	f.Uint64Var(&s.Seed, "seed", s.Seed, "thermostat random seed (nvt)")
}

// simOverrides copies a flag value from src to dst.
var simOverrides = map[string]func(dst, src *config.Config){
	"potential":   func(d, s *config.Config) { d.Potential = s.Potential },
	"k":           func(d, s *config.Config) { d.K = s.K },
	"x0":          func(d, s *config.Config) { d.X0 = s.X0 },
	"a":           func(d, s *config.Config) { d.A = s.A },
	"b":           func(d, s *config.Config) { d.B = s.B },
	"c":           func(d, s *config.Config) { d.C = s.C },
	"d":           func(d, s *config.Config) { d.D = s.D },
	"mass":        func(d, s *config.Config) { d.Mass = s.Mass },
	"positions":   func(d, s *config.Config) { d.Positions = append([]float64(nil), s.Positions...) },
	"velocities":  func(d, s *config.Config) { d.Velocities = append([]float64(nil), s.Velocities...) },
	"sim_type":    func(d, s *config.Config) { d.SimType = s.SimType },
	"dt":          func(d, s *config.Config) { d.Dt = s.Dt },
	"steps":       func(d, s *config.Config) { d.Steps = s.Steps },
	"print_freq":  func(d, s *config.Config) { d.PrintFreq = s.PrintFreq },
	"output":      func(d, s *config.Config) { d.Output = s.Output },
	"temperature": func(d, s *config.Config) { d.Temperature = s.Temperature },
	"gamma":       func(d, s *config.Config) { d.Gamma = s.Gamma },
	"seed":        func(d, s *config.Config) { d.Seed = s.Seed },
}

// resolveConfig layers defaults, then a preset, then a config file, then
// the flags the user set explicitly.
func (a *app) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if a.preset != "" {
		p := a.findPreset(cmd)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: harmonic %v, double_well %v)", a.preset,
				config.ListPresets(config.PotentialHarmonic), config.ListPresets(config.PotentialDoubleWell))
		}
		cfg = p
	}

	if a.configFile != "" {
		loaded, err := config.Load(a.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	for name, apply := range simOverrides {
		if cmd.Flags().Changed(name) {
			apply(cfg, a.sim)
		}
	}
	return cfg, nil
}

// findPreset looks the preset up under --potential when given, otherwise
// under every potential.
func (a *app) findPreset(cmd *cobra.Command) *config.Config {
	if cmd.Flags().Changed("potential") {
		return config.GetPreset(a.sim.Potential, a.preset)
	}
	for _, pot := range []string{config.PotentialHarmonic, config.PotentialDoubleWell} {
		if p := config.GetPreset(pot, a.preset); p != nil {
			return p
		}
	}
	return nil
}

func (a *app) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if a.logJSON {
		return slog.New(slog.NewJSONHandler(a.stderr, opts))
	}
	return slog.New(slog.NewTextHandler(a.stderr, opts))
}
