package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mdsim/internal/analysis"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/export"
	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) openStore() (*storage.Store, error) {
	return storage.Open(a.dataDir, a.logger())
}

func (a *app) listRuns(cmd *cobra.Command, args []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tPOTENTIAL\tENSEMBLE\tINTEG\tN\tSTEPS\tDT\tRECORDS\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%g\t%d\t%.2e\n",
			run.ID[:8],
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Potential,
			run.SimType,
			run.Integrator,
			run.Particles,
			run.Steps,
			run.Dt,
			run.Records,
			run.MaxDrift,
		)
	}
	return w.Flush()
}

func (a *app) showRun(cmd *cobra.Command, args []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "created: %s\n", meta.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "integrator: %s\n", meta.Integrator)
	fmt.Fprintf(out, "particles: %d\n", meta.Particles)
	logPath := meta.LogPath
	if logPath == "" {
		logPath = "stdout, not kept"
	}
	fmt.Fprintf(out, "records: %d (%s)\n", meta.Records, logPath)
	fmt.Fprintf(out, "final total energy: %.10g\n", meta.FinalTotal)
	fmt.Fprintf(out, "energy drift: final %.3e, max %.3e\n\n", meta.FinalDrift, meta.MaxDrift)

	data, err := yaml.Marshal(meta.Config)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "config:\n%s", data)
	return nil
}

func (a *app) plotRun(cmd *cobra.Command, args []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	records, err := meta.ReadRecords()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "potential: %s, integrator: %s\n\n", meta.Potential, meta.Integrator)
	fmt.Fprintln(out, viz.PlotEnergies(records, 80, 15))
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.PlotPosition(records, 80, 10))
	return nil
}

func (a *app) analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	records, err := meta.ReadRecords()
	if err != nil {
		return err
	}

	interval := meta.Dt * float64(meta.PrintFreq)
	ps, err := analysis.Spectrum(records, interval)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frequency analysis: %s\n", meta.ID)
	fmt.Fprintf(out, "potential: %s, %d records every %g\n\n", meta.Potential, len(records), interval)

	plotData := ps.Power[1:]
	if len(plotData) > 8 {
		plotData = plotData[:len(plotData)/4]
	}
	fmt.Fprintln(out, asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (x)"),
	))
	fmt.Fprintln(out)

	freq, _ := ps.Dominant()
	fmt.Fprintf(out, "dominant frequency: %.4f (resolution %.4f)\n", freq, ps.Resolution())
	if freq > 0 {
		fmt.Fprintf(out, "period: %.4f\n", 1/freq)
	}
	if period := analysis.CrossingPeriod(records, interval, meanPosition(meta.Config)); period > 0 {
		fmt.Fprintf(out, "period from crossings: %.4f\n", period)
	}
	if cfg := meta.Config; cfg.Potential == config.PotentialHarmonic && cfg.K > 0 && cfg.Mass > 0 {
		fmt.Fprintf(out, "expected (harmonic): %.4f\n", math.Sqrt(cfg.K/cfg.Mass)/(2*math.Pi))
	}

	fmt.Fprintln(out, "\nphase portrait (x, v):")
	fmt.Fprint(out, analysis.NewPhasePortrait(records).ASCII(60, 20))
	return nil
}

// meanPosition is the level crossings are counted against: the equilibrium
// of a harmonic well, zero otherwise.
func meanPosition(cfg *config.Config) float64 {
	if cfg != nil && cfg.Potential == config.PotentialHarmonic {
		return cfg.X0
	}
	return 0
}

func (a *app) exportJSON(cmd *cobra.Command, args []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return st.ExportJSON(cmd.Context(), args[0], cmd.OutOrStdout())
}

func (a *app) exportCSV(cmd *cobra.Command, args []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.LoadRecords(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{"step", "potential", "kinetic", "total", "position", "velocity"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{strconv.Itoa(r.Step)}
		for _, v := range []float64{r.Potential, r.Kinetic, r.Total, r.Position, r.Velocity} {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (a *app) exportSVG(cmd *cobra.Command, args []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	records, err := meta.ReadRecords()
	if err != nil {
		return err
	}

	kind, _ := cmd.Flags().GetString("kind")
	path, _ := cmd.Flags().GetString("out")
	if path == "" {
		path = fmt.Sprintf("%s-%s.svg", meta.ID[:8], kind)
	}

	var svg string
	switch kind {
	case "phase":
		svg = export.PhaseSVG(analysis.NewPhasePortrait(records), 600, 600, export.ColorTotal)
	case "energy":
		svg = export.EnergySVG(records, 800, 400)
	default:
		return fmt.Errorf("unknown svg kind: %s", kind)
	}
	if err := export.WriteFile(path, svg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func (a *app) listPresets(cmd *cobra.Command, args []string) error {
	potentials := []string{config.PotentialHarmonic, config.PotentialDoubleWell}
	if len(args) == 1 {
		potentials = args
	}

	out := cmd.OutOrStdout()
	for _, pot := range potentials {
		names := config.ListPresets(pot)
		if len(names) == 0 {
			fmt.Fprintf(out, "no presets for potential: %s\n", pot)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", pot)
		for _, name := range names {
			p := config.GetPreset(pot, name)
			fmt.Fprintf(out, "  %-12s %s, %d particle(s), dt=%g, steps=%d\n", name, p.SimType, len(p.Positions), p.Dt, p.Steps)
		}
	}
	return nil
}

func sortedParamKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
