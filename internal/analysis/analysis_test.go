package analysis

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/experiment"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func harmonicRecords(t *testing.T, k float64, steps, printFreq int) (*config.Config, []metrics.EnergyRecord) {
	t.Helper()
	cfg := config.GetPreset(config.PotentialHarmonic, "unit")
	require.NotNil(t, cfg)
	cfg.K = k
	cfg.Steps, cfg.PrintFreq = steps, printFreq

	res, err := experiment.NewRunner(cfg, experiment.WithLogger(quietLogger())).Run(context.Background(), nil)
	require.NoError(t, err)
	return cfg, res.Records
}

func TestSpectrumPeakAtNaturalFrequency(t *testing.T) {
	for _, k := range []float64{1, 4} {
		cfg, records := harmonicRecords(t, k, 20000, 10)

		ps, err := Spectrum(records, cfg.Dt*float64(cfg.PrintFreq))
		require.NoError(t, err)

		want := math.Sqrt(k/cfg.Mass) / (2 * math.Pi)
		got, power := ps.Dominant()
		assert.InDelta(t, want, got, ps.Resolution(), "k=%g", k)
		assert.Greater(t, power, 0.0)
	}
}

func TestPowerSpectrumOfConstant(t *testing.T) {
	ps := PowerSpectrumOf([]float64{3, 3, 3, 3, 3, 3, 3, 3}, 0.5)
	require.Len(t, ps.Freqs, 5)
	assert.Equal(t, 0.25, ps.Resolution())
	for _, p := range ps.Power {
		assert.InDelta(t, 0, p, 1e-20)
	}
}

func TestSpectrumRejectsShortInput(t *testing.T) {
	_, err := Spectrum(make([]metrics.EnergyRecord, 3), 0.1)
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	_, err = Spectrum(make([]metrics.EnergyRecord, 8), 0)
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
}

func TestCrossingPeriod(t *testing.T) {
	cfg, records := harmonicRecords(t, 1, 10000, 5)
	period := CrossingPeriod(records, cfg.Dt*float64(cfg.PrintFreq), 0)
	assert.InDelta(t, 2*math.Pi, period, 1e-2)

	assert.Zero(t, CrossingPeriod(records[:2], 0.05, 0))
}

func TestPhasePortraitASCII(t *testing.T) {
	_, records := harmonicRecords(t, 1, 1000, 10)
	portrait := NewPhasePortrait(records)
	require.Len(t, portrait.Points, len(records))
	assert.Equal(t, Point{X: 1, Y: 0}, portrait.Points[0])

	out := portrait.ASCII(40, 20)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 20)
	assert.Contains(t, out, "•")
	assert.Contains(t, out, "│")
	assert.Contains(t, out, "─")

	assert.Empty(t, (&PhasePortrait{}).ASCII(40, 20))
}

func TestPaddedRange(t *testing.T) {
	r := PaddedRange([]float64{-1, 3, 1})
	assert.InDelta(t, -1.4, r.Lo, 1e-12)
	assert.InDelta(t, 3.4, r.Hi, 1e-12)
	assert.Equal(t, 0, r.Scale(r.Lo, 10))
	assert.Equal(t, 9, r.Scale(r.Hi, 10))
	assert.True(t, r.Contains(0))
	assert.False(t, r.Contains(4))

	flat := PaddedRange([]float64{2, 2})
	assert.InDelta(t, 1.9, flat.Lo, 1e-12)
	assert.InDelta(t, 2.1, flat.Hi, 1e-12)
}

func TestDtSweepVerletIsSecondOrder(t *testing.T) {
	cfg := config.GetPreset(config.PotentialHarmonic, "unit")
	require.NotNil(t, cfg)
	cfg.Dt, cfg.Steps = 0.01, 2000

	points, err := DtSweep(context.Background(), cfg, []float64{0.04, 0.02, 0.01}, "verlet", quietLogger())
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 500, points[0].Steps)
	assert.Equal(t, 2000, points[2].Steps)
	assert.Greater(t, points[0].MaxDrift, points[2].MaxDrift)

	assert.InDelta(t, 2.0, Order(points), 0.2)
}

func TestDtSweepErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = 0
	_, err := DtSweep(context.Background(), cfg, []float64{0.1}, "verlet", quietLogger())
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	cfg.Steps = 10
	_, err = DtSweep(context.Background(), cfg, []float64{0.1}, "rk4", quietLogger())
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
}

func TestOrderNeedsTwoPoints(t *testing.T) {
	assert.True(t, math.IsNaN(Order(nil)))
	assert.True(t, math.IsNaN(Order([]SweepPoint{{Dt: 0.1, MaxDrift: 1}, {Dt: 0.2, MaxDrift: 0}})))
	assert.InDelta(t, 1.0, Order([]SweepPoint{{Dt: 0.1, MaxDrift: 0.1}, {Dt: 0.2, MaxDrift: 0.2}}), 1e-12)
}
