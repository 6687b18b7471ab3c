package metrics

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSystem(t *testing.T, mass float64, pot dynamo.Potential, x, v dynamo.State) *dynamo.System {
	t.Helper()
	sys, err := dynamo.NewSystem(mass, pot)
	require.NoError(t, err)
	require.NoError(t, sys.Initialize(x, v))
	return sys
}

func TestComputeEnergyRecord(t *testing.T) {
	pot, err := physics.NewHarmonic(1, 0)
	require.NoError(t, err)
	sys := newSystem(t, 2, pot, dynamo.State{1, 5}, dynamo.State{0.5, 3})

	rec, err := ComputeEnergyRecord(sys, 12)
	require.NoError(t, err)

	assert.Equal(t, 12, rec.Step)
	assert.InDelta(t, 0.5, rec.Potential, 1e-15)
	assert.InDelta(t, 0.25, rec.Kinetic, 1e-15)
	assert.InDelta(t, 0.75, rec.Total, 1e-15)
	assert.Equal(t, 1.0, rec.Position)
	assert.Equal(t, 0.5, rec.Velocity)
}

func TestComputeEnergyRecordUninitialized(t *testing.T) {
	pot, _ := physics.NewHarmonic(1, 0)
	sys, err := dynamo.NewSystem(1, pot)
	require.NoError(t, err)

	_, err = ComputeEnergyRecord(sys, 0)
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)
}

func TestComputeEnergyRecordDoesNotMutate(t *testing.T) {
	sys := newSystem(t, 1, physics.NewDefaultDoubleWell(), dynamo.State{0.3}, dynamo.State{-0.1})
	before, _ := sys.Forces()

	_, err := ComputeEnergyRecord(sys, 0)
	require.NoError(t, err)

	after, _ := sys.Forces()
	x, _ := sys.Positions()
	assert.Equal(t, before, after)
	assert.Equal(t, dynamo.State{0.3}, x)
}

func TestSystemEnergy(t *testing.T) {
	pot, _ := physics.NewHarmonic(2, 0)
	sys := newSystem(t, 1, pot, dynamo.State{1, -1, 0}, dynamo.State{0, 1, 2})

	totals, err := SystemEnergy(sys)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, totals.Kinetic, 1e-12)
	assert.InDelta(t, 2.0, totals.Potential, 1e-12)
	assert.InDelta(t, 4.5, totals.Total, 1e-12)
}

func TestRecordLineGolden(t *testing.T) {
	records := []EnergyRecord{
		{Step: 0, Potential: 0.5, Kinetic: 0, Total: 0.5, Position: 1, Velocity: 0},
		{Step: 100, Potential: 0.125, Kinetic: 0.375, Total: 0.5, Position: -0.5, Velocity: -0.8660254037844386},
		{Step: 2000, Potential: 1e-05, Kinetic: 12345678.5, Total: 1e16, Position: -0.75, Velocity: 2.5e-7},
	}

	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.Line())
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "energy_records", []byte(b.String()))
}

func TestRecordLineColumnOrder(t *testing.T) {
	r := EnergyRecord{Step: 3, Potential: 1.5, Kinetic: 2.5, Total: 4, Position: 0.25, Velocity: -1}
	assert.Equal(t, "3, 1.5, 2.5, 4.0, 0.25, -1.0\n", r.Line())
}

func TestParseRecordRoundTrip(t *testing.T) {
	r := EnergyRecord{Step: 41, Potential: 0.1, Kinetic: 1.0 / 3, Total: 0.1 + 1.0/3, Position: math.Pi, Velocity: -1e-9}
	got, err := ParseRecord(r.Line())
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestParseRecordErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"1, 2, 3",
		"x, 1, 2, 3, 4, 5",
		"1, 1, 2, three, 4, 5",
	} {
		_, err := ParseRecord(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestFormatFloat(t *testing.T) {
	tenth, fifth := 0.1, 0.2
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2, "-2.0"},
		{0.5, "0.5"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1234567, "1234567.0"},
		{1e16, "1e+16"},
		{tenth + fifth, "0.30000000000000004"},
		{0.1 + 0.2, "0.3"},
		{math.NaN(), "nan"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in), "in=%v", tt.in)
	}
}

type failingSink struct{ err error }

func (f failingSink) WriteLine(string) error { return f.err }

type bufferSink struct{ lines []string }

func (b *bufferSink) WriteLine(line string) error {
	b.lines = append(b.lines, line)
	return nil
}

func TestWriteRecord(t *testing.T) {
	sink := &bufferSink{}
	require.NoError(t, WriteRecord(sink, EnergyRecord{Step: 1, Total: 0.5}))
	assert.Equal(t, []string{"1, 0.0, 0.0, 0.5, 0.0, 0.0\n"}, sink.lines)

	err := WriteRecord(failingSink{errors.New("disk full")}, EnergyRecord{Step: 9})
	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrIO)
	assert.Contains(t, err.Error(), "disk full")
}

func TestEnergyDrift(t *testing.T) {
	d := NewEnergyDrift()
	assert.Equal(t, 0.0, d.Value())
	assert.Equal(t, 0.0, d.Final())

	d.Observe(2.0)
	d.Observe(2.2)
	d.Observe(1.9)

	assert.InDelta(t, 0.1, d.Value(), 1e-12)
	assert.InDelta(t, 0.05, d.Final(), 1e-12)
	assert.Equal(t, 2.0, d.Initial())
	assert.Equal(t, 1.9, d.Current())
	assert.Equal(t, 3, d.Samples())

	d.Reset()
	assert.Equal(t, 0, d.Samples())
	assert.Equal(t, 0.0, d.Value())
}

func TestEnergyDriftZeroInitial(t *testing.T) {
	d := NewEnergyDrift()
	d.Observe(0)
	d.Observe(-0.25)
	assert.Equal(t, 0.25, d.Value())
}
