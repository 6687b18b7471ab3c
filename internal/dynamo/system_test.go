package dynamo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearSpring is a unit harmonic well local to the package tests.
type linearSpring struct{ calls int }

func (l *linearSpring) Kind() PotentialKind        { return KindHarmonic }
func (l *linearSpring) Energy(x float64) float64   { return 0.5 * x * x }
func (l *linearSpring) Force(x float64) float64    { l.calls++; return -x }
func (l *linearSpring) Params() map[string]float64 { return map[string]float64{"k": 1, "x0": 0} }

func TestNewSystemValidation(t *testing.T) {
	tests := []struct {
		name string
		mass float64
		pot  Potential
		want error
	}{
		{"zero mass", 0, &linearSpring{}, ErrInvalidParameter},
		{"negative mass", -1, &linearSpring{}, ErrInvalidParameter},
		{"nan mass", math.NaN(), &linearSpring{}, ErrInvalidParameter},
		{"inf mass", math.Inf(1), &linearSpring{}, ErrInvalidParameter},
		{"nil potential", 1, nil, ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSystem(tt.mass, tt.pot)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAccessBeforeInitialize(t *testing.T) {
	sys, err := NewSystem(1, &linearSpring{})
	require.NoError(t, err)

	assert.False(t, sys.Initialized())
	assert.Equal(t, 0, sys.N())

	_, err = sys.Positions()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = sys.Velocities()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = sys.Forces()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = sys.Phase()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, _, err = sys.Particle(0)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestInitializeComputesForces(t *testing.T) {
	pot := &linearSpring{}
	sys, err := NewSystem(2, pot)
	require.NoError(t, err)

	require.NoError(t, sys.Initialize(State{1, -2, 0.5}, State{0, 0, 0}))

	forces, err := sys.Forces()
	require.NoError(t, err)
	assert.Equal(t, State{-1, 2, -0.5}, forces)
	assert.Equal(t, 3, sys.N())
}

func TestInitializeMismatchedLengths(t *testing.T) {
	pot := &linearSpring{}
	sys, err := NewSystem(1, pot)
	require.NoError(t, err)

	err = sys.Initialize(State{1.0, 2.0}, State{1.0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Zero(t, pot.calls, "no force may be computed on failure")
	assert.False(t, sys.Initialized())

	err = sys.Initialize(State{}, State{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestInitializeKeepsParticleCount(t *testing.T) {
	sys, err := NewSystem(1, &linearSpring{})
	require.NoError(t, err)
	require.NoError(t, sys.Initialize(State{1}, State{0}))

	assert.ErrorIs(t, sys.Initialize(State{1, 2}, State{0, 0}), ErrInvalidState)
	assert.NoError(t, sys.Initialize(State{3}, State{1}))
}

func TestInitializeCopiesInput(t *testing.T) {
	sys, err := NewSystem(1, &linearSpring{})
	require.NoError(t, err)

	x := State{1}
	require.NoError(t, sys.Initialize(x, State{0}))
	x[0] = 42

	got, err := sys.Positions()
	require.NoError(t, err)
	assert.Equal(t, 1.0, got[0])

	got[0] = 7
	again, _ := sys.Positions()
	assert.Equal(t, 1.0, again[0])
}

func TestPhaseRefresh(t *testing.T) {
	sys, err := NewSystem(1, &linearSpring{})
	require.NoError(t, err)
	require.NoError(t, sys.Initialize(State{1, 2}, State{0, 0}))

	ph, err := sys.Phase()
	require.NoError(t, err)
	ph.X[0] = 3
	ph.Refresh()

	forces, _ := sys.Forces()
	assert.Equal(t, State{-3, -2}, forces)
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 7, Wrapped: ErrIO}
	assert.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), "step 7")
}

func TestPotentialKindString(t *testing.T) {
	assert.Equal(t, "harmonic", KindHarmonic.String())
	assert.Equal(t, "double_well", KindDoubleWell.String())
	assert.Equal(t, "unknown", PotentialKind(0).String())
}
