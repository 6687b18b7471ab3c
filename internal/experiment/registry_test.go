package experiment

import (
	"testing"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPotential(t *testing.T) {
	r := NewRegistry()

	h, err := r.Potential(config.PotentialHarmonic, nil)
	require.NoError(t, err)
	assert.Equal(t, dynamo.KindHarmonic, h.Kind())
	assert.Equal(t, -2.0, h.Force(2))

	w, err := r.Potential(config.PotentialDoubleWell, map[string]float64{"a": 1, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, dynamo.KindDoubleWell, w.Kind())
	assert.Equal(t, map[string]float64{"a": 1, "b": 3, "c": 0.5, "d": 0}, w.Params())

	_, err = r.Potential(config.PotentialHarmonic, map[string]float64{"k": -1})
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	_, err = r.Potential("quadratic_cubic", nil)
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
}

func TestRegistryIntegrator(t *testing.T) {
	r := NewRegistry()
	pot, err := r.Potential(config.PotentialHarmonic, nil)
	require.NoError(t, err)
	sys, err := dynamo.NewSystem(1, pot)
	require.NoError(t, err)
	require.NoError(t, sys.Initialize(dynamo.State{1}, dynamo.State{0}))

	thermo := integrators.LangevinParams{Temperature: 1, Gamma: 1, Seed: 1}
	for _, name := range r.ListIntegrators() {
		integ, err := r.Integrator(name, sys, 0.01, thermo)
		require.NoError(t, err, name)
		assert.Equal(t, name, integ.(dynamo.Named).Name())
	}

	_, err = r.Integrator("rk4", sys, 0.01, thermo)
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
}

func TestIntegratorFor(t *testing.T) {
	name, err := IntegratorFor(config.SimNVE)
	require.NoError(t, err)
	assert.Equal(t, "verlet", name)

	name, err = IntegratorFor(config.SimNVT)
	require.NoError(t, err)
	assert.Equal(t, "langevin", name)

	_, err = IntegratorFor("npt")
	assert.ErrorIs(t, err, dynamo.ErrConfiguration)
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"double_well", "harmonic"}, r.ListPotentials())
	assert.Equal(t, []string{"euler", "langevin", "verlet"}, r.ListIntegrators())
}
