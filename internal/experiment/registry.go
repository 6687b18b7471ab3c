package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/integrators"
	"github.com/san-kum/mdsim/internal/physics"
)

type PotentialFactory func(params map[string]float64) (dynamo.Potential, error)

type IntegratorFactory func(sys *dynamo.System, dt float64, thermo integrators.LangevinParams) (dynamo.Integrator, error)

type Registry struct {
	potentials  map[string]PotentialFactory
	integrators map[string]IntegratorFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		potentials:  make(map[string]PotentialFactory),
		integrators: make(map[string]IntegratorFactory),
	}

	r.potentials[config.PotentialHarmonic] = func(p map[string]float64) (dynamo.Potential, error) {
		return physics.NewHarmonic(param(p, "k", physics.DefaultStiffness), param(p, "x0", physics.DefaultEquilibrium))
	}
	r.potentials[config.PotentialDoubleWell] = func(p map[string]float64) (dynamo.Potential, error) {
		return physics.NewDoubleWell(
			param(p, "a", physics.DefaultWellA),
			param(p, "b", physics.DefaultWellB),
			param(p, "c", physics.DefaultWellC),
			param(p, "d", physics.DefaultWellD),
		)
	}

	r.integrators["verlet"] = func(sys *dynamo.System, dt float64, _ integrators.LangevinParams) (dynamo.Integrator, error) {
		return integrators.NewVelocityVerlet(sys, dt)
	}
	r.integrators["euler"] = func(sys *dynamo.System, dt float64, _ integrators.LangevinParams) (dynamo.Integrator, error) {
		return integrators.NewEuler(sys, dt)
	}
	r.integrators["langevin"] = func(sys *dynamo.System, dt float64, thermo integrators.LangevinParams) (dynamo.Integrator, error) {
		return integrators.NewLangevin(sys, dt, thermo)
	}

	return r
}

// Potential builds the named potential. Missing coefficients fall back to
// the package defaults; an unknown name is a configuration error.
func (r *Registry) Potential(name string, params map[string]float64) (dynamo.Potential, error) {
	fn, ok := r.potentials[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown potential: %s", dynamo.ErrConfiguration, name)
	}
	return fn(params)
}

func (r *Registry) Integrator(name string, sys *dynamo.System, dt float64, thermo integrators.LangevinParams) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator: %s", dynamo.ErrConfiguration, name)
	}
	return fn(sys, dt, thermo)
}

// IntegratorFor maps an ensemble to the integrator that samples it.
func IntegratorFor(simType string) (string, error) {
	switch simType {
	case config.SimNVE:
		return "verlet", nil
	case config.SimNVT:
		return "langevin", nil
	default:
		return "", fmt.Errorf("%w: unknown sim_type: %s", dynamo.ErrConfiguration, simType)
	}
}

func (r *Registry) ListPotentials() []string { return sortedKeys(r.potentials) }

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

func param(p map[string]float64, key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
