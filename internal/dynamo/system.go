package dynamo

import (
	"fmt"
	"math"
)

// System is the mutable simulation state: a homogeneous mass, a potential
// and parallel position, velocity and force vectors. Forces always equal
// the potential's force at the current positions as of the last update.
type System struct {
	mass       float64
	potential  Potential
	positions  State
	velocities State
	forces     State
}

// NewSystem builds an uninitialized system. Call Initialize before use.
func NewSystem(mass float64, potential Potential) (*System, error) {
	if potential == nil {
		return nil, fmt.Errorf("%w: nil potential", ErrConfiguration)
	}
	if mass <= 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return nil, Invalidf("mass must be positive and finite, got %g", mass)
	}
	return &System{mass: mass, potential: potential}, nil
}

// Initialize copies the initial vectors and samples the first force.
// Re-initializing must keep the particle count.
func (s *System) Initialize(positions, velocities State) error {
	if len(positions) == 0 || len(positions) != len(velocities) {
		return fmt.Errorf("%w: %d positions, %d velocities", ErrInvalidState, len(positions), len(velocities))
	}
	if s.Initialized() && len(positions) != len(s.positions) {
		return fmt.Errorf("%w: particle count fixed at %d, got %d", ErrInvalidState, len(s.positions), len(positions))
	}
	if !positions.IsValid() || !velocities.IsValid() {
		return fmt.Errorf("%w: non-finite initial vector", ErrInvalidState)
	}

	s.positions = positions.Clone()
	s.velocities = velocities.Clone()
	s.forces = Forces(s.potential, s.positions)
	return nil
}

func (s *System) Initialized() bool { return s.positions != nil }

func (s *System) Mass() float64 { return s.mass }

func (s *System) Potential() Potential { return s.potential }

// N returns the particle count, zero before Initialize.
func (s *System) N() int { return len(s.positions) }

func (s *System) Positions() (State, error) {
	if !s.Initialized() {
		return nil, errNotInitialized()
	}
	return s.positions.Clone(), nil
}

func (s *System) Velocities() (State, error) {
	if !s.Initialized() {
		return nil, errNotInitialized()
	}
	return s.velocities.Clone(), nil
}

func (s *System) Forces() (State, error) {
	if !s.Initialized() {
		return nil, errNotInitialized()
	}
	return s.forces.Clone(), nil
}

// Particle returns position and velocity of particle i.
func (s *System) Particle(i int) (x, v float64, err error) {
	if !s.Initialized() {
		return 0, 0, errNotInitialized()
	}
	if i < 0 || i >= len(s.positions) {
		return 0, 0, fmt.Errorf("%w: particle %d out of range [0,%d)", ErrInvalidState, i, len(s.positions))
	}
	return s.positions[i], s.velocities[i], nil
}

// Phase is a live view of the system arrays. It exists for integrators:
// writes through X, V and F mutate the system, and F must only be changed
// through Refresh.
type Phase struct {
	X, V, F State
	Mass    float64
	pot     Potential
}

// Refresh recomputes F at the current X.
func (p *Phase) Refresh() {
	ForcesInto(p.pot, p.X, p.F)
}

// Phase returns the live arrays of an initialized system.
func (s *System) Phase() (*Phase, error) {
	if !s.Initialized() {
		return nil, errNotInitialized()
	}
	return &Phase{
		X:    s.positions,
		V:    s.velocities,
		F:    s.forces,
		Mass: s.mass,
		pot:  s.potential,
	}, nil
}

func errNotInitialized() error {
	return fmt.Errorf("%w: system not initialized", ErrInvalidState)
}
