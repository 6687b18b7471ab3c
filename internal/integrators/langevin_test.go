package integrators

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/physics"
)

var _ = Describe("Langevin", func() {
	var sys *dynamo.System

	BeforeEach(func() {
		pot, err := physics.NewHarmonic(1, 0)
		Expect(err).NotTo(HaveOccurred())
		sys, err = dynamo.NewSystem(1, pot)
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.Initialize(dynamo.State{1}, dynamo.State{0})).To(Succeed())
	})

	trajectory := func(seed uint64, steps int) dynamo.State {
		pot, _ := physics.NewHarmonic(1, 0)
		s, _ := dynamo.NewSystem(1, pot)
		_ = s.Initialize(dynamo.State{1, -1}, dynamo.State{0, 0.5})
		l, err := NewLangevin(s, 0.01, LangevinParams{Temperature: 0.5, Gamma: 2, Seed: seed})
		Expect(err).NotTo(HaveOccurred())
		out := make(dynamo.State, 0, steps*2)
		for i := 0; i < steps; i++ {
			Expect(l.Step()).To(Succeed())
			x, _ := s.Positions()
			out = append(out, x...)
		}
		return out
	}

	It("rejects invalid thermostat parameters", func() {
		_, err := NewLangevin(sys, 0.01, LangevinParams{Temperature: -1, Gamma: 1})
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))

		_, err = NewLangevin(sys, 0.01, LangevinParams{Temperature: 1, Gamma: 0})
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))

		_, err = NewLangevin(sys, 0.01, LangevinParams{Temperature: math.NaN(), Gamma: 1})
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("reproduces a trajectory from the same seed", func() {
		Expect(trajectory(42, 300)).To(Equal(trajectory(42, 300)))
	})

	It("diverges for different seeds", func() {
		Expect(trajectory(42, 300)).NotTo(Equal(trajectory(43, 300)))
	})

	It("keeps forces consistent with positions", func() {
		l, err := NewLangevin(sys, 0.01, LangevinParams{Temperature: 1, Gamma: 1, Seed: 1})
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 100; i++ {
			Expect(l.Step()).To(Succeed())
			x, _ := sys.Positions()
			f, _ := sys.Forces()
			Expect(f).To(Equal(dynamo.Forces(sys.Potential(), x)))
		}
	})

	It("dissipates energy at zero temperature", func() {
		l, err := NewLangevin(sys, 0.01, LangevinParams{Temperature: 0, Gamma: 0.5})
		Expect(err).NotTo(HaveOccurred())
		e0 := totalEnergy(sys)
		for i := 0; i < 2000; i++ {
			Expect(l.Step()).To(Succeed())
		}
		Expect(totalEnergy(sys)).To(BeNumerically("<", 0.01*e0))
	})

	It("samples the canonical distribution", func() {
		const (
			temperature = 1.0
			steps       = 400000
			burnIn      = 2000
		)
		l, err := NewLangevin(sys, 0.05, LangevinParams{Temperature: temperature, Gamma: 1, Seed: 2024})
		Expect(err).NotTo(HaveOccurred())

		var sumV2, sumX2 float64
		for i := 0; i < steps+burnIn; i++ {
			Expect(l.Step()).To(Succeed())
			if i < burnIn {
				continue
			}
			x, v, _ := sys.Particle(0)
			sumV2 += v * v
			sumX2 += x * x
		}
		// equipartition: <m v^2> = T and <k x^2> = T
		Expect(sumV2 / steps).To(BeNumerically("~", temperature, 0.08))
		Expect(sumX2 / steps).To(BeNumerically("~", temperature, 0.1))
	})
})

var _ = Describe("VelocityVerlet", func() {
	It("reports its name and step", func() {
		pot, _ := physics.NewHarmonic(1, 0)
		sys, _ := dynamo.NewSystem(1, pot)
		Expect(sys.Initialize(dynamo.State{0}, dynamo.State{1})).To(Succeed())

		vv, err := NewVelocityVerlet(sys, 0.02)
		Expect(err).NotTo(HaveOccurred())
		Expect(vv.Name()).To(Equal("verlet"))
		Expect(vv.Dt()).To(Equal(0.02))
	})

	It("leaves a particle at rest in the minimum untouched", func() {
		pot, _ := physics.NewHarmonic(3, 0.25)
		sys, _ := dynamo.NewSystem(2, pot)
		Expect(sys.Initialize(dynamo.State{0.25}, dynamo.State{0})).To(Succeed())

		vv, _ := NewVelocityVerlet(sys, 0.1)
		for i := 0; i < 50; i++ {
			Expect(vv.Step()).To(Succeed())
		}
		x, v, err := sys.Particle(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(x).To(Equal(0.25))
		Expect(v).To(Equal(0.0))
	})
})
