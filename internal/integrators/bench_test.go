package integrators

import (
	"testing"

	"github.com/san-kum/mdsim/internal/dynamo"
)

func benchSystem(b *testing.B, n int) *dynamo.System {
	x := make(dynamo.State, n)
	v := make(dynamo.State, n)
	for i := range x {
		x[i] = float64(i) * 0.1
	}
	return newHarmonicSystem(b, 1, 1, x, v)
}

func BenchmarkVerlet(b *testing.B) {
	vv, _ := NewVelocityVerlet(benchSystem(b, 1), 0.01)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vv.Step()
	}
}

func BenchmarkVerlet_Particles64(b *testing.B) {
	vv, _ := NewVelocityVerlet(benchSystem(b, 64), 0.01)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vv.Step()
	}
}

func BenchmarkEuler(b *testing.B) {
	e, _ := NewEuler(benchSystem(b, 1), 0.01)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Step()
	}
}

func BenchmarkLangevin(b *testing.B) {
	l, _ := NewLangevin(benchSystem(b, 1), 0.01, LangevinParams{Temperature: 1, Gamma: 1, Seed: 1})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = l.Step()
	}
}
