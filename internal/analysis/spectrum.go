package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/metrics"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum holds one-sided power against frequency.
type PowerSpectrum struct {
	Freqs []float64
	Power []float64
}

// Spectrum transforms the logged position of particle 0. interval is the
// time between consecutive records (dt * print_freq).
func Spectrum(records []metrics.EnergyRecord, interval float64) (*PowerSpectrum, error) {
	if len(records) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 records, got %d", dynamo.ErrInvalidParameter, len(records))
	}
	if interval <= 0 {
		return nil, dynamo.Invalidf("sample interval must be positive, got %g", interval)
	}

	x := make([]float64, len(records))
	for i, r := range records {
		x[i] = r.Position
	}
	return PowerSpectrumOf(x, interval), nil
}

// PowerSpectrumOf removes the mean from x and returns |X_k|^2/n for
// k = 0..n/2.
func PowerSpectrumOf(x []float64, interval float64) *PowerSpectrum {
	n := len(x)
	centered := make([]float64, n)
	copy(centered, x)
	floats.AddConst(-floats.Sum(x)/float64(n), centered)

	coeffs := fft.FFTReal(centered)
	half := n/2 + 1
	ps := &PowerSpectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for k := 0; k < half; k++ {
		a := cmplx.Abs(coeffs[k])
		ps.Freqs[k] = float64(k) / (float64(n) * interval)
		ps.Power[k] = a * a / float64(n)
	}
	return ps
}

// Dominant returns the frequency and power of the strongest non-zero bin.
func (p *PowerSpectrum) Dominant() (freq, power float64) {
	if len(p.Power) < 2 {
		return 0, 0
	}
	idx := floats.MaxIdx(p.Power[1:]) + 1
	return p.Freqs[idx], p.Power[idx]
}

// Resolution is the spacing between frequency bins.
func (p *PowerSpectrum) Resolution() float64 {
	if len(p.Freqs) < 2 {
		return 0
	}
	return p.Freqs[1]
}
