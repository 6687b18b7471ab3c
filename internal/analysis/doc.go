// Package analysis post-processes energy logs.
//
//   - [Spectrum]: power spectrum of the logged position and its dominant frequency
//   - [PhasePortrait]: position/velocity points from a log, with an ASCII renderer
//   - [CrossingPeriod]: oscillation period from upward crossings of a level
//   - [DtSweep]: energy drift against time step and the fitted order of accuracy
//
// A harmonic run should show a spectral peak near sqrt(k/m)/(2*pi):
//
//	ps, err := analysis.Spectrum(records, cfg.Dt*float64(cfg.PrintFreq))
//	f, _ := ps.Dominant()
package analysis
