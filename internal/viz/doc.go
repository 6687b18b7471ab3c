// Package viz renders simulations in the terminal.
//
//   - [Model]: Bubble Tea program that steps a system and draws its
//     particles sliding on the potential curve
//   - [Canvas]: Braille pixel canvas used by the live view
//   - [PlotEnergies], [PlotPosition], [PlotPotential]: static asciigraph charts
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state
//	+/-   - Steps per frame
//	T     - Cycle color themes
//	Q     - Quit
package viz
