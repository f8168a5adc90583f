// Package viz provides terminal output for MPM runs.
//
//   - [PlotSeries]: asciigraph line charts of center-of-mass histories
//   - [Progress]: an mpm.Observer printing a styled progress line
//   - [Animator]: Bubble Tea replay of stored particle positions on a
//     Braille [Canvas]
//
// # Key Bindings
//
//	Space - Pause/Resume replay
//	[ ]   - Step one frame back/forward
//	+ -   - Change displacement scale
//	T     - Cycle color themes
//	Q     - Quit
//
// Displacements are exaggerated by a scale factor, so oscillations of a
// stiff bar stay visible.
package viz
