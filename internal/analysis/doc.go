// Package analysis turns a solved particle history into the quantities used
// to judge a run.
//
// The package includes:
//
//   - [CenterOfMassVelocity], [CenterOfMassPosition]: mass-weighted series over a history
//   - [FreeVibration], [WaveMode]: closed-form center-of-mass velocity of the reference bars
//   - [AbsErrors], [MaxAbsError]: pointwise comparison against a closed form
//   - [Period], [DominantFrequency]: oscillation estimates from a series
//   - [GeneratePhasePortrait]: center-of-mass position against velocity
//
// # Checking a run
//
//	vcom := analysis.CenterOfMassVelocity(model.Result())
//	want := analysis.Evaluate(analysis.FreeVibration(0.1, E, rho, L), model.DiscreteTimeSteps())
//	worst := analysis.MaxAbsError(vcom, want)
package analysis
