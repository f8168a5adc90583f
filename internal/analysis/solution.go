package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Solution is a closed-form center-of-mass velocity.
type Solution func(t float64) float64

// FreeVibration is a single element bar fixed at one end: v0*cos(wt) with
// w = sqrt(E/rho)/L.
func FreeVibration(v0, young, density, length float64) Solution {
	w := math.Sqrt(young/density) / length
	return func(t float64) float64 {
		return v0 * math.Cos(w*t)
	}
}

// WaveMode is the center-of-mass velocity of a fixed-free bar started in
// vibration mode n with v(x) = v0*sin(beta*x), beta = (pi/L)(2n-1)/2.
func WaveMode(v0, young, density, length float64, mode int) Solution {
	beta := ModeWaveNumber(length, mode)
	w := beta * math.Sqrt(young/density)
	return func(t float64) float64 {
		return v0 * math.Cos(w*t) / (beta * length)
	}
}

func ModeWaveNumber(length float64, mode int) float64 {
	return (math.Pi / length) * float64(2*mode-1) / 2
}

func Evaluate(sol Solution, times []float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = sol(t)
	}
	return out
}

// AbsErrors returns |a[i] - b[i]|. The slices must have equal length.
func AbsErrors(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.SubTo(out, a, b)
	for i := range out {
		out[i] = math.Abs(out[i])
	}
	return out
}

// MaxAbsError is the infinity norm of a - b.
func MaxAbsError(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, math.Inf(1))
}
