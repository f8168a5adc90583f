package analysis

import (
	"math"

	"github.com/san-kum/mpm1d/internal/mpm"
)

func CenterOfMassVelocity(history []mpm.Snapshot) []float64 {
	out := make([]float64, len(history))
	for i, snap := range history {
		out[i] = snap.CenterOfMassVelocity()
	}
	return out
}

func CenterOfMassPosition(history []mpm.Snapshot) []float64 {
	out := make([]float64, len(history))
	for i, snap := range history {
		out[i] = snap.CenterOfMassPosition()
	}
	return out
}

// Times returns the time stamp of every snapshot.
func Times(history []mpm.Snapshot) []float64 {
	out := make([]float64, len(history))
	for i, snap := range history {
		out[i] = snap.Time()
	}
	return out
}

// TimeSteps returns i*dt for i in [0, n).
func TimeSteps(n int, dt float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * dt
	}
	return out
}

func Positions(snap mpm.Snapshot) []float64 {
	out := make([]float64, snap.Len())
	snap.Each(func(i int, p mpm.Particle) {
		out[i] = p.X
	})
	return out
}

// MaxDisplacement is the largest |x(t) - x(0)| of any particle, measured from
// the first snapshot.
func MaxDisplacement(history []mpm.Snapshot) float64 {
	if len(history) == 0 {
		return 0
	}
	start := Positions(history[0])
	d := 0.0
	for _, snap := range history[1:] {
		snap.Each(func(i int, p mpm.Particle) {
			d = math.Max(d, math.Abs(p.X-start[i]))
		})
	}
	return d
}
