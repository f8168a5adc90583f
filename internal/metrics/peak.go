package metrics

import (
	"math"

	"github.com/san-kum/mpm1d/internal/mpm"
)

// Peak tracks the largest absolute value of one particle quantity.
type Peak struct {
	name  string
	field func(p mpm.Particle) float64
	peak  float64
}

func NewPeak(name string, field func(p mpm.Particle) float64) *Peak {
	return &Peak{name: name, field: field}
}

func NewPeakStress() *Peak {
	return NewPeak("peak_stress", func(p mpm.Particle) float64 { return p.Stress })
}

func NewPeakVelocity() *Peak {
	return NewPeak("peak_velocity", func(p mpm.Particle) float64 { return p.Velocity })
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(snap mpm.Snapshot) {
	snap.Each(func(_ int, particle mpm.Particle) {
		p.peak = math.Max(p.peak, math.Abs(p.field(particle)))
	})
}

func (p *Peak) Value() float64 { return p.peak }
func (p *Peak) Reset()         { p.peak = 0 }

// Defaults returns the metrics attached to every experiment.
func Defaults() []mpm.Metric {
	return []mpm.Metric{
		NewMassDrift(),
		NewEnergyDrift(),
		NewPeakStress(),
		NewPeakVelocity(),
	}
}
