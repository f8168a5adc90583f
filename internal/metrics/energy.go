package metrics

import (
	"math"

	"github.com/san-kum/mpm1d/internal/mpm"
)

// KineticEnergy returns sum(m v^2 / 2) over the snapshot.
func KineticEnergy(snap mpm.Snapshot) float64 {
	e := 0.0
	snap.Each(func(_ int, p mpm.Particle) {
		e += 0.5 * p.Mass * p.Velocity * p.Velocity
	})
	return e
}

// StrainEnergy returns sum(sigma^2 V / 2E) over the snapshot.
func StrainEnergy(snap mpm.Snapshot) float64 {
	e := 0.0
	snap.Each(func(_ int, p mpm.Particle) {
		e += 0.5 * p.Stress * p.Stress * p.CurrentVolume / p.Material.Young()
	})
	return e
}

// Energy is the mean total (kinetic + strain) energy over the run.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(snap mpm.Snapshot) {
	e.totalEnergy += KineticEnergy(snap) + StrainEnergy(snap)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure of the total energy from
// its value after the first step.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(snap mpm.Snapshot) {
	energy := KineticEnergy(snap) + StrainEnergy(snap)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
