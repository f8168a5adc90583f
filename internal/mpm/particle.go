package mpm

import (
	"fmt"
	"math"
)

// Particle is a material point. It is a plain value: copying a Particle
// copies its whole state, and Material is immutable.
type Particle struct {
	X                   float64
	Velocity            float64
	Mass                float64
	InitialVolume       float64
	CurrentVolume       float64
	Material            *Material
	Stress              float64
	VelocityGradient    float64
	DeformationGradient float64
	StrainIncrement     float64
}

func NewParticle(x, mass, volume float64, material *Material) Particle {
	return Particle{
		X:                   x,
		Mass:                mass,
		InitialVolume:       volume,
		CurrentVolume:       volume,
		Material:            material,
		DeformationGradient: 1,
	}
}

func (p *Particle) Momentum() float64 { return p.Mass * p.Velocity }

func (p *Particle) UpdateVelocityGradient(nodeDiffShape, nodeVelocity float64) {
	p.VelocityGradient += nodeDiffShape * nodeVelocity
}

func (p *Particle) UpdateDeformationGradient(dt float64) {
	p.DeformationGradient *= 1 + p.VelocityGradient*dt
}

func (p *Particle) UpdateVolume() {
	p.CurrentVolume = p.DeformationGradient * p.InitialVolume
}

func (p *Particle) UpdateStrainIncrement(dt float64) {
	p.StrainIncrement = p.VelocityGradient * dt
}

// UpdateStress applies the 1D linear-elastic law.
func (p *Particle) UpdateStress() {
	p.Stress += p.Material.Young() * p.StrainIncrement
}

func (p *Particle) UpdateVelocityFromNode(shape, nodeForce, nodeMass, dt float64) {
	if shape == 0 || nodeMass == 0 {
		return
	}
	p.Velocity += dt * shape * nodeForce / nodeMass
}

func (p *Particle) UpdatePositionFromNode(shape, nodeMomentum, nodeMass, dt float64) {
	if shape == 0 || nodeMass == 0 {
		return
	}
	p.X += dt * shape * nodeMomentum / nodeMass
}

// Reset clears the per-step accumulators.
func (p *Particle) Reset() {
	p.VelocityGradient = 0
}

// IsValid reports whether every state quantity is finite.
func (p *Particle) IsValid() bool {
	for _, v := range [...]float64{
		p.X, p.Velocity, p.Stress, p.CurrentVolume,
		p.VelocityGradient, p.DeformationGradient, p.StrainIncrement,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Particle) String() string {
	return fmt.Sprintf("Particle(x=%g, velocity=%g, mass=%g, volume=%g, stress=%g)",
		p.X, p.Velocity, p.Mass, p.CurrentVolume, p.Stress)
}
