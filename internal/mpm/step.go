package mpm

import (
	"errors"
	"fmt"
)

// StepSolve advances the model by one dt with the Update-Stress-Last scheme.
// The phases run strictly in order since each reads node state written by
// the previous one.
func (m *Model) StepSolve() error {
	m.reset()

	if err := m.mapParticlesToNodes(); err != nil {
		return err
	}

	for _, n := range m.mesh.Nodes {
		n.UpdateMomentum(m.dt)
	}

	if err := m.updateParticleKinematics(); err != nil {
		return err
	}

	return m.updateParticleStress()
}

func (m *Model) reset() {
	m.mesh.Reset()
	for i := range m.particles {
		m.particles[i].Reset()
	}
}

func (m *Model) mapParticlesToNodes() error {
	for i := range m.particles {
		p := &m.particles[i]
		el, err := m.ElementContaining(p)
		if err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
		lx := el.Length()
		for _, n := range el.Nodes {
			n.MapMassFromParticle(p, lx)
			n.MapMomentumFromParticle(p, lx)
			n.MapForceFromParticle(p, lx)
		}
	}
	return nil
}

// updateParticleKinematics evaluates both node weights at the position the
// particle had before this phase.
func (m *Model) updateParticleKinematics() error {
	for i := range m.particles {
		p := &m.particles[i]
		el, err := m.ElementContaining(p)
		if err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
		lx := el.Length()
		x := p.X
		for _, n := range el.Nodes {
			shape := n.Shape(x, lx)
			p.UpdateVelocityFromNode(shape, n.Force(), n.Mass(), m.dt)
			p.UpdatePositionFromNode(shape, n.Momentum(), n.Mass(), m.dt)
		}
	}
	return nil
}

func (m *Model) updateParticleStress() error {
	for i := range m.particles {
		p := &m.particles[i]
		el, err := m.ElementContaining(p)
		if err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
		lx := el.Length()
		for _, n := range el.Nodes {
			v, err := n.Velocity()
			if errors.Is(err, ErrZeroNodeMass) {
				continue
			}
			p.UpdateVelocityGradient(n.DiffShape(p.X, lx), v)
		}

		p.UpdateDeformationGradient(m.dt)
		p.UpdateVolume()
		p.UpdateStrainIncrement(m.dt)
		p.UpdateStress()

		if !p.IsValid() {
			return fmt.Errorf("particle %d: %w", i, ErrNonFinite)
		}
	}
	return nil
}
