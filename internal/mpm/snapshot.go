package mpm

// Snapshot is the state of every particle after one step. It owns its copy
// of the particles and exposes them read-only.
type Snapshot struct {
	step      int
	time      float64
	particles []Particle
}

func newSnapshot(step int, t float64, particles []Particle) Snapshot {
	c := make([]Particle, len(particles))
	copy(c, particles)
	return Snapshot{step: step, time: t, particles: c}
}

func (s Snapshot) Step() int     { return s.step }
func (s Snapshot) Time() float64 { return s.time }
func (s Snapshot) Len() int      { return len(s.particles) }

// Particle returns a copy of particle i.
func (s Snapshot) Particle(i int) Particle { return s.particles[i] }

// Particles returns a copy of all particles.
func (s Snapshot) Particles() []Particle {
	c := make([]Particle, len(s.particles))
	copy(c, s.particles)
	return c
}

// Each calls fn for every particle in order without copying the slice.
func (s Snapshot) Each(fn func(i int, p Particle)) {
	for i, p := range s.particles {
		fn(i, p)
	}
}

func (s Snapshot) TotalMass() float64 {
	total := 0.0
	for _, p := range s.particles {
		total += p.Mass
	}
	return total
}

// CenterOfMassVelocity is the mass-weighted mean particle velocity.
func (s Snapshot) CenterOfMassVelocity() float64 {
	return s.massWeighted(func(p *Particle) float64 { return p.Velocity })
}

// CenterOfMassPosition is the mass-weighted mean particle position.
func (s Snapshot) CenterOfMassPosition() float64 {
	return s.massWeighted(func(p *Particle) float64 { return p.X })
}

func (s Snapshot) massWeighted(f func(*Particle) float64) float64 {
	total, sum := 0.0, 0.0
	for i := range s.particles {
		p := &s.particles[i]
		total += p.Mass
		sum += f(p) * p.Mass
	}
	if total == 0 {
		return 0
	}
	return sum / total
}
