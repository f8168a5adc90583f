package mpm

import (
	"context"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// CourantFactor scales the critical time step h/c of the explicit scheme.
const CourantFactor = 0.1

// Model couples a mesh with its particle population and runs the USL solve.
type Model struct {
	mesh                *Mesh
	particlesPerElement int
	totalTime           float64

	dt    float64
	steps int

	particles []Particle
	result    []Snapshot

	observers []Observer
	metrics   []Metric
	solved    bool
}

// NewModel seeds particlesPerElement particles in every element of a
// generated mesh and fixes the time step for a run of totalTime.
func NewModel(mesh *Mesh, particlesPerElement int, totalTime float64) (*Model, error) {
	if mesh == nil || len(mesh.Elements) == 0 {
		return nil, fmt.Errorf("%w: mesh has no elements (call GenerateMesh first)", ErrInvalidModel)
	}
	if particlesPerElement < 1 {
		return nil, fmt.Errorf("%w: particles per element must be at least 1, got %d", ErrInvalidModel, particlesPerElement)
	}
	if !(totalTime > 0) || math.IsInf(totalTime, 0) {
		return nil, fmt.Errorf("%w: total time must be positive, got %g", ErrInvalidModel, totalTime)
	}

	m := &Model{
		mesh:                mesh,
		particlesPerElement: particlesPerElement,
		totalTime:           totalTime,
		metrics:             make([]Metric, 0),
		observers:           make([]Observer, 0),
	}
	m.defineDt()
	m.generateParticles()
	return m, nil
}

func (m *Model) AddMetric(mt Metric)    { m.metrics = append(m.metrics, mt) }
func (m *Model) AddObserver(o Observer) { m.observers = append(m.observers, o) }

func (m *Model) Mesh() *Mesh              { return m.mesh }
func (m *Model) Dt() float64              { return m.dt }
func (m *Model) TotalTime() float64       { return m.totalTime }
func (m *Model) ParticlesPerElement() int { return m.particlesPerElement }
func (m *Model) NumberOfSteps() int       { return m.steps }

// Particles returns the live particle slice. Drivers use it to set initial
// conditions before Solve; it must not be modified while solving.
func (m *Model) Particles() []Particle { return m.particles }

// SetVelocityField assigns v(x) to every particle.
func (m *Model) SetVelocityField(v func(x float64) float64) {
	for i := range m.particles {
		m.particles[i].Velocity = v(m.particles[i].X)
	}
}

// Result returns the snapshots recorded so far, one per completed step.
func (m *Model) Result() []Snapshot { return slices.Clone(m.result) }

func (m *Model) Snapshot(i int) Snapshot { return m.result[i] }

// Metrics returns the value of every registered metric.
func (m *Model) Metrics() map[string]float64 {
	out := make(map[string]float64, len(m.metrics))
	for _, mt := range m.metrics {
		out[mt.Name()] = mt.Value()
	}
	return out
}

func (m *Model) generateParticles() {
	n := m.particlesPerElement
	m.particles = make([]Particle, 0, n*len(m.mesh.Elements))
	for _, el := range m.mesh.Elements {
		dx := el.Length() / float64(n+1)
		for i := 0; i < n; i++ {
			m.particles = append(m.particles, NewParticle(
				el.XStart()+float64(i+1)*dx,
				el.Mass/float64(n),
				el.Volume/float64(n),
				el.Material,
			))
		}
	}
}

// MaxElasticWaveSpeed is the fastest wave speed over all element materials.
func (m *Model) MaxElasticWaveSpeed() float64 {
	c := 0.0
	for _, el := range m.mesh.Elements {
		c = math.Max(c, el.Material.ElasticWaveSpeed())
	}
	return c
}

// defineDt picks the largest dt below CourantFactor*h/c that divides the
// total time into a whole number of steps.
func (m *Model) defineDt() {
	dt0 := CourantFactor * m.mesh.ElementsLength() / m.MaxElasticWaveSpeed()
	n := int(math.Ceil(m.totalTime / dt0))
	if n < 1 {
		n = 1
	}
	m.steps = n
	m.dt = m.totalTime / float64(n)
}

// CourantNumber returns c*dt/h for the selected dt.
func (m *Model) CourantNumber() float64 {
	return m.MaxElasticWaveSpeed() * m.dt / m.mesh.ElementsLength()
}

// DiscreteTimeSteps returns NumberOfSteps() evenly spaced times over
// [0, TotalTime()].
func (m *Model) DiscreteTimeSteps() []float64 {
	if m.steps == 1 {
		return []float64{0}
	}
	ts := floats.Span(make([]float64, m.steps), 0, m.totalTime)
	ts[len(ts)-1] = m.totalTime
	return ts
}

// ElementContaining returns the element that holds p. A particle exactly on
// XEnd belongs to the last element.
func (m *Model) ElementContaining(p *Particle) (*Element, error) {
	if math.IsNaN(p.X) || math.IsInf(p.X, 0) {
		return nil, fmt.Errorf("%w: x=%g", ErrNonFinite, p.X)
	}
	idx := int(math.Floor((p.X - m.mesh.XStart) / m.mesh.ElementsLength()))
	if idx == len(m.mesh.Elements) && p.X <= m.mesh.XEnd {
		idx--
	}
	if idx < 0 || idx >= len(m.mesh.Elements) {
		return nil, fmt.Errorf("%w: x=%g not in [%g, %g]", ErrParticleOutOfDomain, p.X, m.mesh.XStart, m.mesh.XEnd)
	}
	return m.mesh.Elements[idx], nil
}

// Solve runs every step, recording a Snapshot after each one. A failing
// step stops the run and leaves Result() truncated to the completed steps.
func (m *Model) Solve(ctx context.Context) error {
	if m.solved {
		return ErrAlreadySolved
	}
	m.solved = true

	for _, mt := range m.metrics {
		mt.Reset()
	}

	times := m.DiscreteTimeSteps()
	m.result = make([]Snapshot, 0, m.steps)

	for i, t := range times {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := m.StepSolve(); err != nil {
			return &StepError{Step: i, Time: t, Wrapped: err}
		}

		snap := newSnapshot(i, t, m.particles)
		m.result = append(m.result, snap)

		for _, mt := range m.metrics {
			mt.Observe(snap)
		}
		for _, obs := range m.observers {
			obs.OnStep(snap)
		}
	}

	return nil
}
