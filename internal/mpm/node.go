package mpm

import (
	"fmt"
	"math"
)

// Node is a fixed grid point. It accumulates mass, momentum and force from
// the particles around it once per step. While the node is fixed its
// momentum and force are forced to zero on every write.
type Node struct {
	position float64
	fixed    bool
	mass     float64
	momentum float64
	force    float64
}

func NewNode(x float64) *Node {
	return &Node{position: x}
}

func (n *Node) Position() float64 { return n.position }
func (n *Node) IsFixed() bool     { return n.fixed }
func (n *Node) Mass() float64     { return n.mass }
func (n *Node) Momentum() float64 { return n.momentum }
func (n *Node) Force() float64    { return n.force }

// SetFixed constrains or releases the node. Fixing zeroes the current
// momentum and force.
func (n *Node) SetFixed(fixed bool) {
	n.fixed = fixed
	n.SetMomentum(n.momentum)
	n.SetForce(n.force)
}

// Fix is shorthand for SetFixed(true).
func (n *Node) Fix() { n.SetFixed(true) }

func (n *Node) SetMomentum(v float64) {
	if n.fixed {
		v = 0
	}
	n.momentum = v
}

func (n *Node) SetForce(v float64) {
	if n.fixed {
		v = 0
	}
	n.force = v
}

// Velocity returns momentum/mass, or ErrZeroNodeMass when no mass was mapped.
func (n *Node) Velocity() (float64, error) {
	if n.mass == 0 {
		return 0, ErrZeroNodeMass
	}
	return n.momentum / n.mass, nil
}

// Shape evaluates the linear tent function of the node at xp with half-width lx.
func (n *Node) Shape(xp, lx float64) float64 {
	if n.position-lx <= xp && xp < n.position+lx {
		return 1 - math.Abs(xp-n.position)/lx
	}
	return 0
}

// DiffShape is the derivative of Shape. At xp == position the right-hand
// value -1/lx applies.
func (n *Node) DiffShape(xp, lx float64) float64 {
	switch {
	case n.position-lx <= xp && xp < n.position:
		return 1 / lx
	case n.position <= xp && xp <= n.position+lx:
		return -1 / lx
	default:
		return 0
	}
}

func (n *Node) MapMassFromParticle(p *Particle, lx float64) {
	n.mass += n.Shape(p.X, lx) * p.Mass
}

func (n *Node) MapMomentumFromParticle(p *Particle, lx float64) {
	n.SetMomentum(n.momentum + n.Shape(p.X, lx)*p.Momentum())
}

func (n *Node) MapForceFromParticle(p *Particle, lx float64) {
	n.SetForce(n.force - p.Stress*p.CurrentVolume*n.DiffShape(p.X, lx))
}

// UpdateMomentum integrates the nodal momentum with forward Euler.
func (n *Node) UpdateMomentum(dt float64) {
	n.SetMomentum(n.momentum + n.force*dt)
}

// Reset zeroes mass, momentum and force. Called once at the start of a step.
func (n *Node) Reset() {
	n.mass = 0
	n.momentum = 0
	n.force = 0
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(x=%g, mass=%g, momentum=%g, force=%g, fixed=%t)",
		n.position, n.mass, n.momentum, n.force, n.fixed)
}
