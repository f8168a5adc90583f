package mpm

import (
	"fmt"
	"math"
)

// Mesh is an ordered chain of equal-length elements over [XStart, XEnd].
// Elements[i] spans Nodes[i] and Nodes[i+1].
type Mesh struct {
	XStart      float64
	XEnd        float64
	NumElements int
	Nodes       []*Node
	Elements    []*Element
}

type meshOptions struct {
	volume float64
}

// MeshOption customises GenerateMesh.
type MeshOption func(*meshOptions)

// WithElementVolume overrides the unit element volume.
func WithElementVolume(v float64) MeshOption {
	return func(o *meshOptions) { o.volume = v }
}

func NewMesh(xStart, xEnd float64, numElements int) (*Mesh, error) {
	if numElements < 1 {
		return nil, fmt.Errorf("%w: need at least one element, got %d", ErrInvalidMesh, numElements)
	}
	if !(xEnd > xStart) || math.IsInf(xStart, 0) || math.IsInf(xEnd, 0) {
		return nil, fmt.Errorf("%w: x_end (%g) must be greater than x_start (%g)", ErrInvalidMesh, xEnd, xStart)
	}
	return &Mesh{XStart: xStart, XEnd: xEnd, NumElements: numElements}, nil
}

func (m *Mesh) Length() float64 { return m.XEnd - m.XStart }

// ElementsLength returns the common element length.
func (m *Mesh) ElementsLength() float64 {
	return m.Length() / float64(m.NumElements)
}

// GenerateMesh builds the nodes and elements, all made of material.
func (m *Mesh) GenerateMesh(material *Material, opts ...MeshOption) error {
	if material == nil {
		return fmt.Errorf("%w: nil material", ErrInvalidMaterial)
	}
	if len(m.Nodes) > 0 || len(m.Elements) > 0 {
		return ErrMeshGenerated
	}

	o := meshOptions{volume: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.volume > 0) {
		return fmt.Errorf("%w: element volume must be positive, got %g", ErrInvalidMesh, o.volume)
	}

	h := m.ElementsLength()
	m.Nodes = make([]*Node, 0, m.NumElements+1)
	m.Elements = make([]*Element, 0, m.NumElements)

	m.Nodes = append(m.Nodes, NewNode(m.XStart))
	for i := 0; i < m.NumElements; i++ {
		x := m.XStart + float64(i+1)*h
		if i == m.NumElements-1 {
			x = m.XEnd
		}
		right := NewNode(x)
		m.Nodes = append(m.Nodes, right)
		m.Elements = append(m.Elements, NewElement(m.Nodes[i], right, o.volume, material))
	}
	return nil
}

// FixedNodes returns the indices of constrained nodes.
func (m *Mesh) FixedNodes() []int {
	var idx []int
	for i, n := range m.Nodes {
		if n.IsFixed() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Reset resets every node once. Shared nodes are not visited twice.
func (m *Mesh) Reset() {
	for _, n := range m.Nodes {
		n.Reset()
	}
}

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh(length=%g, n_els=%d, n_nodes=%d)", m.Length(), m.NumElements, len(m.Nodes))
}
