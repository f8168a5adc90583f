package mpm

// Element is a two-node segment of the mesh. Its nodes are shared with the
// neighbouring elements and owned by the Mesh.
type Element struct {
	Nodes    [2]*Node
	Volume   float64
	Mass     float64
	Material *Material
}

func NewElement(left, right *Node, volume float64, material *Material) *Element {
	return &Element{
		Nodes:    [2]*Node{left, right},
		Volume:   volume,
		Mass:     material.Density() * volume,
		Material: material,
	}
}

func (e *Element) XStart() float64 { return e.Nodes[0].Position() }
func (e *Element) XEnd() float64   { return e.Nodes[1].Position() }
func (e *Element) Length() float64 { return e.XEnd() - e.XStart() }

// Reset resets both nodes.
func (e *Element) Reset() {
	for _, n := range e.Nodes {
		n.Reset()
	}
}
