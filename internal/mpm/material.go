package mpm

import (
	"fmt"
	"math"
)

// Material is an immutable linear-elastic material. It is shared by pointer
// between every element and particle made of it.
type Material struct {
	density float64
	young   float64
}

func NewMaterial(density, young float64) (*Material, error) {
	if !(density > 0) || !(young > 0) || math.IsInf(density, 0) || math.IsInf(young, 0) {
		return nil, fmt.Errorf("%w: density=%g young=%g", ErrInvalidMaterial, density, young)
	}
	return &Material{density: density, young: young}, nil
}

func (m *Material) Density() float64 { return m.density }
func (m *Material) Young() float64   { return m.young }

// ElasticWaveSpeed returns sqrt(E/rho).
func (m *Material) ElasticWaveSpeed() float64 {
	return math.Sqrt(m.young / m.density)
}

func (m *Material) String() string {
	return fmt.Sprintf("Material(density=%g, young=%g)", m.density, m.young)
}
