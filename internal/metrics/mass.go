package metrics

import (
	"math"

	"github.com/san-kum/mpm1d/internal/mpm"
)

// MassDrift is the largest absolute change of total particle mass. Particle
// masses are never updated, so anything but 0 points at a bug.
type MassDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(snap mpm.Snapshot) {
	total := snap.TotalMass()
	if m.samples == 0 {
		m.initial = total
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Abs(total-m.initial))
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
