package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run         RunMetadata `json:"run"`
	Times       []float64   `json:"times"`
	COMVelocity []float64   `json:"com_velocity"`
	COMPosition []float64   `json:"com_position"`
	Analytical  []float64   `json:"analytical,omitempty"`
	Positions   [][]float64 `json:"positions,omitempty"`
}

// ExportJSON writes the metadata and center-of-mass series of a run. With
// positions set it also includes every particle position per step.
func (s *Store) ExportJSON(runID string, positions bool, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	com, err := s.LoadCenterOfMass(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:         *meta,
		Times:       com.Times,
		COMVelocity: com.Velocity,
		COMPosition: com.Position,
		Analytical:  com.Analytical,
	}

	if positions {
		frames, err := s.LoadParticles(runID)
		if err != nil {
			return err
		}
		data.Positions = make([][]float64, len(frames))
		for i, f := range frames {
			data.Positions[i] = make([]float64, len(f.Particles))
			for j, p := range f.Particles {
				data.Positions[i][j] = p.X
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
