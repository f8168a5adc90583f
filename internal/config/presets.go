package config

import (
	"math"
	"slices"
)

// Presets holds the reference problems. The vibration bar has E = 4*pi^2 so
// its period is exactly one second.
var Presets = map[string]*Config{
	"vibration": {
		Name:                "vibration",
		Domain:              DomainConfig{XStart: 0, XEnd: 1, Elements: 1},
		Material:            MaterialConfig{Density: 1, Young: 4 * math.Pi * math.Pi},
		ParticlesPerElement: 1,
		TotalTime:           10,
		InitialVelocity:     VelocityConfig{Field: "uniform", Amplitude: 0.1, Mode: 1},
		FixedNodes:          []int{0},
		Analytical:          "free_vibration",
	},
	"wave": {
		Name:                "wave",
		Domain:              DomainConfig{XStart: 0, XEnd: 25, Elements: 25},
		Material:            MaterialConfig{Density: 1, Young: 100},
		ParticlesPerElement: 2,
		TotalTime:           140,
		InitialVelocity:     VelocityConfig{Field: "sine_mode", Amplitude: 0.1, Mode: 1},
		FixedNodes:          []int{0},
		Analytical:          "wave_mode",
	},
	"rest": {
		Name:                "rest",
		Domain:              DomainConfig{XStart: 0, XEnd: 1, Elements: 4},
		Material:            MaterialConfig{Density: 1, Young: 100},
		ParticlesPerElement: 2,
		TotalTime:           1,
		InitialVelocity:     VelocityConfig{Field: "uniform", Amplitude: 0, Mode: 1},
		FixedNodes:          []int{0},
		Analytical:          "none",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.FixedNodes = slices.Clone(p.FixedNodes)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
