package experiment

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/mpm1d/internal/analysis"
	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/metrics"
	"github.com/san-kum/mpm1d/internal/mpm"
)

// VelocityField maps a particle position to its initial velocity.
type VelocityField func(x float64) float64

type Registry struct {
	velocities  map[string]func(cfg *config.Config) VelocityField
	analyticals map[string]func(cfg *config.Config) analysis.Solution
}

func NewRegistry() *Registry {
	r := &Registry{
		velocities:  make(map[string]func(cfg *config.Config) VelocityField),
		analyticals: make(map[string]func(cfg *config.Config) analysis.Solution),
	}

	r.velocities["uniform"] = func(cfg *config.Config) VelocityField {
		v0 := cfg.InitialVelocity.Amplitude
		return func(float64) float64 { return v0 }
	}
	r.velocities["sine_mode"] = func(cfg *config.Config) VelocityField {
		v0 := cfg.InitialVelocity.Amplitude
		x0 := cfg.Domain.XStart
		beta := analysis.ModeWaveNumber(cfg.Length(), mode(cfg))
		return func(x float64) float64 { return v0 * math.Sin(beta*(x-x0)) }
	}
	r.velocities["linear"] = func(cfg *config.Config) VelocityField {
		v0 := cfg.InitialVelocity.Amplitude
		x0, l := cfg.Domain.XStart, cfg.Length()
		return func(x float64) float64 { return v0 * (x - x0) / l }
	}

	r.analyticals["none"] = func(*config.Config) analysis.Solution { return nil }
	r.analyticals["free_vibration"] = func(cfg *config.Config) analysis.Solution {
		return analysis.FreeVibration(cfg.InitialVelocity.Amplitude, cfg.Material.Young, cfg.Material.Density, cfg.Length())
	}
	r.analyticals["wave_mode"] = func(cfg *config.Config) analysis.Solution {
		return analysis.WaveMode(cfg.InitialVelocity.Amplitude, cfg.Material.Young, cfg.Material.Density, cfg.Length(), mode(cfg))
	}

	return r
}

func mode(cfg *config.Config) int {
	if cfg.InitialVelocity.Mode < 1 {
		return 1
	}
	return cfg.InitialVelocity.Mode
}

func (r *Registry) GetVelocityField(cfg *config.Config) (VelocityField, error) {
	fn, ok := r.velocities[cfg.InitialVelocity.Field]
	if !ok {
		return nil, fmt.Errorf("unknown velocity field: %s", cfg.InitialVelocity.Field)
	}
	return fn(cfg), nil
}

// GetAnalytical returns nil, nil for "none" and an empty name.
func (r *Registry) GetAnalytical(cfg *config.Config) (analysis.Solution, error) {
	name := cfg.Analytical
	if name == "" {
		name = "none"
	}
	fn, ok := r.analyticals[name]
	if !ok {
		return nil, fmt.Errorf("unknown analytical solution: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListVelocityFields() []string {
	return sortedKeys(r.velocities)
}

func (r *Registry) ListAnalyticals() []string {
	return sortedKeys(r.analyticals)
}

func (r *Registry) DefaultMetrics() []mpm.Metric {
	return metrics.Defaults()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
