package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultXStart        = 0.0
	DefaultXEnd          = 1.0
	DefaultElements      = 1
	DefaultDensity       = 1.0
	DefaultYoung         = 100.0
	DefaultParticles     = 1
	DefaultTotalTime     = 1.0
	DefaultVelocityField = "uniform"
	DefaultAnalytical    = "none"
)

var ErrUnsupportedFormat = errors.New("config: unsupported file format")

type Config struct {
	Name                string         `yaml:"name" toml:"name" json:"name"`
	Domain              DomainConfig   `yaml:"domain" toml:"domain" json:"domain"`
	Material            MaterialConfig `yaml:"material" toml:"material" json:"material"`
	ParticlesPerElement int            `yaml:"particles_per_element" toml:"particles_per_element" json:"particles_per_element"`
	TotalTime           float64        `yaml:"total_time" toml:"total_time" json:"total_time"`
	InitialVelocity     VelocityConfig `yaml:"initial_velocity" toml:"initial_velocity" json:"initial_velocity"`
	FixedNodes          []int          `yaml:"fixed_nodes" toml:"fixed_nodes" json:"fixed_nodes"`
	Analytical          string         `yaml:"analytical" toml:"analytical" json:"analytical"`
}

type DomainConfig struct {
	XStart   float64 `yaml:"x_start" toml:"x_start" json:"x_start"`
	XEnd     float64 `yaml:"x_end" toml:"x_end" json:"x_end"`
	Elements int     `yaml:"elements" toml:"elements" json:"elements"`
}

type MaterialConfig struct {
	Density float64 `yaml:"density" toml:"density" json:"density"`
	Young   float64 `yaml:"young" toml:"young" json:"young"`
}

// VelocityConfig selects an initial velocity field by name. Mode is only
// read by sine_mode.
type VelocityConfig struct {
	Field     string  `yaml:"field" toml:"field" json:"field"`
	Amplitude float64 `yaml:"amplitude" toml:"amplitude" json:"amplitude"`
	Mode      int     `yaml:"mode" toml:"mode" json:"mode"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "run",
		Domain: DomainConfig{
			XStart:   DefaultXStart,
			XEnd:     DefaultXEnd,
			Elements: DefaultElements,
		},
		Material: MaterialConfig{
			Density: DefaultDensity,
			Young:   DefaultYoung,
		},
		ParticlesPerElement: DefaultParticles,
		TotalTime:           DefaultTotalTime,
		InitialVelocity: VelocityConfig{
			Field: DefaultVelocityField,
			Mode:  1,
		},
		FixedNodes: []int{0},
		Analytical: DefaultAnalytical,
	}
}

// Load reads a YAML or TOML file, chosen by extension. Keys missing from the
// file keep their DefaultConfig values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	case ".toml":
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config: %s: unknown key %q", path, undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first problem that would stop a model from being built.
func (c *Config) Validate() error {
	switch {
	case c.Material.Density <= 0:
		return fmt.Errorf("config: density must be positive, got %g", c.Material.Density)
	case c.Material.Young <= 0:
		return fmt.Errorf("config: young modulus must be positive, got %g", c.Material.Young)
	case c.Domain.Elements < 1:
		return fmt.Errorf("config: need at least one element, got %d", c.Domain.Elements)
	case c.Domain.XEnd <= c.Domain.XStart:
		return fmt.Errorf("config: x_end (%g) must exceed x_start (%g)", c.Domain.XEnd, c.Domain.XStart)
	case c.ParticlesPerElement < 1:
		return fmt.Errorf("config: need at least one particle per element, got %d", c.ParticlesPerElement)
	case c.TotalTime <= 0:
		return fmt.Errorf("config: total_time must be positive, got %g", c.TotalTime)
	}
	for _, n := range c.FixedNodes {
		if n < 0 || n > c.Domain.Elements {
			return fmt.Errorf("config: fixed node %d outside [0, %d]", n, c.Domain.Elements)
		}
	}
	return nil
}

// Length is the bar length x_end - x_start.
func (c *Config) Length() float64 {
	return c.Domain.XEnd - c.Domain.XStart
}

// Params lists the names accepted by Get and Set.
var Params = []string{"elements", "ppe", "time", "young", "density", "v0", "length"}

// Get reads a numeric parameter by name.
func (c *Config) Get(name string) (float64, error) {
	switch name {
	case "elements":
		return float64(c.Domain.Elements), nil
	case "ppe":
		return float64(c.ParticlesPerElement), nil
	case "time":
		return c.TotalTime, nil
	case "young":
		return c.Material.Young, nil
	case "density":
		return c.Material.Density, nil
	case "v0":
		return c.InitialVelocity.Amplitude, nil
	case "length":
		return c.Length(), nil
	}
	return 0, fmt.Errorf("config: unknown parameter %q (available: %v)", name, Params)
}

// Set assigns a numeric parameter by name. Integer parameters are rounded.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "elements":
		c.Domain.Elements = int(math.Round(v))
	case "ppe":
		c.ParticlesPerElement = int(math.Round(v))
	case "time":
		c.TotalTime = v
	case "young":
		c.Material.Young = v
	case "density":
		c.Material.Density = v
	case "v0":
		c.InitialVelocity.Amplitude = v
	case "length":
		c.Domain.XEnd = c.Domain.XStart + v
	default:
		return fmt.Errorf("config: unknown parameter %q (available: %v)", name, Params)
	}
	return nil
}
