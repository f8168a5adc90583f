package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/experiment"
	"github.com/san-kum/mpm1d/internal/mpm"
)

// Scenario is a named batch of runs read from YAML.
type Scenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Runs        []*config.Config `yaml:"-"`
}

type scenarioFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Runs        []yaml.Node `yaml:"runs"`
}

// LoadScenario reads a scenario file. Each run entry either names a preset
// ("preset: wave") and overrides keys on top of it, or starts from
// config.DefaultConfig.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", file.Name)
	}

	sc := &Scenario{Name: file.Name, Description: file.Description}
	for i := range file.Runs {
		node := &file.Runs[i]

		var head struct {
			Preset string `yaml:"preset"`
		}
		if err := node.Decode(&head); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}

		cfg := config.DefaultConfig()
		if head.Preset != "" {
			if cfg = config.GetPreset(head.Preset); cfg == nil {
				return nil, fmt.Errorf("run %d: unknown preset %s", i+1, head.Preset)
			}
		}
		if err := node.Decode(cfg); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		sc.Runs = append(sc.Runs, cfg)
	}
	return sc, nil
}

// RunScenario solves every run of the scenario concurrently.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) ([]*experiment.Result, error) {
	return experiment.RunAll(ctx, scenario.Runs, registry)
}

// ParameterSweep varies one config parameter over Values.
type ParameterSweep struct {
	Base   *config.Config
	Param  string
	Values []float64
}

// Linspace fills Values with n evenly spaced points in [lo, hi].
func (s *ParameterSweep) Linspace(lo, hi float64, n int) {
	s.Values = make([]float64, n)
	if n == 1 {
		s.Values[0] = lo
		return
	}
	floats.Span(s.Values, lo, hi)
}

type SweepResult struct {
	ParamValue float64
	Steps      int
	Dt         float64
	MaxError   float64
	Metrics    map[string]float64
}

// RunSweep solves one copy of Base per value, all concurrently, and
// reports them in the order of Values.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if len(sweep.Values) == 0 {
		return nil, fmt.Errorf("sweep of %s has no values", sweep.Param)
	}

	cfgs := make([]*config.Config, len(sweep.Values))
	for i, v := range sweep.Values {
		cfg := *sweep.Base
		cfg.FixedNodes = slices.Clone(sweep.Base.FixedNodes)
		cfg.Name = fmt.Sprintf("%s_%s_%g", sweep.Base.Name, sweep.Param, v)
		if err := cfg.Set(sweep.Param, v); err != nil {
			return nil, err
		}
		cfgs[i] = &cfg
	}

	results, err := experiment.RunAll(ctx, cfgs, registry)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(results))
	for i, res := range results {
		out[i] = SweepResult{
			ParamValue: sweep.Values[i],
			Steps:      len(res.Snapshots),
			Dt:         res.Dt,
			MaxError:   res.MaxError,
			Metrics:    res.Metrics,
		}
	}
	return out, nil
}

// MonteCarloConfig perturbs one parameter of Base uniformly within
// ±Perturbation of its value, relative.
type MonteCarloConfig struct {
	Base         *config.Config
	Param        string
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID    int
	ParamValue float64
	MaxError   float64
	Metrics    map[string]float64
	Stable     bool
}

// RunMonteCarlo runs the trials one after another. A trial is stable when its
// solve completes with finite metrics; one that fails on a step is recorded
// as unstable instead of aborting the batch.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", cfg.NumTrials)
	}
	if cfg.Perturbation < 0 || cfg.Perturbation >= 1 {
		return nil, fmt.Errorf("perturbation must be in [0, 1), got %g", cfg.Perturbation)
	}
	nominal, err := cfg.Base.Get(cfg.Param)
	if err != nil {
		return nil, err
	}

	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		v := nominal * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)

		run := *cfg.Base
		run.FixedNodes = slices.Clone(cfg.Base.FixedNodes)
		run.Name = fmt.Sprintf("%s_mc%d", cfg.Base.Name, trial)
		if err := run.Set(cfg.Param, v); err != nil {
			return nil, err
		}

		exp, err := experiment.New(&run, registry)
		if err != nil {
			return nil, err
		}

		mc := MonteCarloResult{TrialID: trial, ParamValue: v}
		res, err := exp.Run(ctx)
		var stepErr *mpm.StepError
		switch {
		case errors.As(err, &stepErr):
		case err != nil:
			return nil, err
		default:
			mc.MaxError = res.MaxError
			mc.Metrics = res.Metrics
			mc.Stable = finite(res.Metrics)
		}
		results = append(results, mc)
	}
	return results, nil
}

func finite(metrics map[string]float64) bool {
	for _, v := range metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

// MaxErrorSpread returns the mean and sample standard deviation of the max
// error over the stable trials.
func MaxErrorSpread(results []MonteCarloResult) (mean, std float64) {
	var xs []float64
	for _, r := range results {
		if r.Stable {
			xs = append(xs, r.MaxError)
		}
	}
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}
