package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/experiment"
)

// ErrNoCandidate is returned when no grid point produced a finite objective.
var ErrNoCandidate = errors.New("no grid point produced a finite objective")

// Objective scores a finished run; lower is better.
type Objective func(*experiment.Result) float64

// MaxError scores a run by its worst deviation from the analytical solution.
func MaxError(res *experiment.Result) float64 {
	if !res.HasAnalytical() {
		return math.NaN()
	}
	return res.MaxError
}

// Metric scores a run by one of its recorded metrics.
func Metric(name string) Objective {
	return func(res *experiment.Result) float64 {
		v, ok := res.Metrics[name]
		if !ok {
			return math.NaN()
		}
		return v
	}
}

// Steps scores a run by its step count, a proxy for cost.
func Steps(res *experiment.Result) float64 { return float64(len(res.Snapshots)) }

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if !slices.Contains(config.Params, name) {
			return nil, fmt.Errorf("unknown parameter %s", name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Evaluated counts the grid points a Search will solve.
func (g *GridSearch) Evaluated() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search solves base at every grid point and returns the parameters with
// the lowest objective. Points whose config is invalid or whose run fails
// are skipped; a canceled context stops the search.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	registry *experiment.Registry,
	objective Objective,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, registry, objective, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	registry *experiment.Registry,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := *base
		cfg.FixedNodes = slices.Clone(base.FixedNodes)
		for _, name := range g.paramNames {
			if err := cfg.Set(name, current[name]); err != nil {
				return err
			}
		}

		exp, err := experiment.New(&cfg, registry)
		if err != nil {
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}

		val := objective(result)
		if !math.IsNaN(val) && val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, registry, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
