package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/experiment"
)

func shortVibration() *config.Config {
	cfg := config.GetPreset("vibration")
	cfg.TotalTime = 1
	return cfg
}

func TestNewGridSearchRejects(t *testing.T) {
	tests := map[string]struct {
		params []string
		ranges [][]float64
	}{
		"length mismatch": {[]string{"young"}, nil},
		"unknown param":   {[]string{"gravity"}, [][]float64{{1}}},
		"empty range":     {[]string{"young"}, [][]float64{{}}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewGridSearch(tt.params, tt.ranges); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSearchFewestSteps(t *testing.T) {
	g, err := NewGridSearch([]string{"young", "ppe"}, [][]float64{{40, 10, 160}, {1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Evaluated() != 6 {
		t.Errorf("evaluated = %d, want 6", g.Evaluated())
	}

	base := shortVibration()
	params, best, err := g.Search(context.Background(), base, experiment.NewRegistry(), Steps)
	if err != nil {
		t.Fatal(err)
	}
	// 1 / (0.1 / sqrt(10)) rounds up to 32 steps.
	if best != 32 || params["young"] != 10 || params["ppe"] != 1 {
		t.Errorf("best = %v at %v", best, params)
	}
	if base.Material.Young != 4*math.Pi*math.Pi {
		t.Error("search mutated its base config")
	}
}

func TestSearchSkipsInvalidPoints(t *testing.T) {
	g, _ := NewGridSearch([]string{"young"}, [][]float64{{-1, 10}})
	params, _, err := g.Search(context.Background(), shortVibration(), experiment.NewRegistry(), Metric("mass_drift"))
	if err != nil {
		t.Fatal(err)
	}
	if params["young"] != 10 {
		t.Errorf("params = %v", params)
	}
}

func TestSearchNoCandidate(t *testing.T) {
	g, _ := NewGridSearch([]string{"time"}, [][]float64{{0.05}})

	// The rest preset has no analytical solution to score against.
	_, _, err := g.Search(context.Background(), config.GetPreset("rest"), experiment.NewRegistry(), MaxError)
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}

	_, _, err = g.Search(context.Background(), config.GetPreset("rest"), experiment.NewRegistry(), Metric("missing"))
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestSearchMaxError(t *testing.T) {
	g, _ := NewGridSearch([]string{"ppe"}, [][]float64{{1, 2}})
	params, best, err := g.Search(context.Background(), shortVibration(), experiment.NewRegistry(), MaxError)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := params["ppe"]; !ok || !(best > 0) || best > 0.15 {
		t.Errorf("best = %v at %v", best, params)
	}
}

func TestSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, _ := NewGridSearch([]string{"young"}, [][]float64{{10}})
	if _, _, err := g.Search(ctx, shortVibration(), experiment.NewRegistry(), Steps); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
