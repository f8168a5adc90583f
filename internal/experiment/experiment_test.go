package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/mpm1d/internal/config"
)

func TestRegistryLists(t *testing.T) {
	reg := NewRegistry()

	fields := reg.ListVelocityFields()
	want := []string{"linear", "sine_mode", "uniform"}
	if len(fields) != len(want) {
		t.Fatalf("expected %v, got %v", want, fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("fields[%d] = %s, want %s", i, fields[i], want[i])
		}
	}

	if got := reg.ListAnalyticals(); len(got) != 3 {
		t.Errorf("expected 3 analytical solutions, got %v", got)
	}
	if len(reg.DefaultMetrics()) == 0 {
		t.Error("expected default metrics")
	}
}

func TestVelocityFields(t *testing.T) {
	reg := NewRegistry()
	cfg := config.DefaultConfig()
	cfg.Domain = config.DomainConfig{XStart: 2, XEnd: 4, Elements: 2}
	cfg.InitialVelocity.Amplitude = 0.5

	tests := []struct {
		field string
		mode  int
		x     float64
		want  float64
	}{
		{"uniform", 1, 3, 0.5},
		{"linear", 1, 2, 0},
		{"linear", 1, 3, 0.25},
		{"linear", 1, 4, 0.5},
		{"sine_mode", 1, 2, 0},
		{"sine_mode", 1, 4, 0.5},
		{"sine_mode", 2, 4, -0.5},
		{"sine_mode", 0, 4, 0.5},
	}

	for _, tt := range tests {
		cfg.InitialVelocity.Field = tt.field
		cfg.InitialVelocity.Mode = tt.mode
		fn, err := reg.GetVelocityField(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if got := fn(tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s mode %d at %v: got %v, want %v", tt.field, tt.mode, tt.x, got, tt.want)
		}
	}
}

func TestUnknownNames(t *testing.T) {
	reg := NewRegistry()

	cfg := config.DefaultConfig()
	cfg.InitialVelocity.Field = "gaussian"
	if _, err := reg.GetVelocityField(cfg); err == nil {
		t.Error("expected error for unknown velocity field")
	}
	if _, err := New(cfg, reg); err == nil {
		t.Error("expected New to reject unknown velocity field")
	}

	cfg = config.DefaultConfig()
	cfg.Analytical = "exact"
	if _, err := reg.GetAnalytical(cfg); err == nil {
		t.Error("expected error for unknown analytical solution")
	}

	cfg.Analytical = ""
	sol, err := reg.GetAnalytical(cfg)
	if err != nil || sol != nil {
		t.Errorf("empty analytical: got %v, %v", sol, err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Material.Young = 0
	if _, err := New(cfg, NewRegistry()); err == nil {
		t.Error("expected validation error")
	}
}

func TestNewFixesNodes(t *testing.T) {
	cfg := config.GetPreset("rest")
	cfg.FixedNodes = []int{0, cfg.Domain.Elements}

	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	nodes := exp.Model().Mesh().Nodes
	if !nodes[0].IsFixed() || !nodes[len(nodes)-1].IsFixed() {
		t.Error("expected both end nodes fixed")
	}
	if nodes[1].IsFixed() {
		t.Error("interior node should be free")
	}
	if got := len(exp.Model().Particles()); got != cfg.Domain.Elements*cfg.ParticlesPerElement {
		t.Errorf("expected %d particles, got %d", cfg.Domain.Elements*cfg.ParticlesPerElement, got)
	}
}

func TestRunRest(t *testing.T) {
	exp, err := New(config.GetPreset("rest"), NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.HasAnalytical() {
		t.Error("rest preset has no analytical solution")
	}
	if len(res.Snapshots) != exp.Model().NumberOfSteps() {
		t.Errorf("expected %d snapshots, got %d", exp.Model().NumberOfSteps(), len(res.Snapshots))
	}
	for i, v := range res.COMVelocity {
		if v != 0 {
			t.Fatalf("step %d: bar at rest moved with %v", i, v)
		}
	}
	if res.Metrics["mass_drift"] != 0 {
		t.Errorf("mass drift %v", res.Metrics["mass_drift"])
	}
}

func TestRunVibration(t *testing.T) {
	exp, err := New(config.GetPreset("vibration"), NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !res.HasAnalytical() || len(res.Analytical) != len(res.COMVelocity) {
		t.Fatal("expected analytical series matching the run")
	}
	if res.Analytical[0] != 0.1 {
		t.Errorf("analytical v(0) = %v, want 0.1", res.Analytical[0])
	}
	if res.MaxError <= 0 || res.MaxError > 0.15 {
		t.Errorf("max error %v", res.MaxError)
	}
	if res.Times[len(res.Times)-1] != 10 {
		t.Errorf("last time %v, want 10", res.Times[len(res.Times)-1])
	}
}

func TestRunCanceled(t *testing.T) {
	exp, err := New(config.GetPreset("vibration"), NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := exp.Run(ctx); err == nil {
		t.Error("expected error from canceled context")
	}
}
