package experiment

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mpm1d/internal/analysis"
	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/mpm"
)

type Experiment struct {
	cfg        *config.Config
	model      *mpm.Model
	analytical analysis.Solution
}

// Result is a solved run with its center-of-mass series. Analytical is nil
// when the config names no closed form.
type Result struct {
	Config      *config.Config
	Dt          float64
	Nodes       []float64
	FixedNodes  []int
	Snapshots   []mpm.Snapshot
	Times       []float64
	COMVelocity []float64
	COMPosition []float64
	Analytical  []float64
	MaxError    float64
	Metrics     map[string]float64
}

func (r *Result) HasAnalytical() bool { return r.Analytical != nil }

// New builds the mesh, particles and boundary conditions described by cfg.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	field, err := reg.GetVelocityField(cfg)
	if err != nil {
		return nil, err
	}
	sol, err := reg.GetAnalytical(cfg)
	if err != nil {
		return nil, err
	}

	mat, err := mpm.NewMaterial(cfg.Material.Density, cfg.Material.Young)
	if err != nil {
		return nil, err
	}
	mesh, err := mpm.NewMesh(cfg.Domain.XStart, cfg.Domain.XEnd, cfg.Domain.Elements)
	if err != nil {
		return nil, err
	}
	if err := mesh.GenerateMesh(mat); err != nil {
		return nil, err
	}
	for _, n := range cfg.FixedNodes {
		mesh.Nodes[n].Fix()
	}

	model, err := mpm.NewModel(mesh, cfg.ParticlesPerElement, cfg.TotalTime)
	if err != nil {
		return nil, err
	}
	model.SetVelocityField(field)
	for _, m := range reg.DefaultMetrics() {
		model.AddMetric(m)
	}

	return &Experiment{cfg: cfg, model: model, analytical: sol}, nil
}

func (e *Experiment) Model() *mpm.Model { return e.model }

func (e *Experiment) AddObserver(o mpm.Observer) { e.model.AddObserver(o) }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := e.model.Solve(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", e.cfg.Name, err)
	}

	history := e.model.Result()
	res := &Result{
		Config:      e.cfg,
		Dt:          e.model.Dt(),
		FixedNodes:  e.model.Mesh().FixedNodes(),
		Snapshots:   history,
		Times:       e.model.DiscreteTimeSteps(),
		COMVelocity: analysis.CenterOfMassVelocity(history),
		COMPosition: analysis.CenterOfMassPosition(history),
		Metrics:     e.model.Metrics(),
	}
	for _, n := range e.model.Mesh().Nodes {
		res.Nodes = append(res.Nodes, n.Position())
	}
	if e.analytical != nil {
		res.Analytical = analysis.Evaluate(e.analytical, res.Times)
		res.MaxError = analysis.MaxAbsError(res.COMVelocity, res.Analytical)
	}
	return res, nil
}

// RunAll builds and runs every config concurrently, at most GOMAXPROCS at a
// time. Results keep the order of cfgs; the first failure in that order is
// returned.
func RunAll(ctx context.Context, cfgs []*config.Config, reg *Registry) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, cfg := range cfgs {
		g.Go(func() error {
			exp, err := New(cfg, reg)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = exp.Run(ctx)
			return nil
		})
	}

	g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
