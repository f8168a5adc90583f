// Package chart renders run histories to PNG, SVG or PDF figures with
// gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/mpm1d/internal/analysis"
)

var (
	Width  = 8 * vg.Inch
	Height = 4 * vg.Inch
)

var (
	numericColor    = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	analyticalColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	nodeColor       = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
)

var (
	ErrLengthMismatch = errors.New("chart: series length mismatch")
	ErrFormat         = errors.New("chart: unsupported format")
)

// Formats lists the figure formats SaveRun accepts.
var Formats = []string{"png", "svg", "pdf"}

// Run is everything the figures need from one simulation.
type Run struct {
	Name       string
	Times      []float64
	Velocity   []float64
	Position   []float64
	Analytical []float64
	Nodes      []float64
	FixedNodes []int
	Particles  []float64
}

func xys(x, y []float64) (plotter.XYs, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts, nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, name string, x, y []float64, c color.Color, dashed bool) error {
	pts, err := xys(x, y)
	if err != nil {
		return err
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	if dashed {
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// Velocity plots center-of-mass velocity, with the closed form dashed when
// analytical is non-nil.
func Velocity(times, numeric, analytical []float64) (*plot.Plot, error) {
	p := newPlot("Velocity of the center of mass", "time (s)", "velocity (m/s)")
	if err := addLine(p, "MPM", times, numeric, numericColor, false); err != nil {
		return nil, err
	}
	if analytical != nil {
		if err := addLine(p, "analytical", times, analytical, analyticalColor, true); err != nil {
			return nil, err
		}
	}
	p.Legend.Top = true
	return p, nil
}

func Position(times, position []float64) (*plot.Plot, error) {
	p := newPlot("Position of the center of mass", "time (s)", "position (m)")
	if err := addLine(p, "MPM", times, position, numericColor, false); err != nil {
		return nil, err
	}
	return p, nil
}

func VelocityError(times, numeric, analytical []float64) (*plot.Plot, error) {
	if len(numeric) != len(analytical) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(numeric), len(analytical))
	}
	p := newPlot("Velocity error", "time (s)", "|MPM - analytical| (m/s)")
	if err := addLine(p, "error", times, analysis.AbsErrors(numeric, analytical), numericColor, false); err != nil {
		return nil, err
	}
	return p, nil
}

// Structure draws free nodes, fixed nodes and particles on the bar axis.
func Structure(nodes []float64, fixed []int, particles []float64) (*plot.Plot, error) {
	p := newPlot("Initial structure", "x (m)", "")
	p.Y.Min, p.Y.Max = -1, 1
	p.Y.Tick.Marker = plot.ConstantTicks(nil)

	isFixed := make(map[int]bool, len(fixed))
	for _, i := range fixed {
		if i < 0 || i >= len(nodes) {
			return nil, fmt.Errorf("chart: fixed node %d outside [0, %d)", i, len(nodes))
		}
		isFixed[i] = true
	}

	var free, held plotter.XYs
	for i, x := range nodes {
		if isFixed[i] {
			held = append(held, plotter.XY{X: x})
		} else {
			free = append(free, plotter.XY{X: x})
		}
	}
	pts := make(plotter.XYs, len(particles))
	for i, x := range particles {
		pts[i].X = x
	}

	groups := []struct {
		name  string
		pts   plotter.XYs
		shape draw.GlyphDrawer
		color color.Color
	}{
		{"free nodes", free, draw.BoxGlyph{}, nodeColor},
		{"fixed nodes", held, draw.TriangleGlyph{}, analyticalColor},
		{"particles", pts, draw.CircleGlyph{}, numericColor},
	}
	for _, g := range groups {
		if len(g.pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(g.pts)
		if err != nil {
			return nil, err
		}
		s.Shape = g.shape
		s.Color = g.color
		s.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add(g.name, s)
	}
	return p, nil
}

// Write encodes p in one of Formats.
func Write(p *plot.Plot, w io.Writer, format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("%w: %s", ErrFormat, format)
	}
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func WritePNG(p *plot.Plot, w io.Writer) error { return Write(p, w, "png") }

func Save(p *plot.Plot, path string) error {
	return p.Save(Width, Height, path)
}

// SaveRun writes every figure the run supports into dir as format files and
// returns the written paths.
func SaveRun(dir, format string, run Run) ([]string, error) {
	if !slices.Contains(Formats, format) {
		return nil, fmt.Errorf("%w: %s", ErrFormat, format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	type figure struct {
		name  string
		build func() (*plot.Plot, error)
	}
	figures := []figure{
		{"velocity", func() (*plot.Plot, error) { return Velocity(run.Times, run.Velocity, run.Analytical) }},
		{"position", func() (*plot.Plot, error) { return Position(run.Times, run.Position) }},
	}
	if run.Analytical != nil {
		figures = append(figures, figure{"error", func() (*plot.Plot, error) {
			return VelocityError(run.Times, run.Velocity, run.Analytical)
		}})
	}
	if len(run.Nodes) > 0 {
		figures = append(figures, figure{"structure", func() (*plot.Plot, error) {
			return Structure(run.Nodes, run.FixedNodes, run.Particles)
		}})
	}

	var paths []string
	for _, f := range figures {
		p, err := f.build()
		if err != nil {
			return paths, fmt.Errorf("%s: %w", f.name, err)
		}
		if run.Name != "" {
			p.Title.Text += " (" + run.Name + ")"
		}
		path := filepath.Join(dir, f.name+"."+format)
		if err := Save(p, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
