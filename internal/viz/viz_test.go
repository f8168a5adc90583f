package viz

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mpm1d/internal/mpm"
)

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleFrames() []Frame {
	frames := make([]Frame, 5)
	for i := range frames {
		d := 0.001 * float64(i)
		frames[i] = Frame{Time: 0.1 * float64(i), X: []float64{0.25 + d, 0.75 + 2*d}}
	}
	return frames
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	if c.DotsWide() != 8 || c.DotsHigh() != 8 {
		t.Fatalf("unexpected size %dx%d", c.DotsWide(), c.DotsHigh())
	}

	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("expected dot set")
	}
	c.Unset(3, 5)
	if c.IsSet(3, 5) {
		t.Error("expected dot cleared")
	}

	c.Set(-1, 0)
	c.Set(100, 100)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot %d missing", i)
		}
	}

	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 2 || len([]rune(lines[0])) != 4 {
		t.Errorf("unexpected render %q", c.String())
	}

	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("expected empty canvas after clear")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		fraction float64
		full     int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{2, 10},
		{-1, 0},
	}
	for _, tt := range tests {
		bar := ProgressBar(tt.fraction, 10)
		if got := strings.Count(bar, "█"); got != tt.full {
			t.Errorf("fraction %v: %d full cells, want %d", tt.fraction, got, tt.full)
		}
		if got := strings.Count(bar, "░"); got != 10-tt.full {
			t.Errorf("fraction %v: %d empty cells, want %d", tt.fraction, got, 10-tt.full)
		}
	}
}

func TestSparkline(t *testing.T) {
	s := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	if s != "▁▂▃▄▅▆▇█" {
		t.Errorf("unexpected sparkline %q", s)
	}
	if Sparkline(nil, 5) != "" {
		t.Error("expected empty sparkline")
	}
}

func TestPlotSeries(t *testing.T) {
	numeric := make([]float64, 100)
	reference := make([]float64, 100)
	for i := range numeric {
		reference[i] = math.Cos(float64(i) / 10)
		numeric[i] = 0.9 * reference[i]
	}

	single := PlotSeries("velocity", numeric, nil)
	if !strings.Contains(single, "velocity") {
		t.Error("expected caption in plot")
	}
	both := PlotSeries("velocity", numeric, reference)
	if !strings.Contains(both, "analytical") {
		t.Error("expected legend in plot")
	}
	if PlotSeries("empty", nil, nil) != "" {
		t.Error("expected empty plot for no data")
	}
}

func TestProgressObserver(t *testing.T) {
	mat, _ := mpm.NewMaterial(1, 100)
	mesh, _ := mpm.NewMesh(0, 1, 2)
	if err := mesh.GenerateMesh(mat); err != nil {
		t.Fatal(err)
	}
	model, err := mpm.NewModel(mesh, 1, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	model.AddObserver(NewProgress(&buf, model.NumberOfSteps()))
	if err := model.Solve(context.Background()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	want := "step 20/20"
	if model.NumberOfSteps() != 20 {
		t.Fatalf("expected 20 steps, got %d", model.NumberOfSteps())
	}
	if !strings.Contains(out, want) {
		t.Errorf("expected %q in %q", want, out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("expected final newline")
	}
}

func TestAnimatorScaling(t *testing.T) {
	a := NewAnimator("bar", sampleFrames(), []float64{0, 0.5, 1}, []int{0}, 10)

	got := a.ScaledPositions(4)
	want := []float64{0.25 + 10*0.004, 0.75 + 10*0.008}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("scaled[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	lo, hi := a.Bounds()
	if lo != 0 || math.Abs(hi-1) > 1e-12 {
		t.Errorf("bounds [%v, %v], want [0, 1]", lo, hi)
	}

	big := NewAnimator("bar", sampleFrames(), []float64{0, 0.5, 1}, nil, 100)
	if _, hi := big.Bounds(); math.Abs(hi-1.55) > 1e-12 {
		t.Errorf("upper bound %v, want 1.55", hi)
	}

	if NewAnimator("bar", nil, nil, nil, 0).Scale() != DefaultScale {
		t.Error("expected default scale")
	}
}

func TestAnimatorUpdate(t *testing.T) {
	var m tea.Model = NewAnimator("bar", sampleFrames(), []float64{0, 0.5, 1}, []int{0}, 10)

	for i := 0; i < 10; i++ {
		m, _ = m.Update(TickMsg{})
	}
	a := m.(Animator)
	if a.Head() != 4 || a.Running() {
		t.Fatalf("expected replay to stop on last frame, head=%d running=%v", a.Head(), a.Running())
	}

	m, _ = m.Update(key("["))
	m, _ = m.Update(key("["))
	if got := m.(Animator).Head(); got != 2 {
		t.Errorf("head = %d after stepping back, want 2", got)
	}

	m, _ = m.Update(key("+"))
	if got := m.(Animator).Scale(); got != 20 {
		t.Errorf("scale = %v, want 20", got)
	}

	m, _ = m.Update(key("t"))
	if got := m.(Animator).ThemeName(); got != Themes[1].Name {
		t.Errorf("theme = %s, want %s", got, Themes[1].Name)
	}

	m, _ = m.Update(key(" "))
	if !m.(Animator).Running() {
		t.Error("expected space to resume")
	}

	view := m.View()
	if !strings.Contains(view, "BAR") {
		t.Error("expected name in view")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
