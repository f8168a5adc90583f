package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	canvasWidth  = 70
	canvasHeight = 6
	replayFrames = 600
	DefaultScale = 60
)

type TickMsg time.Time

// Frame is the particle positions at one stored step.
type Frame struct {
	Time float64
	X    []float64
}

// Animator replays a particle history with displacements from the first
// frame multiplied by Scale.
type Animator struct {
	name    string
	frames  []Frame
	nodes   []float64
	fixed   map[int]bool
	scale   float64
	head    int
	stride  int
	running bool
	theme   int
	canvas  *Canvas
}

func NewAnimator(name string, frames []Frame, nodes []float64, fixed []int, scale float64) Animator {
	if scale <= 0 {
		scale = DefaultScale
	}
	isFixed := make(map[int]bool, len(fixed))
	for _, i := range fixed {
		isFixed[i] = true
	}
	return Animator{
		name:    name,
		frames:  frames,
		nodes:   nodes,
		fixed:   isFixed,
		scale:   scale,
		stride:  max(1, len(frames)/replayFrames),
		running: true,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (a Animator) Init() tea.Cmd { return tick() }

func (a Animator) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return a, tea.Quit
		case " ":
			if !a.running && a.head == len(a.frames)-1 {
				a.head = 0
			}
			a.running = !a.running
		case "[":
			a.running = false
			a.head = max(0, a.head-1)
		case "]":
			a.running = false
			a.head = min(len(a.frames)-1, a.head+1)
		case "+", "=":
			a.scale *= 2
		case "-", "_":
			a.scale = max(1, a.scale/2)
		case "t":
			a.theme = (a.theme + 1) % len(Themes)
		}
	case TickMsg:
		if a.running && len(a.frames) > 0 {
			a.head += a.stride
			if a.head >= len(a.frames)-1 {
				a.head = len(a.frames) - 1
				a.running = false
			}
		}
		return a, tick()
	}
	return a, nil
}

func (a Animator) Head() int         { return a.head }
func (a Animator) Scale() float64    { return a.scale }
func (a Animator) Running() bool     { return a.running }
func (a Animator) ThemeName() string { return Themes[a.theme].Name }

// ScaledPositions returns x0 + scale*(x - x0) for frame i.
func (a Animator) ScaledPositions(i int) []float64 {
	if len(a.frames) == 0 {
		return nil
	}
	x0 := a.frames[0].X
	out := make([]float64, len(a.frames[i].X))
	for j, x := range a.frames[i].X {
		out[j] = x0[j] + a.scale*(x-x0[j])
	}
	return out
}

// Bounds spans the mesh and every scaled particle position of the run.
func (a Animator) Bounds() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range a.nodes {
		lo, hi = min(lo, x), max(hi, x)
	}
	for i := range a.frames {
		for _, x := range a.ScaledPositions(i) {
			lo, hi = min(lo, x), max(hi, x)
		}
	}
	if math.IsInf(lo, 0) || hi <= lo {
		return 0, 1
	}
	return lo, hi
}

func (a Animator) render() {
	c := a.canvas
	c.Clear()
	if len(a.frames) == 0 {
		return
	}

	lo, hi := a.Bounds()
	w, h := c.DotsWide(), c.DotsHigh()
	project := func(x float64) int {
		return int((x - lo) / (hi - lo) * float64(w-1))
	}
	mid := h / 2

	c.DrawLine(0, mid+3, w-1, mid+3)
	for i, x := range a.nodes {
		px := project(x)
		c.DrawLine(px, mid+1, px, mid+5)
		if a.fixed[i] {
			c.DrawLine(px-2, h-1, px+2, h-1)
		}
	}
	for _, x := range a.ScaledPositions(a.head) {
		c.Dot(project(x), mid-2, 1)
	}
}

func (a Animator) View() string {
	a.render()
	theme := Themes[a.theme]

	status := StatusRunning.Render("PLAYING")
	if !a.running {
		status = StatusPaused.Render("PAUSED")
	}

	t := 0.0
	if len(a.frames) > 0 {
		t = a.frames[a.head].Time
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(a.name)) + "\n")
	s.WriteString(status + "\n\n")
	s.WriteString(lipgloss.NewStyle().Foreground(theme.Particles).Render(a.canvas.String()))
	s.WriteString("\n")
	s.WriteString(Metric("time", t) + "\n")
	s.WriteString(Metric("frame", float64(a.head)) + Subtle.Render(fmt.Sprintf(" / %d", max(0, len(a.frames)-1))) + "\n")
	s.WriteString(Metric("scale", a.scale) + "\n")
	s.WriteString(MetricLabel.Render("theme") + lipgloss.NewStyle().Foreground(theme.Accent).Render(theme.Name) + "\n")
	s.WriteString(KeyHint.Render("\nSP:Pause [ ]:Step +/-:Scale T:Theme Q:Quit"))
	return Panel.Render(s.String())
}

// Animate runs the replay in the alternate screen until the user quits.
func Animate(a Animator) error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}
