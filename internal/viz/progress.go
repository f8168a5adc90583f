package viz

import (
	"fmt"
	"io"
	"time"

	"github.com/san-kum/mpm1d/internal/mpm"
)

// Progress is an mpm.Observer writing a progress line every Every steps and
// on the last step.
type Progress struct {
	w     io.Writer
	total int
	every int
	start time.Time
	Width int
}

func NewProgress(w io.Writer, total int) *Progress {
	every := max(1, total/20)
	return &Progress{w: w, total: total, every: every, start: time.Now(), Width: 30}
}

func (p *Progress) OnStep(snap mpm.Snapshot) {
	done := snap.Step() + 1
	if done%p.every != 0 && done != p.total {
		return
	}
	fraction := float64(done) / float64(p.total)
	line := fmt.Sprintf("\r%s %s step %d/%d t=%.4g %s",
		StatusRunning.Render("solving"),
		ProgressBar(fraction, p.Width),
		done, p.total, snap.Time(),
		Subtle.Render(time.Since(p.start).Round(time.Millisecond).String()),
	)
	if done == p.total {
		line += "\n"
	}
	fmt.Fprint(p.w, line)
}
