package analysis

import (
	"strings"

	"github.com/san-kum/mpm1d/internal/mpm"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds center-of-mass position (X) against velocity (Y).
type PhasePortrait2D struct {
	Points []Point
}

func GeneratePhasePortrait(history []mpm.Snapshot) *PhasePortrait2D {
	portrait := &PhasePortrait2D{Points: make([]Point, len(history))}
	for i, snap := range history {
		portrait.Points[i] = Point{
			X: snap.CenterOfMassPosition(),
			Y: snap.CenterOfMassVelocity(),
		}
	}
	return portrait
}

// PhasePortraitFromSeries pairs stored position and velocity series.
func PhasePortraitFromSeries(position, velocity []float64) *PhasePortrait2D {
	n := min(len(position), len(velocity))
	portrait := &PhasePortrait2D{Points: make([]Point, n)}
	for i := range n {
		portrait.Points[i] = Point{X: position[i], Y: velocity[i]}
	}
	return portrait
}

// ToASCII draws the portrait on a width x height grid, padded by a tenth of
// each range.
func (pp *PhasePortrait2D) ToASCII(width, height int) string {
	if pp == nil || len(pp.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := pp.Points[0].X, pp.Points[0].X
	minY, maxY := pp.Points[0].Y, pp.Points[0].Y
	for _, p := range pp.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	if minY <= 0 && minY+rangeY >= 0 {
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		for col := range grid[row] {
			grid[row][col] = '─'
		}
	}

	for _, p := range pp.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
