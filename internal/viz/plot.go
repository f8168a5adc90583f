package viz

import (
	"github.com/guptarohit/asciigraph"
)

const (
	PlotWidth  = 80
	PlotHeight = 12
)

// PlotSeries draws the numeric series and, when reference is non-nil, the
// reference beside it in a second color.
func PlotSeries(caption string, numeric, reference []float64) string {
	if len(numeric) == 0 {
		return ""
	}
	opts := []asciigraph.Option{
		asciigraph.Height(PlotHeight),
		asciigraph.Width(PlotWidth),
		asciigraph.Caption(caption),
	}
	if reference == nil {
		return asciigraph.Plot(numeric, opts...)
	}
	opts = append(opts,
		asciigraph.SeriesColors(asciigraph.DodgerBlue, asciigraph.Red),
		asciigraph.SeriesLegends("MPM", "analytical"),
	)
	return asciigraph.PlotMany([][]float64{numeric, reference}, opts...)
}
