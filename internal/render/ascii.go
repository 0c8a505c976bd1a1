package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lorenzlab/internal/analysis"
	"github.com/san-kum/lorenzlab/internal/dynamo"
)

// Options sizes terminal charts in character cells.
type Options struct {
	Width  int
	Height int
}

func DefaultOptions() Options {
	return Options{Width: 80, Height: 12}
}

const noData = "(no finite samples)\n"

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Series plots a single curve.
func Series(values []float64, caption string, o Options) string {
	data := finite(values)
	if len(data) == 0 {
		return noData
	}
	return asciigraph.Plot(data,
		asciigraph.Height(o.Height),
		asciigraph.Width(o.Width),
		asciigraph.Caption(caption),
	) + "\n"
}

// Components stacks one chart per listed state component.
func Components(traj *dynamo.Trajectory, idx []int, o Options) string {
	var b strings.Builder
	for _, i := range idx {
		if i < 0 || i >= traj.Dim() {
			continue
		}
		b.WriteString(Series(traj.Component(i), fmt.Sprintf("x%d vs time", i), o))
		b.WriteString("\n")
	}
	return b.String()
}

// Band overlays a centre line with a lower and upper envelope, e.g. the
// ensemble mean of one component and mean ± spread.
func Band(center, spread []float64, caption string, o Options) string {
	n := min(len(center), len(spread))
	lo := make([]float64, 0, n)
	mid := make([]float64, 0, n)
	hi := make([]float64, 0, n)
	for k := 0; k < n; k++ {
		c, s := center[k], spread[k]
		if math.IsNaN(c+s) || math.IsInf(c+s, 0) {
			continue
		}
		lo = append(lo, c-s)
		mid = append(mid, c)
		hi = append(hi, c+s)
	}
	if len(mid) == 0 {
		return noData
	}
	return asciigraph.PlotMany([][]float64{lo, mid, hi},
		asciigraph.Height(o.Height),
		asciigraph.Width(o.Width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.White, asciigraph.Blue),
	) + "\n"
}

// Overlay draws several curves on shared axes.
func Overlay(series [][]float64, caption string, o Options) string {
	data := make([][]float64, 0, len(series))
	for _, s := range series {
		if f := finite(s); len(f) > 0 {
			data = append(data, f)
		}
	}
	if len(data) == 0 {
		return noData
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(o.Height),
		asciigraph.Width(o.Width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue, asciigraph.Yellow),
	) + "\n"
}

// HistogramBars prints one horizontal bar per bin, scaled so the fullest
// bin spans width characters.
func HistogramBars(h *analysis.Histogram, width int) string {
	peak := 0.0
	for _, c := range h.Counts {
		peak = math.Max(peak, c)
	}
	var b strings.Builder
	for i, c := range h.Counts {
		n := 0
		if peak > 0 {
			n = int(math.Round(c / peak * float64(width)))
		}
		fmt.Fprintf(&b, "%10.3f | %s %d\n", h.Edges[i], strings.Repeat("█", n), int(c))
	}
	return b.String()
}
