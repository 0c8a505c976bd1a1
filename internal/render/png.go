package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/lorenzlab/internal/analysis"
	"github.com/san-kum/lorenzlab/internal/dynamo"
)

// Figure size for PNG output.
var (
	FigureWidth  = 8 * vg.Inch
	FigureHeight = 5 * vg.Inch
)

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if i >= len(ys) || !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func writePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(FigureWidth, FigureHeight, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, i int) error {
	if len(pts) == 0 {
		return nil
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	l.Color = plotutil.Color(i)
	p.Add(l)
	p.Legend.Add(name, l)
	return nil
}

// TrajectoryPNG plots the first few components against time.
func TrajectoryPNG(w io.Writer, title string, traj *dynamo.Trajectory, maxComponents int) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Add(plotter.NewGrid())

	for i := 0; i < min(maxComponents, traj.Dim()); i++ {
		if err := addLine(p, fmt.Sprintf("x%d", i), xys(traj.Times, traj.Component(i)), i); err != nil {
			return err
		}
	}
	return writePNG(w, p)
}

// PhasePNG plots components i and j of each member against each other.
func PhasePNG(w io.Writer, title string, ens *dynamo.Ensemble, i, j int) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("x%d", i)
	p.Y.Label.Text = fmt.Sprintf("x%d", j)

	for m := 0; m < min(ens.Size(), MaxHTMLMembers); m++ {
		traj := ens.Members[m]
		if i >= traj.Dim() || j >= traj.Dim() {
			return fmt.Errorf("phase plot: components (%d, %d) out of range for dim %d", i, j, traj.Dim())
		}
		if err := addLine(p, fmt.Sprintf("member %d", m), xys(traj.Component(i), traj.Component(j)), m); err != nil {
			return err
		}
	}
	return writePNG(w, p)
}

func HistogramPNG(w io.Writer, title string, h *analysis.Histogram) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"
	p.Add(histogramBars(h))
	return writePNG(w, p)
}

// histogramBars keeps the bin edges of h instead of letting plotter re-bin.
func histogramBars(h *analysis.Histogram) *plotter.Histogram {
	bins := make([]plotter.HistogramBin, len(h.Counts))
	for i, c := range h.Counts {
		bins[i] = plotter.HistogramBin{Min: h.Edges[i], Max: h.Edges[i+1], Weight: c}
	}
	width := 0.0
	if len(bins) > 0 {
		width = bins[0].Max - bins[0].Min
	}
	return &plotter.Histogram{
		Bins:      bins,
		Width:     width,
		FillColor: color.Gray{Y: 128},
		LineStyle: plotter.DefaultLineStyle,
	}
}
