package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/san-kum/lorenzlab/internal/analysis"
	"github.com/san-kum/lorenzlab/internal/dynamo"
)

// MaxHTMLMembers caps how many ensemble members get their own series.
const MaxHTMLMembers = 10

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Theme:     types.ThemeWesteros,
		Width:     "100%",
		Height:    "600px",
	})
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		if isFinite(v) {
			data[i] = opts.LineData{Value: v}
		} else {
			data[i] = opts.LineData{Value: "-"}
		}
	}
	return data
}

func timeSeriesChart(title string, times []float64, series map[string][]float64, order []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Type:   "scroll",
			Orient: "horizontal",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t"}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
	)
	labels := make([]string, len(times))
	for i, t := range times {
		labels[i] = fmt.Sprintf("%.3f", t)
	}
	line.SetXAxis(labels)
	for _, name := range order {
		line.AddSeries(name, lineData(series[name]))
	}
	return line
}

// SeriesHTML writes a single line chart of named series over times, in the
// given order.
func SeriesHTML(w io.Writer, title string, times []float64, series map[string][]float64, order []string) error {
	return timeSeriesChart(title, times, series, order).Render(w)
}

// TrajectoryHTML writes a page with a line chart of the first few
// components followed by a Hovmöller heat map of every site.
func TrajectoryHTML(w io.Writer, title string, traj *dynamo.Trajectory, maxComponents int) error {
	n := min(maxComponents, traj.Dim())
	series := make(map[string][]float64, n)
	order := make([]string, n)
	for i := 0; i < n; i++ {
		order[i] = fmt.Sprintf("x%d", i)
		series[order[i]] = traj.Component(i)
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		timeSeriesChart(title, traj.Times, series, order),
		hovmollerChart("site x time", traj),
	)
	return page.Render(w)
}

func attractorChart(title string, ens *dynamo.Ensemble) *charts.Line3D {
	line3d := charts.NewLine3D()
	line3d.SetGlobalOptions(
		initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
	)
	for m := 0; m < min(ens.Size(), MaxHTMLMembers); m++ {
		data := make([]opts.Chart3DData, 0, ens.Members[m].Len())
		for _, s := range ens.Members[m].States {
			if !s.IsValid() || len(s) < 3 {
				continue
			}
			data = append(data, opts.Chart3DData{Value: []interface{}{s[0], s[1], s[2]}})
		}
		line3d.AddSeries(fmt.Sprintf("member %d", m), data)
	}
	return line3d
}

// EnsembleHTML writes a page with the 3D attractor of the leading members,
// their x0 traces, and the ensemble mean with its spread.
func EnsembleHTML(w io.Writer, title string, ens *dynamo.Ensemble) error {
	page := components.NewPage()
	page.PageTitle = title

	traces := make(map[string][]float64)
	var order []string
	for m := 0; m < min(ens.Size(), MaxHTMLMembers); m++ {
		name := fmt.Sprintf("member %d", m)
		traces[name] = ens.Members[m].Component(0)
		order = append(order, name)
	}

	mean := analysis.EnsembleMean(ens)
	spread := analysis.EnsembleSpread(ens)
	stats := map[string][]float64{
		"mean x0": analysis.Column(mean, 0),
		"spread":  spread,
	}

	page.AddCharts(
		attractorChart(title, ens),
		timeSeriesChart("x0 by member", ens.Times(), traces, order),
		timeSeriesChart("ensemble mean and spread", ens.Times(), stats, []string{"mean x0", "spread"}),
	)
	return page.Render(w)
}

// hovmollerChart is a time x site heat map, the usual way to look at
// travelling Lorenz-96 waves.
func hovmollerChart(title string, traj *dynamo.Trajectory) *charts.HeatMap {
	hm := charts.NewHeatMap()

	lo, hi := math.Inf(1), math.Inf(-1)
	data := make([]opts.HeatMapData, 0, traj.Len()*traj.Dim())
	for k, s := range traj.States {
		for j, v := range s {
			if !isFinite(v) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			data = append(data, opts.HeatMapData{Value: [3]interface{}{k, j, v}})
		}
	}
	if len(data) == 0 {
		lo, hi = 0, 1
	}

	times := make([]string, traj.Len())
	for k, t := range traj.Times {
		times[k] = fmt.Sprintf("%.2f", t)
	}
	sites := make([]int, traj.Dim())
	for j := range sites {
		sites[j] = j
	}

	hm.SetGlobalOptions(
		initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t", Type: "category", Data: times}),
		charts.WithYAxisOpts(opts.YAxis{Name: "site", Type: "category", Data: sites}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#313695", "#74add1", "#ffffbf", "#f46d43", "#a50026"},
			},
		}),
	)
	hm.AddSeries("state", data)
	return hm
}

func HistogramHTML(w io.Writer, title string, h *analysis.Histogram) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	labels := make([]string, len(h.Counts))
	data := make([]opts.BarData, len(h.Counts))
	for i, c := range h.Centers() {
		labels[i] = fmt.Sprintf("%.3f", c)
		data[i] = opts.BarData{Value: h.Counts[i]}
	}
	bar.SetXAxis(labels).AddSeries("count", data)
	return bar.Render(w)
}
