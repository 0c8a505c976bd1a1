package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzlab/internal/analysis"
	"github.com/san-kum/lorenzlab/internal/config"
	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/experiment"
	"github.com/san-kum/lorenzlab/internal/export"
	"github.com/san-kum/lorenzlab/internal/integrators"
	"github.com/san-kum/lorenzlab/internal/optim"
	"github.com/san-kum/lorenzlab/internal/render"
)

var formats = []string{"ascii", "html", "png", "csv", "json", "hist", "hist-html", "hist-png", "spectrum"}

func checkFormat() error {
	for _, f := range formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown format: %s (available: %v)", format, formats)
}

// openOutput returns stdout unless --out names a file.
func openOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outPath == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func metadata(cfg *config.Config, model string, horizon float64, params map[string]float64) export.Metadata {
	meta := export.Metadata{
		Model:   model,
		Solver:  cfg.Solver,
		Preset:  preset,
		Horizon: horizon,
		Params:  params,
	}
	if model == experiment.ModelLorenz63 {
		meta.Seed = cfg.Lorenz63.Seed
	}
	return meta
}

func runLorenz63(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd, experiment.ModelLorenz63)
	if err != nil {
		return err
	}
	solver, err := integrators.New(cfg.Solver)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	ens, err := experiment.SampleLorenz63(ctx, solver, cfg.Lorenz63)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"members": ens.Size(),
		"samples": ens.Samples(),
		"solver":  cfg.Solver,
		"elapsed": time.Since(start),
	}).Info("lorenz63 ensemble sampled")

	w, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	if err := writeEnsemble(w, cfg, ens); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func writeEnsemble(w io.Writer, cfg *config.Config, ens *dynamo.Ensemble) error {
	const title = "lorenz63 ensemble"
	params := map[string]float64{
		"sigma": cfg.Lorenz63.Params.Sigma,
		"beta":  cfg.Lorenz63.Params.Beta,
		"rho":   cfg.Lorenz63.Params.Rho,
		"eps":   cfg.Lorenz63.Eps,
	}

	switch format {
	case "csv":
		return export.WriteEnsembleCSV(w, ens)
	case "json":
		return export.WriteEnsembleJSON(w, metadata(cfg, experiment.ModelLorenz63, cfg.Lorenz63.Horizon, params), ens)
	case "html":
		return render.EnsembleHTML(w, title, ens)
	case "png":
		return render.PhasePNG(w, title, ens, 0, 2)
	}

	if ens.Size() == 0 {
		_, err := fmt.Fprintln(w, "empty ensemble")
		return err
	}

	switch format {
	case "hist", "hist-html", "hist-png":
		final := make([]dynamo.State, ens.Size())
		for i := range ens.Members {
			final[i] = ens.Members[i].Final()
		}
		if component < 0 || component >= len(final[0]) {
			return fmt.Errorf("component %d out of range", component)
		}
		return writeHistogram(w, analysis.Column(final, component), fmt.Sprintf("x%d at t=%.2f", component, cfg.Lorenz63.Horizon))
	case "spectrum":
		return writeSpectrum(w, &ens.Members[0])
	}

	o := render.DefaultOptions()
	fmt.Fprint(w, render.Attractor(ens.Members[0].States, 0, 1, 2, nil, o.Width/2, o.Height).String())
	fmt.Fprintln(w)
	mean := analysis.EnsembleMean(ens)
	spread := analysis.EnsembleSpread(ens)
	fmt.Fprint(w, render.Band(analysis.Column(mean, 0), spread, "mean x0 ± spread", o))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "T\tMEMBERS\tSAMPLES\tMEAN\tSPREAD")
	last := len(mean) - 1
	fmt.Fprintf(tw, "%.2f\t%d\t%d\t%.4f\t%.4f\n", ens.Times()[last], ens.Size(), ens.Samples(), mean[last], spread[last])
	if err := tw.Flush(); err != nil {
		return err
	}

	if cov, err := analysis.Covariance(ens, last); err == nil {
		fmt.Fprintln(w, "\nfinal covariance:")
		n, _ := cov.Dims()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				fmt.Fprintf(w, "%12.4f", cov.At(i, j))
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

func runLorenz96(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd, experiment.ModelLorenz96)
	if err != nil {
		return err
	}
	solver, err := integrators.New(cfg.Solver)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	traj, err := experiment.SampleLorenz96(ctx, solver, cfg.Lorenz96)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"dim":     traj.Dim(),
		"samples": traj.Len(),
		"solver":  cfg.Solver,
		"elapsed": time.Since(start),
	}).Info("lorenz96 trajectory sampled")

	w, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	if err := writeTrajectory(w, cfg, traj); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func writeTrajectory(w io.Writer, cfg *config.Config, traj *dynamo.Trajectory) error {
	const title = "lorenz96"
	params := map[string]float64{
		"forcing": cfg.Lorenz96.Forcing,
		"eps":     cfg.Lorenz96.Eps,
	}

	switch format {
	case "csv":
		return export.WriteCSV(w, traj)
	case "json":
		return export.WriteJSON(w, metadata(cfg, experiment.ModelLorenz96, cfg.Lorenz96.Horizon, params), traj)
	case "html":
		return render.TrajectoryHTML(w, title, traj, 4)
	case "png":
		return render.TrajectoryPNG(w, title, traj, 4)
	case "hist", "hist-html", "hist-png":
		var values []float64
		for _, s := range traj.States {
			values = append(values, s...)
		}
		return writeHistogram(w, values, "all sites, all samples")
	case "spectrum":
		return writeSpectrum(w, traj)
	}

	o := render.DefaultOptions()
	if traj.Dim() >= 3 {
		fmt.Fprint(w, render.Attractor(traj.States, 0, 1, 2, nil, o.Width/2, o.Height).String())
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, render.Components(traj, []int{0, 1}, o))

	final := traj.Final()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "T\tSITES\tSAMPLES\t|x(T)|")
	fmt.Fprintf(tw, "%.2f\t%d\t%d\t%.4f\n", traj.Times[traj.Len()-1], traj.Dim(), traj.Len(), final.Norm())
	return tw.Flush()
}

func writeHistogram(w io.Writer, values []float64, caption string) error {
	h, err := analysis.NewHistogram(values, bins)
	if err != nil {
		return err
	}
	switch format {
	case "hist-html":
		return render.HistogramHTML(w, caption, h)
	case "hist-png":
		return render.HistogramPNG(w, caption, h)
	}
	if _, err := fmt.Fprintf(w, "%s (%d values)\n", caption, int(h.Total())); err != nil {
		return err
	}
	_, err = fmt.Fprint(w, render.HistogramBars(h, 50))
	return err
}

func writeSpectrum(w io.Writer, traj *dynamo.Trajectory) error {
	if component < 0 || component >= traj.Dim() {
		return fmt.Errorf("component %d out of range", component)
	}
	if traj.Len() < 4 {
		return fmt.Errorf("spectrum needs at least 4 samples, got %d", traj.Len())
	}
	dt := traj.Times[1] - traj.Times[0]
	ps := analysis.PowerSpectrum(traj.Component(component))

	fmt.Fprint(w, render.Series(ps[1:], fmt.Sprintf("power spectrum (x%d)", component), render.DefaultOptions()))
	freq := analysis.DominantFrequency(ps, traj.Len(), dt)
	fmt.Fprintf(w, "dominant frequency: %.3f\n", freq)
	if freq > 0 {
		fmt.Fprintf(w, "period: %.3f\n", 1.0/freq)
	}
	return nil
}

// lyapunovAt spins the system up and estimates its largest exponent with
// the given parameter overrides applied.
func lyapunovAt(model string, cfg *config.Config, params map[string]float64) (float64, error) {
	sys, x0, err := experiment.System(model, cfg.Lorenz63, cfg.Lorenz96)
	if err != nil {
		return 0, err
	}
	if len(params) > 0 {
		c, ok := sys.(dynamo.Configurable)
		if !ok {
			return 0, fmt.Errorf("%s has no adjustable parameters", model)
		}
		for name, v := range params {
			if err := c.SetParam(name, v); err != nil {
				return 0, err
			}
		}
	}

	// Settle onto the attractor before measuring divergence.
	stepper := integrators.NewRK4()
	for t := 0.0; t < lyapSpinup; t += lyapDt {
		x0 = stepper.Step(sys, x0, t, lyapDt)
	}
	if !x0.IsValid() {
		return 0, fmt.Errorf("spin-up: %w", dynamo.ErrUnstable)
	}
	return analysis.LyapunovExponent(sys, stepper, x0, lyapDt, lyapTime, lyapPerturb), nil
}

func checkLyapunovFlags() error {
	var errs []error
	if lyapDt <= 0 {
		errs = append(errs, fmt.Errorf("--dt must be positive, got %g", lyapDt))
	}
	if lyapTime < 0 {
		errs = append(errs, fmt.Errorf("--time must be non-negative, got %g", lyapTime))
	}
	if lyapSpinup < 0 {
		errs = append(errs, fmt.Errorf("--spinup must be non-negative, got %g", lyapSpinup))
	}
	if lyapPerturb <= 0 {
		errs = append(errs, fmt.Errorf("--perturbation must be positive, got %g", lyapPerturb))
	}
	return errors.Join(errs...)
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	if err := checkLyapunovFlags(); err != nil {
		return err
	}
	model := modelAlias(args[0])
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(sweeps) > 0 {
		return sweepLyapunov(cmd, model, cfg)
	}

	start := time.Now()
	lambda, err := lyapunovAt(model, cfg, nil)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"model":   model,
		"dt":      lyapDt,
		"time":    lyapTime,
		"elapsed": time.Since(start),
	}).Debug("lyapunov estimate done")

	if sys, _, err := experiment.System(model, cfg.Lorenz63, cfg.Lorenz96); err == nil {
		if c, ok := sys.(dynamo.Configurable); ok {
			fmt.Fprintf(out, "%s %v\n", model, c.GetParams())
		}
	}
	fmt.Fprintf(out, "largest lyapunov exponent: %.4f\n", lambda)
	if lambda > 0 {
		fmt.Fprintf(out, "predictability time: %.3f\n", 1/lambda)
	}
	return nil
}

func sweepLyapunov(cmd *cobra.Command, model string, cfg *config.Config) error {
	names := make([]string, len(sweeps))
	ranges := make([][]float64, len(sweeps))
	for i, s := range sweeps {
		name, vals, err := optim.ParseRange(s)
		if err != nil {
			return err
		}
		names[i], ranges[i] = name, vals
	}

	ctx, cancel := signalContext()
	defer cancel()

	g := optim.NewGridSearch(names, ranges)
	points, err := g.Search(ctx, func(_ context.Context, params map[string]float64) (float64, error) {
		lambda, err := lyapunovAt(model, cfg, params)
		if err != nil {
			log.WithError(err).WithFields(toFields(params)).Warn("sweep point failed")
		}
		return lambda, err
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(names, "\t"))+"\tLAMBDA")
	values := make([]float64, 0, len(points))
	for _, p := range points {
		for _, name := range names {
			fmt.Fprintf(tw, "%.4g\t", p.Params[name])
		}
		if p.Err != nil {
			fmt.Fprintln(tw, "error")
			values = append(values, math.NaN())
			continue
		}
		fmt.Fprintf(tw, "%.4f\n", p.Value)
		values = append(values, p.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(names) == 1 && len(points) > 1 {
		fmt.Fprintln(out)
		fmt.Fprint(out, render.Series(values, "lambda vs "+names[0], render.DefaultOptions()))
	}
	if best, ok := optim.Best(points); ok {
		fmt.Fprintf(out, "most chaotic: %v (lambda %.4f)\n", best.Params, best.Value)
	}
	return nil
}

func toFields(params map[string]float64) log.Fields {
	f := make(log.Fields, len(params))
	for k, v := range params {
		f[k] = v
	}
	return f
}
