package main

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzlab/internal/assim"
	"github.com/san-kum/lorenzlab/internal/experiment"
	"github.com/san-kum/lorenzlab/internal/export"
	"github.com/san-kum/lorenzlab/internal/integrators"
	"github.com/san-kum/lorenzlab/internal/render"
)

var assimFormats = []string{"ascii", "csv", "html"}

func assimilateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assimilate [model]",
		Short: "twin experiment: track a noisy truth with an ensemble kalman filter",
		Args:  cobra.ExactArgs(1),
		RunE:  runAssimilate,
	}
	cmd.Flags().StringVar(&format, "format", "ascii", fmt.Sprintf("output format %v", assimFormats))
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&members, "n", 0, "ensemble members (default per model)")
	cmd.Flags().Float64Var(&horizon, "time", 0, "experiment length (default per model)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default per model)")
	cmd.Flags().Float64Var(&assimDt, "dt", 0, "model step (default per model)")
	cmd.Flags().Float64Var(&assimInfl, "infl", 0, "multiplicative inflation (default per model)")
	cmd.Flags().StringVar(&method, "method", "", fmt.Sprintf("analysis update %v (default per model)", assim.Methods()))
	cmd.Flags().IntVar(&obsEvery, "obs-every", 0, "model steps between observations (default per model)")
	cmd.Flags().Float64Var(&obsNoise, "obs-noise", 0, "observation error variance (default per model)")
	cmd.Flags().Float64Var(&modelNoise, "model-noise", 0, "model noise variance per unit time")
	cmd.Flags().Float64Var(&burnIn, "burn-in", 0, "time left out of the averages (default per model)")
	cmd.Flags().IntSliceVar(&observe, "observe", nil, "observed components (default all)")

	return cmd
}

// assimConfig starts from the model's benchmark and applies the flags that
// were set explicitly.
func assimConfig(cmd *cobra.Command, model string) (assim.Config, error) {
	cfg, err := assim.Benchmark(model)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("n") {
		cfg.Members = members
	}
	if flags.Changed("time") {
		cfg.Horizon = horizon
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("dt") {
		cfg.Dt = assimDt
	}
	if flags.Changed("infl") {
		cfg.Infl = assimInfl
	}
	if flags.Changed("method") {
		cfg.Method = assim.Method(method)
	}
	if flags.Changed("obs-every") {
		cfg.ObsEvery = obsEvery
	}
	if flags.Changed("obs-noise") {
		cfg.ObsNoise = obsNoise
	}
	if flags.Changed("model-noise") {
		cfg.ModelNoise = modelNoise
	}
	if flags.Changed("burn-in") {
		cfg.BurnIn = burnIn
	}
	if flags.Changed("observe") {
		cfg.Observed = observe
	}
	return cfg, nil
}

func runAssimilate(cmd *cobra.Command, args []string) error {
	known := false
	for _, f := range assimFormats {
		known = known || f == format
	}
	if !known {
		return fmt.Errorf("unknown format: %s (available: %v)", format, assimFormats)
	}

	model := modelAlias(args[0])
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}
	setup, err := assimConfig(cmd, model)
	if err != nil {
		return err
	}
	sys, x0, err := experiment.System(model, cfg.Lorenz63, cfg.Lorenz96)
	if err != nil {
		return err
	}
	if setup.X0 != nil {
		x0 = setup.X0
	}
	if err := setup.Validate(len(x0)); err != nil {
		return fmt.Errorf("invalid assimilation setup: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	rng := rand.New(rand.NewSource(setup.Seed))
	step := integrators.NewRK4()
	tw, err := assim.GenerateTwin(ctx, sys, step, x0, setup, rng)
	if err != nil {
		return fmt.Errorf("truth: %w", err)
	}
	stats, err := assim.Run(ctx, sys, step, x0, setup, tw, rng)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"model":   model,
		"members": setup.Members,
		"method":  setup.Method,
		"cycles":  len(stats.Times),
		"elapsed": time.Since(start),
	}).Info("twin experiment done")

	w, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	if err := writeAssimilation(w, model, stats); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func writeAssimilation(w io.Writer, model string, stats *assim.Stats) error {
	names := []string{"forecast_rmse", "forecast_rmsv", "analysis_rmse", "analysis_rmsv"}
	cols := [][]float64{stats.ForecastRMSE, stats.ForecastRMSV, stats.AnalysisRMSE, stats.AnalysisRMSV}

	switch format {
	case "csv":
		return export.WriteSeriesCSV(w, stats.Times, names, cols...)
	case "html":
		series := make(map[string][]float64, len(names))
		for i, name := range names {
			series[name] = cols[i]
		}
		return render.SeriesHTML(w, model+" enkf", stats.Times, series, names)
	}

	fmt.Fprint(w, render.Overlay([][]float64{stats.ForecastRMSE, stats.AnalysisRMSE},
		"forecast (red) and analysis (green) rmse", render.DefaultOptions()))
	fmt.Fprintln(w)
	_, err := fmt.Fprint(w, stats.Summary().String())
	return err
}
