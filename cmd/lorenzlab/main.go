package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzlab/internal/config"
	"github.com/san-kum/lorenzlab/internal/experiment"
	"github.com/san-kum/lorenzlab/internal/integrators"
	"github.com/san-kum/lorenzlab/internal/tui"
)

var (
	logLevel   string
	configFile string
	preset     string
	solverName string
	format     string
	outPath    string
	bins       int
	component  int

	// lorenz63
	members int
	eps     float64
	horizon float64
	sigma   float64
	beta    float64
	rho     float64
	seed    int64
	workers int

	// lorenz96
	sites   int
	forcing float64

	// lyapunov
	lyapDt      float64
	lyapTime    float64
	lyapSpinup  float64
	lyapPerturb float64
	sweeps      []string

	// assimilate
	assimDt    float64
	assimInfl  float64
	method     string
	obsEvery   int
	obsNoise   float64
	modelNoise float64
	burnIn     float64
	observe    []int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "lorenzlab",
		Short:         "lorenz-63 ensembles and lorenz-96 runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetOutput(os.Stderr)
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			log.SetLevel(lvl)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&solverName, "solver", integrators.DefaultSolver, fmt.Sprintf("solver %v", integrators.Names()))

	l63Cmd := &cobra.Command{
		Use:   "l63",
		Short: "sample a perturbed lorenz-63 ensemble",
		Args:  cobra.NoArgs,
		RunE:  runLorenz63,
	}
	outputFlags(l63Cmd)
	l63Cmd.Flags().IntVar(&members, "n", 50, "ensemble members")
	l63Cmd.Flags().Float64Var(&eps, "eps", 0.01, "perturbation scale")
	l63Cmd.Flags().Float64Var(&horizon, "time", 2.0, "horizon")
	l63Cmd.Flags().Float64Var(&sigma, "sigma", 10, "sigma")
	l63Cmd.Flags().Float64Var(&beta, "beta", 8.0/3.0, "beta")
	l63Cmd.Flags().Float64Var(&rho, "rho", 28, "rho")
	l63Cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	l63Cmd.Flags().IntVar(&workers, "workers", 1, "members integrated in parallel")

	l96Cmd := &cobra.Command{
		Use:   "l96",
		Short: "run lorenz-96 from a nudged rest state",
		Args:  cobra.NoArgs,
		RunE:  runLorenz96,
	}
	outputFlags(l96Cmd)
	l96Cmd.Flags().IntVar(&sites, "m", 40, "number of sites")
	l96Cmd.Flags().Float64Var(&forcing, "forcing", 8, "forcing F")
	l96Cmd.Flags().Float64Var(&eps, "eps", 0.01, "nudge on x0")
	l96Cmd.Flags().Float64Var(&horizon, "time", 10.0, "horizon")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "explore parameters interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.ExactArgs(1),
		RunE:  runLyapunov,
	}
	lyapunovCmd.Flags().Float64Var(&lyapDt, "dt", 0.01, "timestep")
	lyapunovCmd.Flags().Float64Var(&lyapTime, "time", 50.0, "averaging time")
	lyapunovCmd.Flags().Float64Var(&lyapSpinup, "spinup", 10.0, "time discarded before averaging")
	lyapunovCmd.Flags().Float64Var(&lyapPerturb, "perturbation", 1e-8, "companion separation")
	lyapunovCmd.Flags().StringArrayVar(&sweeps, "sweep", nil, "sweep a parameter, name=lo:hi:n (repeatable)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "inspect configuration",
	}
	dumpCmd := &cobra.Command{
		Use:   "dump [model]",
		Short: "print the effective configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  dumpConfig,
	}
	configCmd.AddCommand(dumpCmd)

	rootCmd.AddCommand(l63Cmd, l96Cmd, liveCmd, lyapunovCmd, assimilateCmd(), presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func outputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&format, "format", "ascii", fmt.Sprintf("output format %v", formats))
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&bins, "bins", 20, "histogram bins")
	cmd.Flags().IntVar(&component, "component", 0, "state component for hist and spectrum")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if model == "" {
			return nil, fmt.Errorf("--preset needs a model")
		}
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("solver") {
		cfg.Solver = solverName
	}
	switch model {
	case experiment.ModelLorenz63:
		l63 := &cfg.Lorenz63
		if flags.Changed("n") {
			l63.Members = members
		}
		if flags.Changed("eps") {
			l63.Eps = eps
		}
		if flags.Changed("time") {
			l63.Horizon = horizon
		}
		if flags.Changed("sigma") {
			l63.Params.Sigma = sigma
		}
		if flags.Changed("beta") {
			l63.Params.Beta = beta
		}
		if flags.Changed("rho") {
			l63.Params.Rho = rho
		}
		if flags.Changed("seed") {
			l63.Seed = seed
		}
		if flags.Changed("workers") {
			l63.Workers = workers
		}
	case experiment.ModelLorenz96:
		l96 := &cfg.Lorenz96
		if flags.Changed("m") {
			l96.Dim = sites
		}
		if flags.Changed("forcing") {
			l96.Forcing = forcing
		}
		if flags.Changed("eps") {
			l96.Eps = eps
		}
		if flags.Changed("time") {
			l96.Horizon = horizon
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = modelAlias(args[0])
	}
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}
	solver, err := integrators.New(cfg.Solver)
	if err != nil {
		return err
	}
	return tui.Run(cfg, solver, model)
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := experiment.Models()
	if len(args) > 0 {
		models = []string{modelAlias(args[0])}
	}
	out := cmd.OutOrStdout()
	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for model: %s\n", model)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", model)
		for _, p := range presets {
			fmt.Fprintf(out, "  %s\n", p)
		}
	}
	return nil
}

func dumpConfig(cmd *cobra.Command, args []string) error {
	model := ""
	if len(args) > 0 {
		model = modelAlias(args[0])
	}
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}
	return cfg.WriteYAML(cmd.OutOrStdout())
}

// modelAlias accepts the short command names for the models.
func modelAlias(name string) string {
	switch name {
	case "l63", "63":
		return experiment.ModelLorenz63
	case "l96", "96":
		return experiment.ModelLorenz96
	}
	return name
}
