package assim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/experiment"
)

// Method selects the analysis update of the filter.
type Method string

const (
	// MethodSqrt is the deterministic square root update (ETKF) with a
	// symmetric transform.
	MethodSqrt Method = "sqrt"
	// MethodPertObs is the stochastic update with perturbed observations.
	MethodPertObs Method = "pertobs"
)

func Methods() []Method { return []Method{MethodSqrt, MethodPertObs} }

// Config describes one twin experiment.
type Config struct {
	Dt       float64 // model step
	ObsEvery int     // model steps between observations
	Horizon  float64
	BurnIn   float64 // observation times up to BurnIn are left out of averages

	X0    dynamo.State // mean of the initial distribution; nil uses the model's own
	X0Var float64

	ModelNoise float64 // variance per unit time, added to truth and members
	ObsNoise   float64 // observation error variance
	Observed   []int   // observed components; nil observes all

	Members int
	Infl    float64 // multiplicative anomaly inflation applied after each analysis
	Method  Method
	Seed    int64
}

// Benchmark returns the reference twin setup for model. The Lorenz-63 one
// observes all three components every 0.25 time units with variance 2; the
// Lorenz-96 one observes all 40 sites every 0.05 with variance 1.
func Benchmark(model string) (Config, error) {
	switch model {
	case experiment.ModelLorenz63:
		return Config{
			Dt:       0.01,
			ObsEvery: 25,
			Horizon:  1024,
			BurnIn:   4,
			X0:       dynamo.State{1.509, -1.531, 25.46},
			X0Var:    2,
			ObsNoise: 2,
			Members:  10,
			Infl:     1.02,
			Method:   MethodSqrt,
			Seed:     5,
		}, nil
	case experiment.ModelLorenz96:
		return Config{
			Dt:       0.05,
			ObsEvery: 1,
			Horizon:  64,
			BurnIn:   20,
			X0Var:    0.001,
			ObsNoise: 1,
			Members:  40,
			Infl:     1.01,
			Method:   MethodSqrt,
			Seed:     5,
		}, nil
	}
	return Config{}, fmt.Errorf("no assimilation benchmark for model: %s (available: %v)", model, experiment.Models())
}

// Steps is the number of model steps in the horizon.
func (c Config) Steps() int {
	return int(math.Round(c.Horizon / c.Dt))
}

// observed resolves the observed component indices for a state of size dim.
func (c Config) observed(dim int) []int {
	if c.Observed != nil {
		return c.Observed
	}
	idx := make([]int, dim)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (c Config) Validate(dim int) error {
	var errs []error
	if c.Dt <= 0 {
		errs = append(errs, fmt.Errorf("dt must be positive, got %g", c.Dt))
	}
	if c.ObsEvery < 1 {
		errs = append(errs, fmt.Errorf("obs_every must be at least 1, got %d", c.ObsEvery))
	}
	if c.Horizon < 0 || c.BurnIn < 0 {
		errs = append(errs, fmt.Errorf("horizon and burn-in must be non-negative, got %g and %g", c.Horizon, c.BurnIn))
	}
	if c.X0 != nil && len(c.X0) != dim {
		errs = append(errs, fmt.Errorf("x0 must have %d components, got %d", dim, len(c.X0)))
	}
	if c.X0Var < 0 || c.ModelNoise < 0 {
		errs = append(errs, fmt.Errorf("x0 and model noise variances must be non-negative"))
	}
	if c.ObsNoise <= 0 {
		errs = append(errs, fmt.Errorf("obs noise variance must be positive, got %g", c.ObsNoise))
	}
	if c.Observed != nil && len(c.Observed) == 0 {
		errs = append(errs, errors.New("at least one component must be observed"))
	}
	for _, i := range c.Observed {
		if i < 0 || i >= dim {
			errs = append(errs, fmt.Errorf("observed component %d out of range for dim %d", i, dim))
		}
	}
	if c.Members < 2 {
		errs = append(errs, fmt.Errorf("need at least 2 members, got %d", c.Members))
	}
	if c.Infl <= 0 {
		errs = append(errs, fmt.Errorf("inflation must be positive, got %g", c.Infl))
	}
	if c.Method != MethodSqrt && c.Method != MethodPertObs {
		errs = append(errs, fmt.Errorf("unknown method: %s (available: %v)", c.Method, Methods()))
	}
	return errors.Join(errs...)
}
