package assim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/integrators"
)

// Twin is a synthetic truth and the noisy observations taken of it.
type Twin struct {
	Times    []float64
	Truth    []dynamo.State
	ObsSteps []int // index into Times of each observation
	Obs      []dynamo.State
}

// ObsTimes returns the time of every observation.
func (tw *Twin) ObsTimes() []float64 {
	out := make([]float64, len(tw.ObsSteps))
	for i, k := range tw.ObsSteps {
		out[i] = tw.Times[k]
	}
	return out
}

// Observe applies the observation operator, picking the components idx of x.
func Observe(x dynamo.State, idx []int) dynamo.State {
	y := make(dynamo.State, len(idx))
	for i, j := range idx {
		y[i] = x[j]
	}
	return y
}

// addNoise adds independent N(0, variance) draws to every entry of x.
func addNoise(x []float64, variance float64, rng *rand.Rand) {
	if variance <= 0 {
		return
	}
	sd := math.Sqrt(variance)
	for i := range x {
		x[i] += sd * rng.NormFloat64()
	}
}

// GenerateTwin draws the initial truth around x0, integrates it for
// cfg.Steps() steps adding model noise after every step, and observes it
// every cfg.ObsEvery steps.
func GenerateTwin(ctx context.Context, sys dynamo.System, step integrators.Stepper, x0 dynamo.State, cfg Config, rng *rand.Rand) (*Twin, error) {
	if err := cfg.Validate(len(x0)); err != nil {
		return nil, err
	}
	idx := cfg.observed(len(x0))
	K := cfg.Steps()

	tw := &Twin{
		Times: make([]float64, K+1),
		Truth: make([]dynamo.State, K+1),
	}
	x := x0.Clone()
	addNoise(x, cfg.X0Var, rng)
	tw.Truth[0] = x

	for k := 1; k <= K; k++ {
		t := float64(k) * cfg.Dt
		x = step.Step(sys, x, t-cfg.Dt, cfg.Dt)
		addNoise(x, cfg.Dt*cfg.ModelNoise, rng)
		if !x.IsValid() {
			return nil, &dynamo.IntegrationError{Step: k, Time: t, State: x, Wrapped: dynamo.ErrUnstable}
		}
		tw.Times[k], tw.Truth[k] = t, x

		if k%cfg.ObsEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("truth: %w", err)
			}
			y := Observe(x, idx)
			addNoise(y, cfg.ObsNoise, rng)
			tw.ObsSteps = append(tw.ObsSteps, k)
			tw.Obs = append(tw.Obs, y)
		}
	}
	return tw, nil
}
