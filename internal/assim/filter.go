package assim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/integrators"
)

// Stats holds the filter errors at every observation time. Forecast values
// are taken before the analysis, analysis values after it and after
// inflation.
type Stats struct {
	Times        []float64
	ForecastRMSE []float64
	ForecastRMSV []float64
	AnalysisRMSE []float64
	AnalysisRMSV []float64
	BurnIn       float64
}

// forecast advances every member by one model step.
func forecast(E *mat.Dense, sys dynamo.System, step integrators.Stepper, t, dt, q float64, rng *rand.Rand) error {
	n, _ := E.Dims()
	for i := 0; i < n; i++ {
		row := E.RawRowView(i)
		x := step.Step(sys, dynamo.State(row), t, dt)
		addNoise(x, dt*q, rng)
		if !x.IsValid() {
			return fmt.Errorf("member %d: %w", i, dynamo.ErrUnstable)
		}
		copy(row, x)
	}
	return nil
}

// Run assimilates the observations of tw. The ensemble starts from
// cfg.Members draws around x0 and is scored against the truth at every
// observation.
func Run(ctx context.Context, sys dynamo.System, step integrators.Stepper, x0 dynamo.State, cfg Config, tw *Twin, rng *rand.Rand) (*Stats, error) {
	dim := len(x0)
	if err := cfg.Validate(dim); err != nil {
		return nil, err
	}
	idx := cfg.observed(dim)
	filter := NewEnKF(cfg.Method, rng)
	start := time.Now()

	E := mat.NewDense(cfg.Members, dim, nil)
	for i := 0; i < cfg.Members; i++ {
		row := E.RawRowView(i)
		copy(row, x0)
		addNoise(row, cfg.X0Var, rng)
	}

	s := &Stats{BurnIn: cfg.BurnIn}
	k := 0
	for n, kObs := range tw.ObsSteps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cycle %d: %w", n, err)
		}
		for ; k < kObs; k++ {
			t := tw.Times[k]
			if err := forecast(E, sys, step, t, cfg.Dt, cfg.ModelNoise, rng); err != nil {
				return nil, &dynamo.IntegrationError{Step: k + 1, Time: t + cfg.Dt, Wrapped: err}
			}
		}

		truth := tw.Truth[kObs]
		s.Times = append(s.Times, tw.Times[kObs])
		s.ForecastRMSE = append(s.ForecastRMSE, RMSE(E, truth))
		s.ForecastRMSV = append(s.ForecastRMSV, RMSV(E))

		if err := filter.Analyse(E, tw.Obs[n], idx, cfg.ObsNoise); err != nil {
			return nil, fmt.Errorf("analysis at t=%.3f: %w", tw.Times[kObs], err)
		}
		Inflate(E, cfg.Infl)

		s.AnalysisRMSE = append(s.AnalysisRMSE, RMSE(E, truth))
		s.AnalysisRMSV = append(s.AnalysisRMSV, RMSV(E))
	}

	log.WithFields(log.Fields{
		"cycles":  len(s.Times),
		"members": cfg.Members,
		"method":  cfg.Method,
		"elapsed": time.Since(start),
	}).Debug("assimilation done")
	return s, nil
}
