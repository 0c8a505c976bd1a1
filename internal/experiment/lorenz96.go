package experiment

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/integrators"
	"github.com/san-kum/lorenzlab/internal/physics"
)

const Lorenz96SamplesPerUnit = 40

type Lorenz96Config struct {
	Dim     int     `yaml:"dim" json:"dim"`
	Forcing float64 `yaml:"forcing" json:"forcing"`
	Eps     float64 `yaml:"eps" json:"eps"`
	Horizon float64 `yaml:"horizon" json:"horizon"`
}

func DefaultLorenz96Config() Lorenz96Config {
	return Lorenz96Config{
		Dim:     physics.DefaultLorenz96Dim,
		Forcing: physics.DefaultLorenz96Forcing,
		Eps:     0.01,
		Horizon: 10.0,
	}
}

func (c Lorenz96Config) Validate() error {
	if c.Dim <= 0 {
		return fmt.Errorf("dim must be positive, got %d", c.Dim)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("horizon must be non-negative, got %f", c.Horizon)
	}
	return nil
}

// InitialState is the zero state with Eps added to the first coordinate.
func (c Lorenz96Config) InitialState() dynamo.State {
	x0 := make(dynamo.State, c.Dim)
	if c.Dim > 0 {
		x0[0] += c.Eps
	}
	return x0
}

// SampleLorenz96 integrates one trajectory over Grid(Horizon, 40).
func SampleLorenz96(ctx context.Context, solver integrators.Solver, cfg Lorenz96Config) (*dynamo.Trajectory, error) {
	start := time.Now()

	grid := Grid(cfg.Horizon, Lorenz96SamplesPerUnit)
	sys := physics.NewLorenz96(cfg.Dim, cfg.Forcing)

	states, err := solver.Solve(ctx, sys, cfg.InitialState(), grid)
	if err != nil {
		return nil, fmt.Errorf("lorenz96: %w", err)
	}

	log.WithFields(log.Fields{
		"dim":     cfg.Dim,
		"samples": len(grid),
		"elapsed": time.Since(start),
	}).Debug("lorenz96 trajectory sampled")

	return &dynamo.Trajectory{Times: grid, States: states}, nil
}
