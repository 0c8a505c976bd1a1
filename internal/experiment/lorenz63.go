package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/integrators"
	"github.com/san-kum/lorenzlab/internal/physics"
)

// Lorenz63SamplesPerUnit is the number of grid samples per unit of model time.
const Lorenz63SamplesPerUnit = 100

type Lorenz63Config struct {
	Members int                    `yaml:"members" json:"members"`
	Eps     float64                `yaml:"eps" json:"eps"`
	Horizon float64                `yaml:"horizon" json:"horizon"`
	Params  physics.Lorenz63Params `yaml:"params" json:"params"`
	Proto   dynamo.State           `yaml:"proto,flow" json:"proto"`
	Seed    int64                  `yaml:"seed" json:"seed"`
	Workers int                    `yaml:"workers" json:"workers"`
}

func DefaultLorenz63Config() Lorenz63Config {
	return Lorenz63Config{
		Members: 50,
		Eps:     0.01,
		Horizon: 2.0,
		Params:  physics.DefaultLorenz63Params(),
		Proto:   physics.Lorenz63Proto(),
		Seed:    1,
		Workers: 1,
	}
}

func (c Lorenz63Config) Validate() error {
	var errs []error
	if c.Members < 0 {
		errs = append(errs, fmt.Errorf("members must be non-negative, got %d", c.Members))
	}
	if c.Eps < 0 {
		errs = append(errs, fmt.Errorf("eps must be non-negative, got %f", c.Eps))
	}
	if c.Horizon < 0 {
		errs = append(errs, fmt.Errorf("horizon must be non-negative, got %f", c.Horizon))
	}
	if c.Proto != nil && len(c.Proto) != 3 {
		errs = append(errs, fmt.Errorf("proto must have 3 components, got %d", len(c.Proto)))
	}
	return errors.Join(errs...)
}

// SampleLorenz63 integrates every ensemble member over Grid(Horizon, 100).
// A nil Proto means [physics.Lorenz63Proto]. A solver failure for any member
// aborts the whole call.
func SampleLorenz63(ctx context.Context, solver integrators.Solver, cfg Lorenz63Config) (*dynamo.Ensemble, error) {
	start := time.Now()

	proto := cfg.Proto
	if proto == nil {
		proto = physics.Lorenz63Proto()
	}
	grid := Grid(cfg.Horizon, Lorenz63SamplesPerUnit)
	pert := Perturbations(cfg.Members, len(proto), cfg.Eps, cfg.Seed)
	sys := physics.NewLorenz63(cfg.Params)

	ens := &dynamo.Ensemble{
		Initial: make([]dynamo.State, cfg.Members),
		Members: make([]dynamo.Trajectory, cfg.Members),
	}

	run := func(ctx context.Context, i int) error {
		x0 := proto.Add(pert[i])
		states, err := solver.Solve(ctx, sys, x0, grid)
		if err != nil {
			return fmt.Errorf("member %d: %w", i, err)
		}
		ens.Initial[i] = x0
		ens.Members[i] = dynamo.Trajectory{Times: grid, States: states}
		return nil
	}

	if cfg.Workers <= 1 {
		for i := 0; i < cfg.Members; i++ {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Workers)
		for i := 0; i < cfg.Members; i++ {
			i := i
			g.Go(func() error { return run(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"members": cfg.Members,
		"samples": len(grid),
		"workers": cfg.Workers,
		"elapsed": time.Since(start),
	}).Debug("lorenz63 ensemble sampled")

	return ens, nil
}
