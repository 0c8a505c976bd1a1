package integrators

import (
	"context"
	"math"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

// Solver integrates a system over a time grid and returns the state at
// every grid time. The first returned state is a copy of x0.
type Solver interface {
	Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid []float64) ([]dynamo.State, error)
}

func validate(sys dynamo.System, x0 dynamo.State, grid []float64) error {
	if len(grid) == 0 {
		return dynamo.ErrGrid
	}
	for i := 1; i < len(grid); i++ {
		if !(grid[i] >= grid[i-1]) {
			return dynamo.ErrGrid
		}
	}
	if dx := sys.Derive(x0, grid[0]); len(dx) != len(x0) {
		return dynamo.ErrDimensionMismatch
	}
	return nil
}

// Fixed subdivides every grid interval into equal steps no longer than MaxDt.
// Non-finite values are carried through unchanged.
type Fixed struct {
	Stepper Stepper
	MaxDt   float64
}

func NewFixed(s Stepper, maxDt float64) *Fixed {
	return &Fixed{Stepper: s, MaxDt: maxDt}
}

func (f *Fixed) Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid []float64) ([]dynamo.State, error) {
	if err := validate(sys, x0, grid); err != nil {
		return nil, err
	}

	out := make([]dynamo.State, len(grid))
	out[0] = x0.Clone()
	x := out[0]

	for k := 1; k < len(grid); k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t0 := grid[k-1]
		h := grid[k] - t0
		n := 1
		if f.MaxDt > 0 {
			n = int(math.Ceil(h / f.MaxDt))
		}
		if h == 0 {
			n = 0
		}

		dt := 0.0
		if n > 0 {
			dt = h / float64(n)
		}
		for j := 0; j < n; j++ {
			x = f.Stepper.Step(sys, x, t0+float64(j)*dt, dt)
		}
		out[k] = x.Clone()
	}

	return out, nil
}

const (
	DefaultRtol     = 1e-6
	DefaultAtol     = 1e-9
	DefaultMinDt    = 1e-12
	DefaultMaxSteps = 5000
)

// Adaptive is a Dormand-Prince 5(4) solver with error control. It steps
// freely between grid points and clips its last step to land on each one.
type Adaptive struct {
	Rtol      float64
	Atol      float64
	MinDt     float64
	MaxSteps  int // per grid interval
	InitialDt float64
	rk        *RK45
}

func NewAdaptive() *Adaptive {
	return &Adaptive{
		Rtol:     DefaultRtol,
		Atol:     DefaultAtol,
		MinDt:    DefaultMinDt,
		MaxSteps: DefaultMaxSteps,
		rk:       NewRK45(),
	}
}

func (a *Adaptive) Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid []float64) ([]dynamo.State, error) {
	if err := validate(sys, x0, grid); err != nil {
		return nil, err
	}
	rk := a.rk
	if rk == nil {
		rk = NewRK45()
	}

	out := make([]dynamo.State, len(grid))
	out[0] = x0.Clone()
	x := out[0]
	t := grid[0]
	dt := a.initialDt(grid)
	total := 0

	fail := func(err error) error {
		return &dynamo.IntegrationError{Step: total, Time: t, State: x.Clone(), Wrapped: err}
	}

	for k := 1; k < len(grid); k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		target := grid[k]
		steps := 0
		for t < target {
			if a.MaxSteps > 0 && steps >= a.MaxSteps {
				return nil, fail(dynamo.ErrMaxSteps)
			}
			steps++

			h, clipped := dt, false
			if t+h >= target {
				h, clipped = target-t, true
			}

			xNew, errNorm := rk.Attempt(sys, x, t, h, a.Rtol, a.Atol)
			if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
				dt = h * rk.minScale
				if dt < a.MinDt {
					return nil, fail(dynamo.ErrUnstable)
				}
				continue
			}

			next := rk.NextDt(h, errNorm)
			if errNorm > 1 {
				if next < a.MinDt {
					return nil, fail(dynamo.ErrStepTooSmall)
				}
				dt = next
				continue
			}

			x = xNew
			total++
			if clipped {
				t = target
				dt = math.Max(next, dt)
			} else {
				t += h
				dt = next
			}
			if t < target && dt < a.MinDt {
				return nil, fail(dynamo.ErrStepTooSmall)
			}
		}
		out[k] = x.Clone()
	}

	return out, nil
}

func (a *Adaptive) initialDt(grid []float64) float64 {
	if a.InitialDt > 0 {
		return a.InitialDt
	}
	dt := 0.01
	if len(grid) > 1 {
		if h := grid[1] - grid[0]; h > 0 && h < dt {
			dt = h
		}
	}
	return dt
}
