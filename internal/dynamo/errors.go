package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors raised by solvers.
var (
	// ErrUnstable indicates the state overflowed and the error estimate is no longer finite.
	ErrUnstable = errors.New("dynamo: integration unstable (state diverged)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the step budget for one grid interval ran out.
	ErrMaxSteps = errors.New("dynamo: step budget exhausted")

	// ErrGrid indicates a time grid that is empty or not monotonically increasing.
	ErrGrid = errors.New("dynamo: time grid must be non-empty and non-decreasing")

	// ErrDimensionMismatch indicates a derivative whose length differs from the state.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// IntegrationError wraps a solver failure with the point where it happened.
type IntegrationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
