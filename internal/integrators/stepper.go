package integrators

import "github.com/san-kum/lorenzlab/internal/dynamo"

// Stepper advances a state by one step of size dt.
type Stepper interface {
	Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State
}
