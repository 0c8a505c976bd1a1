package integrators

import (
	"fmt"
	"sort"
)

const (
	DefaultSolver = "rk45"
	DefaultMaxDt  = 0.01
)

var solvers = map[string]func() Solver{
	"rk45":  func() Solver { return NewAdaptive() },
	"dopri": func() Solver { return NewFixed(NewRK45(), DefaultMaxDt) },
	"rk4":   func() Solver { return NewFixed(NewRK4(), DefaultMaxDt) },
	"euler": func() Solver { return NewFixed(NewEuler(), DefaultMaxDt/10) },
}

// New returns the named solver with its default settings.
func New(name string) (Solver, error) {
	fn, ok := solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(solvers))
	for name := range solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
