package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is the right-hand side of dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
}

// SystemFunc adapts a plain function to [System].
type SystemFunc func(x State, t float64) State

func (f SystemFunc) Derive(x State, t float64) State { return f(x, t) }

// Configurable systems expose their scalar parameters by name.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Trajectory holds the states of one integration, one per grid time.
type Trajectory struct {
	Times  []float64
	States []State
}

func (tr *Trajectory) Len() int { return len(tr.States) }

// Dim is the state dimension, or 0 for an empty trajectory.
func (tr *Trajectory) Dim() int {
	if len(tr.States) == 0 {
		return 0
	}
	return len(tr.States[0])
}

// Component returns coordinate i of every sample.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		out[k] = s[i]
	}
	return out
}

func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

func (tr *Trajectory) String() string {
	return fmt.Sprintf("trajectory(%d x %d)", tr.Len(), tr.Dim())
}

// Ensemble pairs each perturbed initial condition with its trajectory.
// Initial[i] is always Members[i].States[0].
type Ensemble struct {
	Initial []State
	Members []Trajectory
}

func (e *Ensemble) Size() int { return len(e.Members) }

// Samples is the number of time samples per member, or 0 for an empty ensemble.
func (e *Ensemble) Samples() int {
	if len(e.Members) == 0 {
		return 0
	}
	return e.Members[0].Len()
}

// Times returns the shared time grid, or nil for an empty ensemble.
func (e *Ensemble) Times() []float64 {
	if len(e.Members) == 0 {
		return nil
	}
	return e.Members[0].Times
}

// At returns the state of every member at time sample k.
func (e *Ensemble) At(k int) []State {
	out := make([]State, len(e.Members))
	for i := range e.Members {
		out[i] = e.Members[i].States[k]
	}
	return out
}
