package physics

import (
	"fmt"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

const (
	DefaultLorenz96Dim     = 40
	DefaultLorenz96Forcing = 8.0
)

// Shift rotates x left by n positions: Shift(x, n)[i] == x[(i+n) mod m].
// Negative n rotates right.
func Shift(x dynamo.State, n int) dynamo.State {
	m := len(x)
	out := make(dynamo.State, m)
	if m == 0 {
		return out
	}
	n %= m
	if n < 0 {
		n += m
	}
	copy(out, x[n:])
	copy(out[m-n:], x[:n])
	return out
}

// Lorenz96Derivative evaluates dx_i = (x_{i+1} - x_{i-2}) x_{i-1} - x_i + F
// with circular indexing.
func Lorenz96Derivative(x dynamo.State, forcing float64) dynamo.State {
	ahead, back2, back1 := Shift(x, 1), Shift(x, -2), Shift(x, -1)
	dx := make(dynamo.State, len(x))
	for i := range x {
		dx[i] = (ahead[i]-back2[i])*back1[i] - x[i] + forcing
	}
	return dx
}

type Lorenz96 struct {
	Dim     int
	Forcing float64
}

func NewLorenz96(dim int, forcing float64) *Lorenz96 {
	return &Lorenz96{Dim: dim, Forcing: forcing}
}

func (l *Lorenz96) StateDim() int { return l.Dim }

func (l *Lorenz96) Derive(x dynamo.State, _ float64) dynamo.State {
	return Lorenz96Derivative(x, l.Forcing)
}

// DefaultState is the resting state with a small kick on the first site.
func (l *Lorenz96) DefaultState() dynamo.State {
	x := make(dynamo.State, l.Dim)
	if l.Dim > 0 {
		x[0] = 0.01
	}
	return x
}

func (l *Lorenz96) GetParams() map[string]float64 {
	return map[string]float64{"forcing": l.Forcing}
}

func (l *Lorenz96) SetParam(n string, v float64) error {
	if n != "forcing" {
		return fmt.Errorf("lorenz96: unknown parameter %q", n)
	}
	l.Forcing = v
	return nil
}
