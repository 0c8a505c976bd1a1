package physics

import (
	"math"
	"testing"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

func TestShift(t *testing.T) {
	x := dynamo.State{0, 1, 2, 3, 4}

	tests := []struct {
		n    int
		want dynamo.State
	}{
		{0, dynamo.State{0, 1, 2, 3, 4}},
		{1, dynamo.State{1, 2, 3, 4, 0}},
		{-1, dynamo.State{4, 0, 1, 2, 3}},
		{-2, dynamo.State{3, 4, 0, 1, 2}},
		{5, dynamo.State{0, 1, 2, 3, 4}},
		{7, dynamo.State{2, 3, 4, 0, 1}},
		{-12, dynamo.State{3, 4, 0, 1, 2}},
	}

	for _, tt := range tests {
		got := Shift(x, tt.n)
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("Shift(x, %d) = %v, want %v", tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestShiftComposition(t *testing.T) {
	x := dynamo.State{0.5, -1, 2, 7, 3.25, -4}

	for a := -8; a <= 8; a++ {
		for b := -8; b <= 8; b++ {
			lhs := Shift(Shift(x, a), b)
			rhs := Shift(x, a+b)
			for i := range x {
				if lhs[i] != rhs[i] {
					t.Fatalf("Shift(Shift(x,%d),%d) = %v, Shift(x,%d) = %v", a, b, lhs, a+b, rhs)
				}
			}
		}
	}
}

func TestShiftDoesNotAlias(t *testing.T) {
	x := dynamo.State{1, 2, 3}
	s := Shift(x, 0)
	s[0] = 42
	if x[0] != 1 {
		t.Error("Shift must return a new vector")
	}
	if got := Shift(dynamo.State{}, 3); len(got) != 0 {
		t.Errorf("Shift of empty vector = %v", got)
	}
}

func TestLorenz96UniformState(t *testing.T) {
	for _, c := range []float64{0, 1, -2.5, 8} {
		x := make(dynamo.State, 40)
		for i := range x {
			x[i] = c
		}
		dx := Lorenz96Derivative(x, 0)
		for i, v := range dx {
			if v != -c {
				t.Fatalf("c=%v: dx[%d] = %v, want %v", c, i, v, -c)
			}
		}
	}
}

func TestLorenz96ForcedEquilibrium(t *testing.T) {
	// x_i = F is a fixed point for any m.
	const f = 8.0
	x := make(dynamo.State, 12)
	for i := range x {
		x[i] = f
	}
	for i, v := range Lorenz96Derivative(x, f) {
		if math.Abs(v) > 1e-12 {
			t.Errorf("dx[%d] = %v, want 0", i, v)
		}
	}
}

func TestLorenz96MatchesIndexFormula(t *testing.T) {
	x := dynamo.State{0.3, -1.2, 2.4, 0.7, -0.9, 1.1, 5.0}
	const f = 8.0
	m := len(x)
	dx := Lorenz96Derivative(x, f)

	for i := range x {
		want := (x[(i+1)%m]-x[(i-2+m)%m])*x[(i-1+m)%m] - x[i] + f
		if math.Abs(dx[i]-want) > 1e-12 {
			t.Errorf("dx[%d] = %v, want %v", i, dx[i], want)
		}
	}
}

func TestLorenz96System(t *testing.T) {
	l := NewLorenz96(DefaultLorenz96Dim, DefaultLorenz96Forcing)
	if l.StateDim() != 40 {
		t.Errorf("expected state dim 40, got %d", l.StateDim())
	}

	x0 := l.DefaultState()
	if x0[0] != 0.01 {
		t.Errorf("x0[0] = %v, want 0.01", x0[0])
	}
	for i := 1; i < len(x0); i++ {
		if x0[i] != 0 {
			t.Fatalf("x0[%d] = %v, want 0", i, x0[i])
		}
	}

	if err := l.SetParam("forcing", 4); err != nil || l.Forcing != 4 {
		t.Errorf("SetParam(forcing) = %v, forcing %v", err, l.Forcing)
	}
	if err := l.SetParam("sigma", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func BenchmarkLorenz96Derivative(b *testing.B) {
	x := NewLorenz96(40, 8).DefaultState()
	for i := 0; i < b.N; i++ {
		_ = Lorenz96Derivative(x, 8)
	}
}
