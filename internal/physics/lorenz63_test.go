package physics

import (
	"math"
	"testing"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

func TestLorenz63Equilibrium(t *testing.T) {
	params := []Lorenz63Params{
		DefaultLorenz63Params(),
		{Sigma: 0, Beta: 0, Rho: 0},
		{Sigma: -3, Beta: 100, Rho: 1e6},
	}

	for _, p := range params {
		dx := Lorenz63Derivative(dynamo.State{0, 0, 0}, p)
		for i, v := range dx {
			if v != 0 {
				t.Errorf("params %+v: dx[%d] = %v, want 0", p, i, v)
			}
		}
	}
}

func TestLorenz63NontrivialEquilibria(t *testing.T) {
	p := DefaultLorenz63Params()
	c := math.Sqrt(p.Beta * (p.Rho - 1))

	for _, x := range []dynamo.State{{c, c, p.Rho - 1}, {-c, -c, p.Rho - 1}} {
		dx := Lorenz63Derivative(x, p)
		for i, v := range dx {
			if math.Abs(v) > 1e-9 {
				t.Errorf("C± equilibrium %v: dx[%d] = %v", x, i, v)
			}
		}
	}
}

func TestLorenz63Derivative(t *testing.T) {
	p := Lorenz63Params{Sigma: 10, Beta: 2, Rho: 28}
	dx := Lorenz63Derivative(dynamo.State{1, 2, 3}, p)

	want := dynamo.State{10 * (2 - 1), 1*(28-3) - 2, 1*2 - 2*3}
	for i := range want {
		if dx[i] != want[i] {
			t.Errorf("dx[%d] = %v, want %v", i, dx[i], want[i])
		}
	}
}

func TestLorenz63System(t *testing.T) {
	l := NewLorenz63(DefaultLorenz63Params())

	if l.StateDim() != 3 {
		t.Errorf("expected state dim 3, got %d", l.StateDim())
	}

	proto := l.DefaultState()
	if proto[0] != -6.1 || proto[1] != 1.2 || proto[2] != 32.5 {
		t.Errorf("unexpected proto state %v", proto)
	}

	if err := l.SetParam("rho", 99); err != nil {
		t.Fatalf("SetParam(rho): %v", err)
	}
	if l.GetParams()["rho"] != 99 {
		t.Errorf("rho not updated: %v", l.GetParams())
	}
	if err := l.SetParam("gamma", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func BenchmarkLorenz63Derivative(b *testing.B) {
	p := DefaultLorenz63Params()
	x := Lorenz63Proto()
	for i := 0; i < b.N; i++ {
		_ = Lorenz63Derivative(x, p)
	}
}
