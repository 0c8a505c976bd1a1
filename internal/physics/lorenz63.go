package physics

import (
	"fmt"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

// Lorenz63Params are the convection model's constants.
type Lorenz63Params struct {
	Sigma float64 `yaml:"sigma" json:"sigma"`
	Beta  float64 `yaml:"beta" json:"beta"`
	Rho   float64 `yaml:"rho" json:"rho"`
}

func DefaultLorenz63Params() Lorenz63Params {
	return Lorenz63Params{Sigma: 10.0, Beta: 8.0 / 3.0, Rho: 28.0}
}

// Lorenz63Proto is the base state the ensemble is perturbed around.
func Lorenz63Proto() dynamo.State { return dynamo.State{-6.1, 1.2, 32.5} }

// Lorenz63Derivative evaluates the vector field at x.
func Lorenz63Derivative(x dynamo.State, p Lorenz63Params) dynamo.State {
	return dynamo.State{
		p.Sigma * (x[1] - x[0]),
		x[0]*(p.Rho-x[2]) - x[1],
		x[0]*x[1] - p.Beta*x[2],
	}
}

type Lorenz63 struct{ Params Lorenz63Params }

func NewLorenz63(p Lorenz63Params) *Lorenz63 { return &Lorenz63{Params: p} }
func (l *Lorenz63) StateDim() int          { return 3 }

func (l *Lorenz63) Derive(x dynamo.State, _ float64) dynamo.State {
	return Lorenz63Derivative(x, l.Params)
}

func (l *Lorenz63) DefaultState() dynamo.State { return Lorenz63Proto() }

func (l *Lorenz63) GetParams() map[string]float64 {
	return map[string]float64{"sigma": l.Params.Sigma, "beta": l.Params.Beta, "rho": l.Params.Rho}
}

func (l *Lorenz63) SetParam(n string, v float64) error {
	switch n {
	case "sigma":
		l.Params.Sigma = v
	case "beta":
		l.Params.Beta = v
	case "rho":
		l.Params.Rho = v
	default:
		return fmt.Errorf("lorenz63: unknown parameter %q", n)
	}
	return nil
}
