package experiment

import (
	"fmt"

	"github.com/san-kum/lorenzlab/internal/dynamo"
	"github.com/san-kum/lorenzlab/internal/physics"
)

const (
	ModelLorenz63 = "lorenz63"
	ModelLorenz96 = "lorenz96"
)

var modelInfo = map[string]string{
	ModelLorenz63: "butterfly attractor, perturbed ensemble",
	ModelLorenz96: "circulant toy atmosphere, single run",
}

func Models() []string { return []string{ModelLorenz63, ModelLorenz96} }

func Describe(model string) string { return modelInfo[model] }

// System builds the model's vector field and its unperturbed initial state.
func System(model string, l63 Lorenz63Config, l96 Lorenz96Config) (dynamo.System, dynamo.State, error) {
	switch model {
	case ModelLorenz63:
		proto := l63.Proto
		if proto == nil {
			proto = physics.Lorenz63Proto()
		}
		return physics.NewLorenz63(l63.Params), proto.Clone(), nil
	case ModelLorenz96:
		return physics.NewLorenz96(l96.Dim, l96.Forcing), l96.InitialState(), nil
	default:
		return nil, nil, fmt.Errorf("unknown model: %s (available: %v)", model, Models())
	}
}
