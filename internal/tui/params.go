package tui

import (
	"github.com/san-kum/lorenzlab/internal/config"
	"github.com/san-kum/lorenzlab/internal/experiment"
)

// param is one adjustable knob on the config screen.
type param struct {
	name string
	step float64
	min  float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

func (p param) adjust(cfg *config.Config, dir float64) {
	v := p.get(cfg) + dir*p.step
	if v < p.min {
		v = p.min
	}
	p.set(cfg, v)
}

var lorenz63Params = []param{
	{"sigma", 0.5, 0,
		func(c *config.Config) float64 { return c.Lorenz63.Params.Sigma },
		func(c *config.Config, v float64) { c.Lorenz63.Params.Sigma = v }},
	{"rho", 1, 0,
		func(c *config.Config) float64 { return c.Lorenz63.Params.Rho },
		func(c *config.Config, v float64) { c.Lorenz63.Params.Rho = v }},
	{"beta", 0.1, 0,
		func(c *config.Config) float64 { return c.Lorenz63.Params.Beta },
		func(c *config.Config, v float64) { c.Lorenz63.Params.Beta = v }},
	{"members", 1, 1,
		func(c *config.Config) float64 { return float64(c.Lorenz63.Members) },
		func(c *config.Config, v float64) { c.Lorenz63.Members = int(v) }},
	{"eps", 0.01, 0,
		func(c *config.Config) float64 { return c.Lorenz63.Eps },
		func(c *config.Config, v float64) { c.Lorenz63.Eps = v }},
	{"horizon", 0.5, 0,
		func(c *config.Config) float64 { return c.Lorenz63.Horizon },
		func(c *config.Config, v float64) { c.Lorenz63.Horizon = v }},
}

var lorenz96Params = []param{
	{"dim", 1, 4,
		func(c *config.Config) float64 { return float64(c.Lorenz96.Dim) },
		func(c *config.Config, v float64) { c.Lorenz96.Dim = int(v) }},
	{"forcing", 0.5, 0,
		func(c *config.Config) float64 { return c.Lorenz96.Forcing },
		func(c *config.Config, v float64) { c.Lorenz96.Forcing = v }},
	{"eps", 0.01, 0,
		func(c *config.Config) float64 { return c.Lorenz96.Eps },
		func(c *config.Config, v float64) { c.Lorenz96.Eps = v }},
	{"horizon", 1, 0,
		func(c *config.Config) float64 { return c.Lorenz96.Horizon },
		func(c *config.Config, v float64) { c.Lorenz96.Horizon = v }},
}

func paramsFor(model string) []param {
	if model == experiment.ModelLorenz96 {
		return lorenz96Params
	}
	return lorenz63Params
}
