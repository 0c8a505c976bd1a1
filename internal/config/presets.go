package config

import (
	"sort"

	"github.com/san-kum/lorenzlab/internal/experiment"
	"github.com/san-kum/lorenzlab/internal/physics"
)

var Presets = map[string]map[string]*Config{
	experiment.ModelLorenz63: {
		"classic":   lorenz63Preset(physics.DefaultLorenz63Params(), 50, 0.01, 2.0),
		"sensitive": lorenz63Preset(physics.DefaultLorenz63Params(), 100, 1e-4, 10.0),
		"periodic":  lorenz63Preset(physics.Lorenz63Params{Sigma: 10, Beta: 8.0 / 3.0, Rho: 160}, 20, 0.1, 5.0),
		"stable":    lorenz63Preset(physics.Lorenz63Params{Sigma: 10, Beta: 8.0 / 3.0, Rho: 14}, 20, 1.0, 5.0),
	},
	experiment.ModelLorenz96: {
		"chaotic":  lorenz96Preset(40, 8, 0.01, 10.0),
		"weak":     lorenz96Preset(40, 4, 0.01, 20.0),
		"decaying": lorenz96Preset(40, 0.5, 0.01, 20.0),
	},
}

func lorenz63Preset(p physics.Lorenz63Params, members int, eps, horizon float64) *Config {
	cfg := DefaultConfig()
	cfg.Lorenz63.Params = p
	cfg.Lorenz63.Members = members
	cfg.Lorenz63.Eps = eps
	cfg.Lorenz63.Horizon = horizon
	return cfg
}

func lorenz96Preset(dim int, forcing, eps, horizon float64) *Config {
	cfg := DefaultConfig()
	cfg.Lorenz96.Dim = dim
	cfg.Lorenz96.Forcing = forcing
	cfg.Lorenz96.Eps = eps
	cfg.Lorenz96.Horizon = horizon
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.Lorenz63.Proto = cfg.Lorenz63.Proto.Clone()
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
