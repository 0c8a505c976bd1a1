package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lorenzlab/internal/experiment"
	"github.com/san-kum/lorenzlab/internal/integrators"
)

type Config struct {
	Solver   string                    `yaml:"solver"`
	Lorenz63 experiment.Lorenz63Config `yaml:"lorenz63"`
	Lorenz96 experiment.Lorenz96Config `yaml:"lorenz96"`
}

func DefaultConfig() *Config {
	return &Config{
		Solver:   integrators.DefaultSolver,
		Lorenz63: experiment.DefaultLorenz63Config(),
		Lorenz96: experiment.DefaultLorenz96Config(),
	}
}

// Load decodes the YAML file at path over the defaults, so a file only
// needs the keys it changes.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver decodes the file at path on top of base. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	cfg.Lorenz63.Proto = base.Lorenz63.Proto.Clone()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return cfg.WriteYAML(f)
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := integrators.New(c.Solver); err != nil {
		errs = append(errs, err)
	}
	if err := c.Lorenz63.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lorenz63: %w", err))
	}
	if err := c.Lorenz96.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lorenz96: %w", err))
	}
	return errors.Join(errs...)
}
