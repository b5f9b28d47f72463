// Package config holds the operator settings for the attachment engine and
// the runner, loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/animattach/internal/attach"
	"github.com/san-kum/animattach/internal/host"
	"github.com/san-kum/animattach/internal/integrators"
)

const (
	DefaultMaximumForce   = attach.DefaultMaximumForce
	DefaultPositionSpring = attach.DefaultPositionSpring
	DefaultPositionDamper = attach.DefaultPositionDamper
	DefaultDt             = 0.02
	DefaultTicks          = 500
	DefaultBootstrapTick  = 2
	DefaultSettleTol      = 0.01
)

// Declared ranges for the drive fields.
var (
	ForceRange  = Range{Min: 1, Max: 100000}
	SpringRange = Range{Min: 1, Max: 100000}
	DamperRange = Range{Min: 1, Max: 10000}
)

var ErrOutOfRange = errors.New("config: value out of range")

type Range struct {
	Min, Max float64
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

type Config struct {
	Enabled        bool    `yaml:"enabled"`
	MaximumForce   float64 `yaml:"maximum_force"`
	PositionSpring float64 `yaml:"position_spring"`
	PositionDamper float64 `yaml:"position_damper"`

	Dt            float64 `yaml:"dt"`
	Ticks         int     `yaml:"ticks"`
	BootstrapTick int     `yaml:"bootstrap_tick"`
	Integrator    string  `yaml:"integrator"`
	SettleTol     float64 `yaml:"settle_tolerance"`
	LogLevel      string  `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MaximumForce:   DefaultMaximumForce,
		PositionSpring: DefaultPositionSpring,
		PositionDamper: DefaultPositionDamper,
		Dt:             DefaultDt,
		Ticks:          DefaultTicks,
		BootstrapTick:  DefaultBootstrapTick,
		Integrator:     "rk4",
		SettleTol:      DefaultSettleTol,
		LogLevel:       "info",
	}
}

// Load reads path over the defaults, so omitted fields keep their default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(field string, v float64, r Range) {
		if !r.Contains(v) {
			errs = append(errs, fmt.Errorf("%s %g not in [%g, %g]: %w", field, v, r.Min, r.Max, ErrOutOfRange))
		}
	}
	check("maximum_force", c.MaximumForce, ForceRange)
	check("position_spring", c.PositionSpring, SpringRange)
	check("position_damper", c.PositionDamper, DamperRange)

	if c.Dt <= 0 {
		errs = append(errs, fmt.Errorf("dt must be positive, got %g: %w", c.Dt, ErrOutOfRange))
	}
	if c.Ticks <= 0 {
		errs = append(errs, fmt.Errorf("ticks must be positive, got %d: %w", c.Ticks, ErrOutOfRange))
	}
	if c.BootstrapTick < 0 {
		errs = append(errs, fmt.Errorf("bootstrap_tick must not be negative, got %d: %w", c.BootstrapTick, ErrOutOfRange))
	}
	if c.SettleTol < 0 {
		errs = append(errs, fmt.Errorf("settle_tolerance must not be negative, got %g: %w", c.SettleTol, ErrOutOfRange))
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		errs = append(errs, err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) Drive() host.Drive {
	return host.Drive{
		MaximumForce:   c.MaximumForce,
		PositionSpring: c.PositionSpring,
		PositionDamper: c.PositionDamper,
	}
}

// Settings is the engine's view of the configuration.
func (c *Config) Settings() attach.Settings {
	return attach.Settings{Enabled: c.Enabled, Drive: c.Drive()}
}
