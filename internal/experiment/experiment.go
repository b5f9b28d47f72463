// Package experiment assembles runnable attachment experiments from
// built-in or file scenes and an operator configuration.
package experiment

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/san-kum/animattach/internal/config"
	"github.com/san-kum/animattach/internal/scene"
	"github.com/san-kum/animattach/internal/sim"
)

type Experiment struct {
	cfg    *config.Config
	scene  *scene.Scene
	runner *sim.Runner
	log    zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) *Experiment {
	return &Experiment{cfg: cfg, log: log}
}

// Setup validates the configuration and builds the runner for s with the
// configured integrator and the default metrics.
func (e *Experiment) Setup(reg *Registry, s *scene.Scene) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	integ, err := reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	e.scene = s
	e.runner = sim.New(s, integ, e.cfg.Settings(), e.log.With().Str("scene", s.Name).Logger())
	for _, m := range reg.DefaultMetrics(e.cfg) {
		e.runner.AddMetric(m)
	}
	return nil
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Ticks:         e.cfg.Ticks,
		BootstrapTick: e.cfg.BootstrapTick,
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.runner == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.runner.Run(ctx, e.SimConfig())
}

// GetRunner returns the underlying runner for adding observers or stepping
// it by hand.
func (e *Experiment) GetRunner() *sim.Runner {
	return e.runner
}

// ResolveScene builds a built-in scene by name, or else loads arg as a
// scene file.
func ResolveScene(reg *Registry, arg string) (*scene.Scene, error) {
	if reg.HasScene(arg) {
		return reg.GetScene(arg)
	}
	if _, err := os.Stat(arg); err != nil {
		return nil, fmt.Errorf("scene %q is neither built in nor a readable file: %w", arg, err)
	}
	return scene.LoadFile(arg)
}
