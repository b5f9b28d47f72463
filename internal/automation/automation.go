// Package automation runs scripted sequences of scene runs from a YAML
// scenario file. Steps can hand attachment state to each other through
// state files, the way a saved vessel is reloaded in a later session.
package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/animattach/internal/config"
	"github.com/san-kum/animattach/internal/experiment"
	"github.com/san-kum/animattach/internal/sim"
	"github.com/san-kum/animattach/internal/storage"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Zero fields keep the preset's (or the
// default) value.
type ScenarioStep struct {
	Scene      string  `yaml:"scene"`
	Preset     string  `yaml:"preset"`
	Integrator string  `yaml:"integrator"`
	Ticks      int     `yaml:"ticks"`
	Dt         float64 `yaml:"dt"`
	Spring     float64 `yaml:"spring"`
	Damper     float64 `yaml:"damper"`
	Force      float64 `yaml:"force"`
	Disabled   bool    `yaml:"disabled"`
	// LoadState and SaveState are relative to the scenario's state
	// directory.
	LoadState string `yaml:"load_state"`
	SaveState string `yaml:"save_state"`
	Store     bool   `yaml:"store"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int
	Scene  string
	RunID  string
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config builds the step's configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Ticks != 0 {
		cfg.Ticks = s.Ticks
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Spring != 0 {
		cfg.PositionSpring = s.Spring
	}
	if s.Damper != 0 {
		cfg.PositionDamper = s.Damper
	}
	if s.Force != 0 {
		cfg.MaximumForce = s.Force
	}
	if s.Disabled {
		cfg.Enabled = false
	}
	return cfg, cfg.Validate()
}

// Runner executes scenarios. Store may be nil, in which case no step is
// stored.
type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	StateDir string
	Log      zerolog.Logger
}

// RunScenario executes all steps in order and stops at the first failure.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		r.Log.Info().Int("step", i+1).Int("of", len(scenario.Steps)).Str("scene", step.Scene).Msg("scenario step")

		res, err := r.runStep(ctx, i, step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) runStep(ctx context.Context, i int, step ScenarioStep) (StepResult, error) {
	cfg, err := step.Config()
	if err != nil {
		return StepResult{}, err
	}
	s, err := experiment.ResolveScene(r.Registry, step.Scene)
	if err != nil {
		return StepResult{}, err
	}

	exp := experiment.New(cfg, r.Log)
	if err := exp.Setup(r.Registry, s); err != nil {
		return StepResult{}, err
	}
	runner := exp.GetRunner()
	if step.LoadState != "" {
		if err := runner.LoadState(filepath.Join(r.StateDir, step.LoadState)); err != nil {
			return StepResult{}, err
		}
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return StepResult{}, err
	}

	if step.SaveState != "" {
		if err := runner.SaveState(filepath.Join(r.StateDir, step.SaveState)); err != nil {
			return StepResult{}, err
		}
	}

	out := StepResult{Index: i, Scene: s.Name, Result: result}
	if step.Store && r.Store != nil {
		out.RunID, err = r.Store.Save(storage.RunMetadata{
			Scene:         s.Name,
			Dt:            cfg.Dt,
			Ticks:         cfg.Ticks,
			BootstrapTick: cfg.BootstrapTick,
			Integrator:    cfg.Integrator,
			Preset:        step.Preset,
		}, result)
		if err != nil {
			return StepResult{}, err
		}
	}
	return out, nil
}
