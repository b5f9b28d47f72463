package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/animattach/internal/experiment"
	"github.com/san-kum/animattach/internal/storage"
)

const scenarioYAML = `
name: reload
description: run the hinge, save it, reload it with a softer drive
steps:
  - scene: hinge
    ticks: 120
    save_state: hinge.cfg
    store: true
  - scene: hinge
    preset: soft
    ticks: 60
    load_state: hinge.cfg
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunScenarioChainsState(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	require.Len(t, sc.Steps, 2)

	dir := t.TempDir()
	st := storage.New(filepath.Join(dir, "runs"))
	r := &Runner{Registry: experiment.NewRegistry(), Store: st, StateDir: dir, Log: zerolog.Nop()}

	results, err := r.RunScenario(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NotEmpty(t, results[0].RunID)
	assert.Empty(t, results[1].RunID, "second step is not stored")
	assert.Equal(t, 120, results[0].Result.StepsTaken)
	assert.Equal(t, 60, results[1].Result.StepsTaken)
	assert.FileExists(t, filepath.Join(dir, "hinge.cfg"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRunScenarioStopsOnError(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Scene: "hinge", Ticks: 10},
		{Scene: "hinge", Preset: "nope"},
		{Scene: "hinge", Ticks: 10},
	}}
	r := &Runner{Registry: experiment.NewRegistry(), StateDir: t.TempDir(), Log: zerolog.Nop()}

	results, err := r.RunScenario(context.Background(), sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 2")
	assert.Len(t, results, 1)
}

func TestStepConfig(t *testing.T) {
	cfg, err := ScenarioStep{Preset: "soft", Spring: 300, Disabled: true}.Config()
	require.NoError(t, err)
	assert.Equal(t, 300.0, cfg.PositionSpring)
	assert.Equal(t, "verlet", cfg.Integrator)
	assert.False(t, cfg.Enabled)

	_, err = ScenarioStep{Damper: 1e9}.Config()
	assert.Error(t, err)
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadScenario(writeScenario(t, "name: empty\n"))
	assert.Error(t, err)

	_, err = LoadScenario(writeScenario(t, "steps: [\n"))
	assert.Error(t, err)
}
