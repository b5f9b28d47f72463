package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/metrics"
	"github.com/san-kum/animattach/internal/sim"
)

func sample(tick int, body string, x, tx float64) metrics.Sample {
	return metrics.Sample{
		Tick:       tick,
		Time:       float64(tick) * 0.02,
		Body:       body,
		Propagated: tick > 0,
		Actual:     geom.NewPose(r3.Vec{X: x}, geom.Identity()),
		Target:     geom.NewPose(r3.Vec{X: tx}, geom.Identity()),
	}
}

func testResult() *sim.Result {
	return &sim.Result{
		Scene: "hinge",
		Times: []float64{0.02, 0.04},
		Samples: [][]metrics.Sample{
			{sample(0, "panel", 1, 0)},
			{sample(1, "panel", 0.5, 0.25), sample(1, "light", 2, 2)},
		},
		Metrics:    map[string]float64{"tracking_error": 0.125},
		StepsTaken: 2,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Scene: "hinge", Dt: 0.02, Ticks: 2, Integrator: "rk4"}, testResult())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "hinge", meta.Scene)
	assert.Equal(t, "rk4", meta.Integrator)
	assert.InDelta(t, 0.125, meta.Metrics["tracking_error"], 1e-12)

	samples, err := st.LoadSamples(runID)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, "panel", samples[1].Body)
	assert.True(t, samples[1].Propagated)
	assert.False(t, samples[0].Propagated)
	assert.InDelta(t, 0.5, samples[1].Actual.Position.X, 1e-6)
	assert.InDelta(t, 0.25, samples[1].PositionError(), 1e-6)
	assert.Equal(t, "light", samples[2].Body)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save(RunMetadata{Scene: "hinge"}, testResult())
	require.NoError(t, err)
	_, err = st.Save(RunMetadata{Scene: "surface"}, testResult())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2, "directories without metadata are skipped")
	assert.Equal(t, "surface", runs[0].Scene, "newest first")
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrNoRun)
	_, err = st.LoadSamples("nope")
	assert.ErrorIs(t, err, ErrNoRun)
}

func TestLoadSamplesSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runDir := filepath.Join(dir, "r1")
	require.NoError(t, os.MkdirAll(runDir, 0755))

	csv := "tick,time,body,propagated,x,y,z,tx,ty,tz,error\n" +
		"0,0.0,a,true,1,2,3,1,2,3,0\n" +
		"x,0.0,a,true,1,2,3,1,2,3,0\n" +
		"1,0.1,a,maybe,1,2,3,1,2,3,0\n" +
		"2,0.2,a\n"
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "poses.csv"), []byte(csv), 0644))

	samples, err := st.LoadSamples("r1")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, samples[0].Actual.Position)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, RunMetadata{Scene: "hinge", Integrator: "rk4", Dt: 0.02}, testResult()))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "hinge", data.Scene)
	assert.Equal(t, 2, data.Steps)
	require.Contains(t, data.Bodies, "panel")
	assert.Equal(t, []int{0, 1}, data.Bodies["panel"].Ticks)
	assert.InDelta(t, 0.25, data.Bodies["panel"].Errors[1], 1e-12)
	assert.Len(t, data.Bodies["light"].Positions, 1)
}
