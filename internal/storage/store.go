// Package storage keeps finished runs on disk: a metadata.json and a
// poses.csv per run directory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/metrics"
	"github.com/san-kum/animattach/internal/sim"
)

var ErrNoRun = errors.New("no such run")

var poseHeader = []string{"tick", "time", "body", "propagated", "x", "y", "z", "tx", "ty", "tz", "error"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Scene         string             `json:"scene"`
	Timestamp     time.Time          `json:"timestamp"`
	Dt            float64            `json:"dt"`
	Ticks         int                `json:"ticks"`
	BootstrapTick int                `json:"bootstrap_tick"`
	Integrator    string             `json:"integrator"`
	Preset        string             `json:"preset,omitempty"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes result under a new run directory and returns its id.
// meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scene, now.UnixNano())
	meta.Timestamp = now
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "poses.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(poseHeader); err != nil {
		return "", err
	}
	for _, tick := range result.Samples {
		for _, smp := range tick {
			if err := w.Write(poseRow(smp)); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func poseRow(smp metrics.Sample) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	a, t := smp.Actual.Position, smp.Target.Position
	return []string{
		strconv.Itoa(smp.Tick),
		f(smp.Time),
		smp.Body,
		strconv.FormatBool(smp.Propagated),
		f(a.X), f(a.Y), f(a.Z),
		f(t.X), f(t.Y), f(t.Z),
		f(smp.PositionError()),
	}
}

// List returns every stored run, newest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrNoRun)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads a run's poses back. Rows that do not parse are
// skipped; rotations are not stored and come back as identity.
func (s *Store) LoadSamples(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "poses.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrNoRun)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	out := make([]metrics.Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		smp, ok := parseRow(rec)
		if !ok {
			continue
		}
		out = append(out, smp)
	}
	return out, nil
}

func parseRow(rec []string) (metrics.Sample, bool) {
	if len(rec) < len(poseHeader)-1 {
		return metrics.Sample{}, false
	}
	tick, err := strconv.Atoi(rec[0])
	if err != nil {
		return metrics.Sample{}, false
	}
	prop, err := strconv.ParseBool(rec[3])
	if err != nil {
		return metrics.Sample{}, false
	}
	vals := make([]float64, 7)
	for i, col := range []int{1, 4, 5, 6, 7, 8, 9} {
		v, err := strconv.ParseFloat(rec[col], 64)
		if err != nil {
			return metrics.Sample{}, false
		}
		vals[i] = v
	}
	return metrics.Sample{
		Tick:       tick,
		Time:       vals[0],
		Body:       rec[2],
		Propagated: prop,
		Actual:     geom.NewPose(r3.Vec{X: vals[1], Y: vals[2], Z: vals[3]}, geom.Identity()),
		Target:     geom.NewPose(r3.Vec{X: vals[4], Y: vals[5], Z: vals[6]}, geom.Identity()),
	}, true
}
