package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/animattach/internal/metrics"
	"github.com/san-kum/animattach/internal/sim"
)

type BodyTrace struct {
	Ticks     []int        `json:"ticks"`
	Positions [][3]float64 `json:"positions"`
	Errors    []float64    `json:"errors"`
}

type ExportData struct {
	Scene      string               `json:"scene"`
	Integrator string               `json:"integrator"`
	Dt         float64              `json:"dt"`
	Steps      int                  `json:"steps"`
	Times      []float64            `json:"times"`
	Bodies     map[string]BodyTrace `json:"bodies"`
	Metrics    map[string]float64   `json:"metrics"`
}

func NewExport(meta RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		Scene:      meta.Scene,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Steps:      result.StepsTaken,
		Times:      result.Times,
		Bodies:     make(map[string]BodyTrace),
		Metrics:    result.Metrics,
	}
	for _, tick := range result.Samples {
		for _, smp := range tick {
			data.Bodies[smp.Body] = appendTrace(data.Bodies[smp.Body], smp)
		}
	}
	return data
}

func appendTrace(tr BodyTrace, smp metrics.Sample) BodyTrace {
	p := smp.Actual.Position
	tr.Ticks = append(tr.Ticks, smp.Tick)
	tr.Positions = append(tr.Positions, [3]float64{p.X, p.Y, p.Z})
	tr.Errors = append(tr.Errors, smp.PositionError())
	return tr
}

// ExportJSON writes the run as indented JSON to w.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExport(meta, result))
}
