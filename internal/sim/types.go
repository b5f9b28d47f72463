package sim

import (
	"fmt"

	"github.com/san-kum/animattach/internal/attach"
	"github.com/san-kum/animattach/internal/metrics"
)

type Config struct {
	Dt    float64
	Ticks int
	// BootstrapTick is the tick on which the host reports that bootstrap
	// finished.
	BootstrapTick int
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", c.Ticks)
	}
	if c.BootstrapTick < 0 {
		return fmt.Errorf("bootstrap tick must not be negative, got %d", c.BootstrapTick)
	}
	return nil
}

type Result struct {
	Scene   string
	Times   []float64
	Samples [][]metrics.Sample
	// Final holds the engine snapshots of the last tick.
	Final   []attach.Snapshot
	Metrics map[string]float64

	StepsTaken    int
	StrutChanges  int
	WarpSnapshots int
}

// Series returns body's value over ticks as picked by pick, with NaN-free
// gaps filled by the previous value.
func (r *Result) Series(body string, pick func(metrics.Sample) float64) []float64 {
	out := make([]float64, 0, len(r.Samples))
	last := 0.0
	for _, tick := range r.Samples {
		for _, s := range tick {
			if s.Body == body {
				last = pick(s)
				break
			}
		}
		out = append(out, last)
	}
	return out
}

// Bodies lists every dependent that appears in the samples, in first-seen
// order.
func (r *Result) Bodies() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tick := range r.Samples {
		for _, s := range tick {
			if !seen[s.Body] {
				seen[s.Body] = true
				out = append(out, s.Body)
			}
		}
	}
	return out
}
