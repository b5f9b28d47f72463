// Package optim searches joint drive settings for the values that track an
// animation best.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/animattach/internal/config"
	"github.com/san-kum/animattach/internal/sim"
)

// Tunable drive parameters.
const (
	ParamForce  = "maximum_force"
	ParamSpring = "position_spring"
	ParamDamper = "position_damper"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d params but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		switch name {
		case ParamForce, ParamSpring, ParamDamper:
		default:
			return nil, fmt.Errorf("unknown tunable %q", name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%s: empty range", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Apply copies base with params set on the drive fields.
func Apply(base *config.Config, params map[string]float64) *config.Config {
	c := *base
	for k, v := range params {
		switch k {
		case ParamForce:
			c.MaximumForce = v
		case ParamSpring:
			c.PositionSpring = v
		case ParamDamper:
			c.PositionDamper = v
		}
	}
	return &c
}

// Combinations enumerates the grid in row-major order of the params.
func (g *GridSearch) Combinations() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val
		g.enumerate(depth+1, newParams, out)
	}
}

// Search runs every grid point concurrently and returns the one with the
// lowest metricName. Points whose config fails validation are reported with
// their error and never win.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	build func(cfg *config.Config) (*sim.Runner, error),
	metricName string,
) (best Point, all []Point, err error) {
	combos := g.Combinations()
	all = make([]Point, len(combos))

	var jobs []sim.Job
	var slots []int
	for i, params := range combos {
		all[i] = Point{Params: params, Value: math.Inf(1)}
		cfg := Apply(base, params)
		if verr := cfg.Validate(); verr != nil {
			all[i].Err = verr
			continue
		}
		jobs = append(jobs, sim.Job{
			Name:  fmt.Sprint(params),
			Build: func() (*sim.Runner, error) { return build(cfg) },
		})
		slots = append(slots, i)
	}
	if len(jobs) == 0 {
		return Point{}, all, fmt.Errorf("no valid grid points")
	}

	simCfg := sim.Config{Dt: base.Dt, Ticks: base.Ticks, BootstrapTick: base.BootstrapTick}
	results, err := sim.RunBatch(ctx, jobs, simCfg)
	if err != nil {
		return Point{}, all, err
	}

	best = Point{Value: math.Inf(1)}
	for j, res := range results {
		i := slots[j]
		val, ok := res.Metrics[metricName]
		if !ok {
			return Point{}, all, fmt.Errorf("metric %q not recorded", metricName)
		}
		all[i].Value = val
		if val < best.Value {
			best = all[i]
		}
	}
	return best, all, nil
}
