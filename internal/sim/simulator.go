// Package sim drives a scene and its attachment engine tick by tick.
package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/animattach/internal/attach"
	"github.com/san-kum/animattach/internal/document"
	"github.com/san-kum/animattach/internal/dynamo"
	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
	"github.com/san-kum/animattach/internal/metrics"
	"github.com/san-kum/animattach/internal/scene"
	"github.com/san-kum/animattach/internal/stabilize"
)

// StateRoot is the document node attachment state is saved under.
const StateRoot = "ANIMATED_ATTACHMENT"

type Runner struct {
	scene      *scene.Scene
	engine     *attach.Engine
	integrator dynamo.Integrator
	struts     *stabilize.Coordinator
	warp       *stabilize.WarpWatcher
	metrics    []metrics.Metric
	log        zerolog.Logger

	cfg    Config
	tick   int
	result *Result
}

func New(s *scene.Scene, integrator dynamo.Integrator, settings attach.Settings, log zerolog.Logger) *Runner {
	r := &Runner{
		scene:      s,
		engine:     attach.NewEngine(s.Owner, settings, log),
		integrator: integrator,
		struts:     stabilize.NewCoordinator(log),
		metrics:    make([]metrics.Metric, 0),
		log:        log,
	}
	r.warp = stabilize.NewWarpWatcher(s.UpdateOriginalPositions, log)
	return r
}

func (r *Runner) AddMetric(m metrics.Metric)    { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o attach.Observer) { r.engine.AddObserver(o) }
func (r *Runner) Engine() *attach.Engine        { return r.engine }
func (r *Runner) Scene() *scene.Scene           { return r.scene }
func (r *Runner) Tick() int                     { return r.tick }
func (r *Runner) Result() *Result               { return r.result }

// Start resets metrics and fires the activation signal. Step may be called
// afterwards; Run does both.
func (r *Runner) Start(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.cfg = cfg
	r.tick = 0
	r.result = &Result{
		Scene:   r.scene.Name,
		Times:   make([]float64, 0, cfg.Ticks),
		Samples: make([][]metrics.Sample, 0, cfg.Ticks),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}
	r.engine.Signal(host.SignalActivate)
	return nil
}

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := r.Start(cfg); err != nil {
		return nil, err
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			r.finish()
			return r.result, ctx.Err()
		default:
		}

		if _, err := r.Step(); err != nil {
			r.finish()
			return r.result, err
		}
	}

	r.finish()
	return r.result, nil
}

// Step runs one tick: scripted events, animation, engine, physics,
// stabilizer, metrics.
func (r *Runner) Step() ([]attach.Snapshot, error) {
	if r.result == nil {
		return nil, fmt.Errorf("runner not started")
	}
	tick := r.tick

	if tick == r.cfg.BootstrapTick {
		r.engine.Signal(host.SignalBootstrapFinished)
	}

	for _, ev := range r.scene.EventsAt(tick) {
		out, err := r.scene.Apply(ev)
		if err != nil {
			return nil, &dynamo.StepError{Step: tick, Time: r.scene.Time(), Body: ev.Body, Wrapped: err}
		}
		r.log.Debug().Int("tick", tick).Str("type", string(ev.Type)).Str("body", ev.Body).Msg("scene event")
		for _, hev := range out {
			r.engine.Handle(hev)
		}
	}
	if r.warp.Observe(r.scene.WarpRate()) {
		r.result.WarpSnapshots++
	}

	r.scene.Advance(r.cfg.Dt)
	snaps := r.engine.Tick()

	if err := r.scene.Step(r.integrator, r.cfg.Dt); err != nil {
		var se *dynamo.StepError
		if errors.As(err, &se) {
			se.Step = tick
		}
		return snaps, err
	}

	if r.struts.Update(r.scene.AnyMoving(), r.scene.Strutted()) {
		r.result.StrutChanges++
	}

	samples := r.samples(tick, snaps)
	for _, s := range samples {
		for _, m := range r.metrics {
			m.Observe(s)
		}
	}

	r.result.Times = append(r.result.Times, r.scene.Time())
	r.result.Samples = append(r.result.Samples, samples)
	r.result.Final = snaps
	r.result.StepsTaken++
	r.tick++
	return snaps, nil
}

func (r *Runner) samples(tick int, snaps []attach.Snapshot) []metrics.Sample {
	out := make([]metrics.Sample, 0, len(snaps))
	for _, snap := range snaps {
		b, ok := r.scene.Body(snap.Dependent)
		if !ok {
			continue
		}
		out = append(out, metrics.Sample{
			Tick:       tick,
			Time:       r.scene.Time(),
			Body:       snap.Dependent,
			Propagated: snap.Outcome.Propagated(),
			Actual:     geom.NewPose(b.Transform().LocalPosition(), b.Transform().LocalRotation()),
			Target:     snap.Target,
		})
	}
	return out
}

func (r *Runner) finish() {
	for _, m := range r.metrics {
		r.result.Metrics[m.Name()] = m.Value()
	}
}

// SaveState writes the engine's attachment records to path. Once started,
// current poses are also made the bodies' original poses so a reload keeps
// them where they are.
func (r *Runner) SaveState(path string) error {
	if r.engine.Phase() == attach.PhaseStarted {
		r.scene.UpdateOriginalPositions()
	}
	root := document.New(StateRoot)
	r.engine.Save(root)
	if err := document.Save(path, root); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadState replaces the engine's records with those saved at path.
func (r *Runner) LoadState(path string) error {
	root, err := document.Load(path)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	r.engine.Load(root)
	return nil
}
