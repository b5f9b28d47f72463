package attach

import (
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/document"
	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

// Settings is the operator-facing configuration the engine consumes.
type Settings struct {
	Enabled bool
	Drive   host.Drive
}

// Default drive parameters. config.DefaultConfig starts from these.
const (
	DefaultMaximumForce   = 10000.0
	DefaultPositionSpring = 10000.0
	DefaultPositionDamper = 1000.0
)

func DefaultSettings() Settings {
	return Settings{
		Enabled: true,
		Drive: host.Drive{
			MaximumForce:   DefaultMaximumForce,
			PositionSpring: DefaultPositionSpring,
			PositionDamper: DefaultPositionDamper,
		},
	}
}

// Engine runs the bootstrap phases and per-tick propagation for one owner.
type Engine struct {
	owner     host.Owner
	registry  *Registry
	settings  Settings
	phase     Phase
	finished  bool
	tick      int
	observers []Observer
	log       zerolog.Logger
}

func NewEngine(owner host.Owner, settings Settings, log zerolog.Logger) *Engine {
	log = log.With().Str("owner", owner.ID()).Logger()
	return &Engine{
		owner:     owner,
		registry:  NewRegistry(owner, log),
		settings:  settings,
		phase:     PhaseInit,
		observers: make([]Observer, 0),
		log:       log,
	}
}

func (e *Engine) Owner() host.Owner      { return e.owner }
func (e *Engine) Registry() *Registry    { return e.registry }
func (e *Engine) Phase() Phase           { return e.phase }
func (e *Engine) Settings() Settings     { return e.settings }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Handle applies an attach/detach event to the registry.
func (e *Engine) Handle(ev host.Event) { e.registry.Handle(ev) }

// Save writes the records to root.
func (e *Engine) Save(root *document.Node) { e.registry.Save(root) }

// Load replaces the records with pending ones from root. They bind to live
// bodies on the next tick.
func (e *Engine) Load(root *document.Node) { e.registry.Load(root) }

// Recapture forgets b's captured offset, for when b was moved on purpose.
func (e *Engine) Recapture(b host.Body) error {
	if b == nil {
		return ErrNoDependent
	}
	if err := e.registry.Recapture(b); err != nil {
		return fmt.Errorf("recapture %s: %w", b.ID(), err)
	}
	return nil
}

// SetSettings replaces the configuration. Drives are rewritten in full on
// the next STARTED tick. Disabling clears every captured offset on that
// tick.
func (e *Engine) SetSettings(s Settings) {
	e.settings = s
}

// Signal forwards a host lifecycle signal.
func (e *Engine) Signal(sig host.StartSignal) {
	switch sig {
	case host.SignalActivate:
		e.Activate()
	case host.SignalBootstrapFinished:
		e.BootstrapFinished()
	}
}

// Activate restarts the bootstrap sequence at INIT.
func (e *Engine) Activate() {
	e.phase = PhaseInit
	e.finished = false
	e.log.Debug().Stringer("phase", e.phase).Msg("activation")
}

// BootstrapFinished moves the engine to STARTED. Received during INIT, the
// transition is deferred until the INIT pass has run so the phases still
// advance in order.
func (e *Engine) BootstrapFinished() {
	switch e.phase {
	case PhaseInit:
		e.finished = true
	case PhaseStarting:
		e.advance(PhaseStarted)
	}
}

func (e *Engine) advance(p Phase) {
	if p <= e.phase {
		return
	}
	e.log.Debug().Stringer("from", e.phase).Stringer("to", p).Msg("phase")
	e.phase = p
}

// Tick reconciles the registry with the owner's dependents, then updates
// every record. The returned snapshots are also passed to observers.
func (e *Engine) Tick() []Snapshot {
	e.registry.Sync(e.owner.Attachments())

	snaps := make([]Snapshot, 0, e.registry.Len())
	for i, rec := range e.registry.records {
		snap := e.update(rec)
		snap.Index = i
		snap.Tick = e.tick
		snaps = append(snaps, snap)
	}

	if e.phase == PhaseInit {
		e.advance(PhaseStarting)
		if e.finished {
			e.advance(PhaseStarted)
		}
	}
	e.tick++

	for _, o := range e.observers {
		o.OnTick(snaps)
	}
	return snaps
}

func (e *Engine) update(rec *Record) (snap Snapshot) {
	snap = Snapshot{
		Owner: e.owner.ID(),
		Kind:  rec.Kind,
		Phase: e.phase,
	}
	defer func() {
		snap.Kind = rec.Kind
		snap.Anchor = rec.anchor
		snap.Offset = copyPose(rec.Offset)
		snap.Rest = copyPose(rec.Rest)
	}()

	dep, hasDep := rec.Dependent()
	if hasDep {
		snap.Dependent = dep.ID()
		if e.isStructuralParent(dep) {
			snap.Outcome = OutcomeParentLink
			return snap
		}
	}

	if out, ok := e.resolveFrame(rec, dep, hasDep); !ok {
		snap.Outcome = out
		return snap
	}

	frame, ok := Resolve(rec.Frame(), e.owner)
	if !ok {
		snap.Outcome = OutcomeChainBroken
		return snap
	}
	snap.FrameValid = true
	snap.Frame = frame
	if rec.node != nil && rec.Kind == host.KindNode {
		rec.node.SetPose(frame.Position, frame.Orientation)
	}

	if !e.settings.Enabled || !hasDep {
		rec.Clear()
		snap.Outcome = OutcomeCleared
		return snap
	}

	if rec.Offset == nil {
		if err := rec.Bind(frame, LocalPose(dep)); err != nil {
			e.log.Error().Err(err).Str("body", dep.ID()).Msg("offset capture")
		} else {
			e.log.Debug().Str("body", dep.ID()).Stringer("offset", *rec.Offset).Msg("recording offset")
		}
	}
	if rec.Rest == nil {
		rest := LocalPose(dep)
		rec.Rest = &rest
	}

	if e.phase != PhaseStarted {
		snap.Outcome = OutcomeHeld
		return snap
	}

	target := Target(frame, *rec.Offset)
	snap.Target = target

	if dep.Transform().Parent() != nil {
		dep.Transform().SetLocalPose(target.Position, target.Rotation)
		snap.Outcome = OutcomeKinematic
		return snap
	}

	j := dep.Joint()
	if j == nil {
		snap.Outcome = OutcomeNoJoint
		return snap
	}
	snap.JointAnchor, snap.ConnectedAnchor = e.drive(j, rec, frame, target)
	snap.Outcome = OutcomeDriven
	return snap
}

// resolveFrame makes sure the record knows which transform its frame is
// read from. Node records that have no node on the owner become surface
// records and pick a geometry on a later tick.
func (e *Engine) resolveFrame(rec *Record, dep host.Body, hasDep bool) (Outcome, bool) {
	if rec.inert {
		return OutcomeInert, false
	}
	if rec.resolved() {
		return 0, true
	}
	if !hasDep {
		return OutcomeUnresolved, false
	}

	switch rec.Kind {
	case host.KindSurface:
		g, dist, ok := SelectNearest(e.owner.Geometries(), dep.ContactPoint())
		if !ok {
			return OutcomeUnresolved, false
		}
		rec.bindGeometry(g)
		e.log.Debug().
			Str("body", dep.ID()).
			Str("geometry", g.Name()).
			Float64("distance", dist).
			Msg("surface anchor selected")
	default:
		n := host.NodeFor(e.owner, dep)
		if n == nil {
			rec.reclassify()
			e.log.Info().Str("body", dep.ID()).Msg("no attach node, treating as surface attachment")
			return OutcomeUnresolved, false
		}
		rec.bindNode(n)
	}

	if rec.inert {
		e.log.Debug().Str("body", dep.ID()).Str("anchor", rec.anchor).Msg("frame has no transform")
		return OutcomeInert, false
	}
	return 0, true
}

func (e *Engine) isStructuralParent(dep host.Body) bool {
	parent := e.owner.Parent()
	return parent != nil && dep == parent
}

// drive frees all six axes, rewrites every drive channel and points the
// joint at target. The anchor is the frame origin in the dependent's local
// space and the connected anchor is the frame origin in owner space, so the
// two coincide exactly when the dependent sits at target.
func (e *Engine) drive(j host.Joint, rec *Record, frame, target geom.Pose) (anchor, connected r3.Vec) {
	for _, ax := range host.AllAxes {
		j.SetMotion(ax, host.MotionFree)
	}
	for _, ch := range host.AllDrives {
		j.SetDrive(ch, e.settings.Drive)
	}

	j.SetTargetRotation(JointTargetRotation(target, *rec.Rest))
	j.SetTargetPosition(r3.Vec{})

	anchor = JointAnchor(*rec.Offset)
	connected = frame.Position
	j.SetAnchor(anchor)
	j.SetConnectedAnchor(connected)
	return anchor, connected
}
