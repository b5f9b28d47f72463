package attach

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

// Outcome says what a tick did with a record.
type Outcome int

const (
	OutcomeParentLink Outcome = iota
	OutcomeUnresolved
	OutcomeInert
	OutcomeChainBroken
	OutcomeCleared
	OutcomeHeld
	OutcomeKinematic
	OutcomeNoJoint
	OutcomeDriven
)

var outcomeNames = map[Outcome]string{
	OutcomeParentLink:  "parent-link",
	OutcomeUnresolved:  "unresolved",
	OutcomeInert:       "inert",
	OutcomeChainBroken: "chain-broken",
	OutcomeCleared:     "cleared",
	OutcomeHeld:        "held",
	OutcomeKinematic:   "kinematic",
	OutcomeNoJoint:     "no-joint",
	OutcomeDriven:      "driven",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Propagated reports whether the tick moved the dependent.
func (o Outcome) Propagated() bool {
	return o == OutcomeKinematic || o == OutcomeDriven
}

// Snapshot is a read-only copy of one record's state after a tick.
type Snapshot struct {
	Tick      int
	Owner     string
	Dependent string
	Index     int
	Kind      host.Kind
	Anchor    string
	Phase     Phase
	Outcome   Outcome

	FrameValid bool
	Frame      geom.Pose
	Target     geom.Pose
	Offset     *geom.Pose
	Rest       *geom.Pose

	JointAnchor     r3.Vec
	ConnectedAnchor r3.Vec
}

// Observer receives snapshots after every tick. Observers must not retain
// or mutate engine state.
type Observer interface {
	OnTick(snaps []Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(snaps []Snapshot)

func (f ObserverFunc) OnTick(snaps []Snapshot) { f(snaps) }

func copyPose(p *geom.Pose) *geom.Pose {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
