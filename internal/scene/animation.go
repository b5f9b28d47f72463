package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
)

type TrackMode int

const (
	TrackOnce TrackMode = iota
	TrackPingPong
	TrackLoop
)

func (m TrackMode) String() string {
	switch m {
	case TrackPingPong:
		return "pingpong"
	case TrackLoop:
		return "loop"
	default:
		return "once"
	}
}

func ParseTrackMode(s string) (TrackMode, bool) {
	switch s {
	case "", "once":
		return TrackOnce, true
	case "pingpong":
		return TrackPingPong, true
	case "loop":
		return TrackLoop, true
	default:
		return TrackOnce, false
	}
}

// Track animates one transform between two values along an axis. Rotation
// tracks interpolate an angle in degrees about Axis; translation tracks move
// the transform along Axis by a distance.
type Track struct {
	Target    *Transform
	Axis      r3.Vec
	From, To  float64
	Start     float64
	Duration  float64
	Mode      TrackMode
	Translate bool

	base geom.Pose
}

// Bind records the target's current pose as the base the track animates
// relative to.
func (tr *Track) Bind() {
	tr.base = tr.Target.LocalPose()
}

// Progress returns the interpolation parameter in [0, 1] at time t.
func (tr *Track) Progress(t float64) float64 {
	if t <= tr.Start {
		return 0
	}
	if tr.Duration <= 0 {
		return 1
	}
	phase := (t - tr.Start) / tr.Duration
	switch tr.Mode {
	case TrackLoop:
		return phase - math.Floor(phase)
	case TrackPingPong:
		p := math.Mod(phase, 2)
		if p > 1 {
			return 2 - p
		}
		return p
	default:
		return math.Min(phase, 1)
	}
}

// Moving reports whether the track is animating at time t.
func (tr *Track) Moving(t float64) bool {
	if t < tr.Start || tr.From == tr.To {
		return false
	}
	if tr.Mode != TrackOnce {
		return true
	}
	return t < tr.Start+tr.Duration
}

func (tr *Track) Value(t float64) float64 {
	return tr.From + (tr.To-tr.From)*tr.Progress(t)
}

// Apply writes the track's pose at time t to its target.
func (tr *Track) Apply(t float64) {
	v := tr.Value(t)
	if tr.Translate {
		pos := r3.Add(tr.base.Position, r3.Scale(v, r3.Unit(tr.Axis)))
		tr.Target.SetLocalPose(pos, tr.base.Rotation)
		return
	}
	rot := geom.Mul(tr.base.Rotation, geom.AxisAngle(tr.Axis, v*math.Pi/180))
	tr.Target.SetLocalPose(tr.base.Position, rot)
}
