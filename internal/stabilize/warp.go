package stabilize

import "github.com/rs/zerolog"

// WarpWatcher calls snapshot when the time-warp rate leaves 1x, since the
// host resets bodies to their original positions on warp.
type WarpWatcher struct {
	rate     float64
	snapshot func()
	log      zerolog.Logger
}

func NewWarpWatcher(snapshot func(), log zerolog.Logger) *WarpWatcher {
	return &WarpWatcher{rate: 1, snapshot: snapshot, log: log}
}

// Observe records the current rate and reports whether a snapshot was taken.
func (w *WarpWatcher) Observe(rate float64) bool {
	if rate == w.rate {
		return false
	}
	prev := w.rate
	w.rate = rate
	if prev != 1 || rate == 1 {
		return false
	}
	w.log.Info().Float64("rate", rate).Msg("time warp started")
	if w.snapshot != nil {
		w.snapshot()
	}
	return true
}
