package metrics

import "math"

// TrackingError is the mean position error over propagated samples.
type TrackingError struct {
	name    string
	sum     float64
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{name: "tracking_error"}
}

func (m *TrackingError) Name() string { return m.name }

func (m *TrackingError) Observe(s Sample) {
	if !s.Propagated {
		return
	}
	m.sum += s.PositionError()
	m.samples++
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *TrackingError) Reset() {
	m.sum = 0
	m.samples = 0
}

// PeakError is the largest position error seen.
type PeakError struct {
	name string
	peak float64
}

func NewPeakError() *PeakError {
	return &PeakError{name: "peak_error"}
}

func (m *PeakError) Name() string { return m.name }

func (m *PeakError) Observe(s Sample) {
	m.peak = math.Max(m.peak, s.PositionError())
}

func (m *PeakError) Value() float64 { return m.peak }
func (m *PeakError) Reset()         { m.peak = 0 }
