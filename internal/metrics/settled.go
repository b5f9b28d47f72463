package metrics

// Settled is the fraction of propagated samples whose position error is
// within tolerance.
type Settled struct {
	name      string
	tolerance float64
	settled   int
	samples   int
}

func NewSettled(tolerance float64) *Settled {
	return &Settled{
		name:      "settled",
		tolerance: tolerance,
	}
}

func (s *Settled) Name() string {
	return s.name
}

func (s *Settled) Observe(smp Sample) {
	if !smp.Propagated {
		return
	}
	s.samples++
	if smp.PositionError() <= s.tolerance {
		s.settled++
	}
}

func (s *Settled) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return float64(s.settled) / float64(s.samples)
}

func (s *Settled) Reset() {
	s.settled = 0
	s.samples = 0
}
