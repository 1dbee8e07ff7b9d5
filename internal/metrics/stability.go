package metrics

import "github.com/san-kum/netevo/internal/dynamo"

// Stability is the share of samples that stay bounded: every entry finite
// and no larger than Bound in magnitude. Runs that blow up or go NaN score
// below 1.
type Stability struct {
	Bound   float64
	bounded int
	total   int
}

func NewStability(bound float64) *Stability {
	return &Stability{Bound: bound}
}

func (*Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, _ float64) {
	s.total++
	if x.IsValid() && x.MaxAbs() <= s.Bound {
		s.bounded++
	}
}

func (s *Stability) Value() float64 {
	if s.total == 0 {
		return 1
	}
	return float64(s.bounded) / float64(s.total)
}

func (s *Stability) Reset() { s.bounded, s.total = 0, 0 }
