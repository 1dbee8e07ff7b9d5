package metrics

import (
	"math"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

// SyncError averages, over all samples, the standard deviation of the
// nodes' first states. Synchronised networks tend to 0.
type SyncError struct {
	sys     *network.System
	sum     float64
	samples int
}

func NewSyncError(sys *network.System) *SyncError {
	return &SyncError{sys: sys}
}

func (s *SyncError) Name() string { return "sync_error" }

func (s *SyncError) Observe(x dynamo.State, t float64) {
	vals := leading(s.sys, x)
	if len(vals) == 0 {
		return
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	variance := 0.0
	for _, v := range vals {
		variance += (v - mean) * (v - mean)
	}
	s.sum += math.Sqrt(variance / float64(len(vals)))
	s.samples++
}

func (s *SyncError) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *SyncError) Reset() {
	s.sum = 0
	s.samples = 0
}
