package physics

import (
	"math"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

const AdaptiveArcName = "AdaptiveArc"

// AdaptiveArc is a one-state coupling gain with dg/dt = α |x_source - x_target|,
// measured on the first node state. Params: [α].
type AdaptiveArc struct{}

func (AdaptiveArc) Name() string { return AdaptiveArcName }
func (AdaptiveArc) States() int  { return 1 }

func (AdaptiveArc) DefaultParams(*network.System, network.Arc) []float64 {
	return []float64{0.1}
}

func (AdaptiveArc) Derive(sys *network.System, a network.Arc, x, dx dynamo.State, _ float64) {
	alpha := param(sys.ArcData(a).Params, 0, 0.1)
	diff := x[sys.StateID(sys.Source(a))] - x[sys.StateID(sys.Target(a))]
	dx[sys.ArcStateID(a)] = alpha * math.Abs(diff)
}
