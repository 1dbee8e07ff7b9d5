package physics

import (
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

const ZeroName = "Zero"

// Zero holds three states constant.
type Zero struct{}

func (Zero) Name() string                                          { return ZeroName }
func (Zero) States() int                                           { return 3 }
func (Zero) DefaultParams(*network.System, network.Node) []float64 { return nil }

func (Zero) Derive(sys *network.System, v network.Node, _, dx dynamo.State, _ float64) {
	id := sys.StateID(v)
	for k := id; k < id+3; k++ {
		dx[k] = 0
	}
}
