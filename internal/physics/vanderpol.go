package physics

import (
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

const VanDerPolName = "VanDerPol"

// VanDerPol implements the Van der Pol oscillator.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx/dt = y + k Σ g (xj - x)
//	dy/dt = μ(1 - x²)y - x
//
// Params: [μ, k].
type VanDerPol struct{}

func (VanDerPol) Name() string { return VanDerPolName }
func (VanDerPol) States() int  { return 2 }

func (VanDerPol) DefaultParams(*network.System, network.Node) []float64 {
	return []float64{
		1.0, // classic value for a limit cycle
		0.1,
	}
}

func (VanDerPol) Derive(sys *network.System, v network.Node, x, dx dynamo.State, _ float64) {
	p := sys.NodeData(v).Params
	mu, k := param(p, 0, 1.0), param(p, 1, 0.1)
	id := sys.StateID(v)
	px, py := x[id], x[id+1]
	dx[id] = py + k*diffusive(sys, v, x, 0)
	dx[id+1] = mu*(1-px*px)*py - px
}
