package physics

import (
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

const LorenzName = "Lorenz"

// Lorenz couples every state diffusively. With AdaptiveArc arcs the gains
// grow until the network synchronises. Params: [σ, ρ, β].
type Lorenz struct{}

func (Lorenz) Name() string { return LorenzName }
func (Lorenz) States() int  { return 3 }

func (Lorenz) DefaultParams(*network.System, network.Node) []float64 {
	return []float64{10, 28, 8.0 / 3.0}
}

func (Lorenz) Derive(sys *network.System, v network.Node, x, dx dynamo.State, _ float64) {
	p := sys.NodeData(v).Params
	sigma, rho, beta := param(p, 0, 10), param(p, 1, 28), param(p, 2, 8.0/3.0)
	id := sys.StateID(v)
	s := x[id : id+3]
	dx[id] = sigma*(s[1]-s[0]) + diffusive(sys, v, x, 0)
	dx[id+1] = s[0]*(rho-s[2]) - s[1] + diffusive(sys, v, x, 1)
	dx[id+2] = s[0]*s[1] - beta*s[2] + diffusive(sys, v, x, 2)
}
