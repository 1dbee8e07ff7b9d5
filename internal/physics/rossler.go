package physics

import (
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

const RosslerName = "Rossler"

// Rossler is a chaotic oscillator diffusively coupled on x and z.
// Params: [a, b, c, σ].
type Rossler struct{}

func (Rossler) Name() string { return RosslerName }
func (Rossler) States() int  { return 3 }

func (Rossler) DefaultParams(*network.System, network.Node) []float64 {
	return []float64{0.165, 0.2, 10, 0.5}
}

// Derive calculates the Rossler derivatives plus coupling.
func (Rossler) Derive(sys *network.System, v network.Node, x, dx dynamo.State, _ float64) {
	p := sys.NodeData(v).Params
	a, b, c, sigma := param(p, 0, 0.165), param(p, 1, 0.2), param(p, 2, 10), param(p, 3, 0.5)
	id := sys.StateID(v)
	s := x[id : id+3]
	dx[id] = -s[1] - s[2] + sigma*diffusive(sys, v, x, 0)
	dx[id+1] = s[0] + a*s[1]
	dx[id+2] = b + (s[0]-c)*s[2] + sigma*diffusive(sys, v, x, 2)
}
