package evolve

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

// Eigenratio scores synchronisability from the Laplacian spectrum: with
// eigenvalues sorted by descending real part it returns |λN| / |λ2|.
// Graphs whose λ2 vanishes (disconnected) get PoorScore.
type Eigenratio struct{}

func (Eigenratio) Type() PerformanceType { return TopologyOnly }

func (Eigenratio) Score(sys *network.System, _ *sim.Trajectory) float64 {
	vals, err := sys.Eigenvalues(network.Laplacian)
	if err != nil || len(vals) < 2 {
		return PoorScore
	}
	sort.Slice(vals, func(i, j int) bool { return real(vals[i]) > real(vals[j]) })
	l2 := cmplx.Abs(vals[1])
	if l2 < 1e-9 {
		return PoorScore
	}
	return cmplx.Abs(vals[len(vals)-1]) / l2
}

// Synchronization measures how far apart node states end up. For every
// ordered pair of distinct nodes it compares the first States entries of
// their slots in the final sample; pairs at least Delta apart add 100.
// The sum is normalised by N(N-1). Any NaN in the compared states scores 1.
type Synchronization struct {
	States int
	Delta  float64
}

func NewSynchronization() Synchronization {
	return Synchronization{States: 3, Delta: 0.01}
}

func (Synchronization) Type() PerformanceType { return DynamicsOnly }

func (p Synchronization) Score(sys *network.System, traj *sim.Trajectory) float64 {
	x := traj.Last()
	n := sys.CountNodes()
	if x == nil || n < 2 {
		return 0
	}
	width := p.States
	if width > sys.NodeStates() {
		width = sys.NodeStates()
	}
	nodes := sys.Nodes()
	total := 0.0
	for _, u := range nodes {
		for _, v := range nodes {
			if u == v {
				continue
			}
			iu, iv := sys.StateID(u), sys.StateID(v)
			d := 0.0
			for k := 0; k < width; k++ {
				if math.IsNaN(x[iu+k]) || math.IsNaN(x[iv+k]) {
					return 1.0
				}
				diff := x[iu+k] - x[iv+k]
				d += diff * diff
			}
			if math.Sqrt(d)-p.Delta >= 0 {
				total += 100
			}
		}
	}
	return total / float64(n*(n-1))
}
