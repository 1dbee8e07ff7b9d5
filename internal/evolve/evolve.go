// Package evolve searches the space of network topologies with simulated
// annealing. A Performance scores a graph (lower is better), a Mutator edits
// a cloned graph in place, and the Annealer decides which clones replace
// the incumbent.
package evolve

import (
	"math/rand"

	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

// PoorScore is reported when a dynamics-based performance has no initial
// states to simulate.
const PoorScore = 1e11

type PerformanceType int

const (
	TopologyOnly PerformanceType = iota
	DynamicsOnly
	TopologyAndDynamics
)

func (p PerformanceType) String() string {
	switch p {
	case TopologyOnly:
		return "topology"
	case DynamicsOnly:
		return "dynamics"
	case TopologyAndDynamics:
		return "topology+dynamics"
	}
	return "unknown"
}

// NeedsDynamics reports whether scoring requires a simulated trajectory.
func (p PerformanceType) NeedsDynamics() bool { return p != TopologyOnly }

// Performance scores a graph. traj is nil for TopologyOnly performances and
// never nil otherwise.
type Performance interface {
	Type() PerformanceType
	Score(sys *network.System, traj *sim.Trajectory) float64
}

// Mutator edits sys in place and reports each edit to log.
type Mutator interface {
	Mutate(sys *network.System, log changelog.ChangeLog)
}

type MutatorFunc func(sys *network.System, log changelog.ChangeLog)

func (f MutatorFunc) Mutate(sys *network.System, log changelog.ChangeLog) { f(sys, log) }

// InitialStates supplies the starting vectors used to score dynamics. Each
// vector must have sys.TotalStates() entries and is consumed by the run.
type InitialStates interface {
	States(sys *network.System) []dynamo.State
}

type InitialStatesFunc func(sys *network.System) []dynamo.State

func (f InitialStatesFunc) States(sys *network.System) []dynamo.State { return f(sys) }

// RandomInitialStates draws Count vectors uniformly from [0, Scale).
// Without a generator the system's own is used.
type RandomInitialStates struct {
	Count int
	Scale float64
	Rand  *rand.Rand
}

func (r RandomInitialStates) States(sys *network.System) []dynamo.State {
	rng := r.Rand
	if rng == nil {
		rng = sys.Rand()
	}
	out := make([]dynamo.State, r.Count)
	n := sys.TotalStates()
	for i := range out {
		x := make(dynamo.State, n)
		for j := range x {
			x[j] = rng.Float64() * r.Scale
		}
		out[i] = x
	}
	return out
}

// Observer sees the incumbent after every main trial and once, with
// iteration 0, before the search starts.
type Observer interface {
	Observe(sys *network.System, score float64, iteration int)
}

type ObserverFunc func(sys *network.System, score float64, iteration int)

func (f ObserverFunc) Observe(sys *network.System, score float64, iteration int) {
	f(sys, score, iteration)
}
