// Package metrics summarises simulated trajectories of a network. Each
// Metric observes samples as they are produced and reports one number.
package metrics

import (
	"math"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Defaults returns the metrics reported for every simulation of sys.
func Defaults(sys *network.System) []Metric {
	return []Metric{
		NewStability(1e6),
		NewOrderParameter(sys),
		NewSyncError(sys),
	}
}

// Observer forwards every sample to base, when set, and then to each metric.
func Observer(base sim.Observer, ms ...Metric) sim.Observer {
	return sim.ObserverFunc(func(x dynamo.State, t float64) {
		if base != nil {
			base.Observe(x, t)
		}
		for _, m := range ms {
			m.Observe(x, t)
		}
	})
}

// Values collects the metrics by name. Non-finite values are left out.
func Values(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		v := m.Value()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[m.Name()] = v
	}
	return out
}

// leading returns the first state of every node, skipping nodes whose
// slot lies outside x.
func leading(sys *network.System, x dynamo.State) []float64 {
	if sys.NodeStates() == 0 {
		return nil
	}
	nodes := sys.Nodes()
	out := make([]float64, 0, len(nodes))
	for _, v := range nodes {
		if i := sys.StateID(v); i < len(x) {
			out = append(out, x[i])
		}
	}
	return out
}
