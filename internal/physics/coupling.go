package physics

import (
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

// gain is the coupling strength of a.
func gain(sys *network.System, a network.Arc, x dynamo.State) float64 {
	d := sys.ArcData(a)
	if d.Dynamic.States() > 0 {
		return x[sys.ArcStateID(a)]
	}
	return d.Weight
}

// diffusive sums gain * (x_source[k] - x_v[k]) over the arcs into v.
func diffusive(sys *network.System, v network.Node, x dynamo.State, k int) float64 {
	own := x[sys.StateID(v)+k]
	sum := 0.0
	for _, a := range sys.InArcs(v) {
		sum += gain(sys, a, x) * (x[sys.StateID(sys.Source(a))+k] - own)
	}
	return sum
}

// param returns p[i], or def when p is too short.
func param(p []float64, i int, def float64) float64 {
	if i < len(p) {
		return p[i]
	}
	return def
}
