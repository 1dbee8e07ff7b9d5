package physics

import (
	"math"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

const (
	KuramotoMapName        = "KuramotoMap"
	KuramotoOscillatorName = "KuramotoOscillator"
)

// KuramotoMap advances a phase by its natural frequency plus sinusoidal
// coupling, wrapped to [0, 2π).
//
//	θ' = mod(θ + ω + K Σ g sin(θj - θ), 2π)
//
// Params: [ω, K].
type KuramotoMap struct{}

func (KuramotoMap) Name() string { return KuramotoMapName }
func (KuramotoMap) States() int  { return 1 }

func (KuramotoMap) DefaultParams(*network.System, network.Node) []float64 {
	return []float64{0.2, 0.1}
}

func (KuramotoMap) Derive(sys *network.System, v network.Node, x, dx dynamo.State, _ float64) {
	p := sys.NodeData(v).Params
	id := sys.StateID(v)
	next := math.Mod(x[id]+param(p, 0, 0.2)+param(p, 1, 0.1)*phaseCoupling(sys, v, x), 2*math.Pi)
	if next < 0 {
		next += 2 * math.Pi
	}
	dx[id] = next
}

// KuramotoOscillator is the continuous form, dθ/dt = ω + K Σ g sin(θj - θ).
// Params: [ω, K].
type KuramotoOscillator struct{}

func (KuramotoOscillator) Name() string { return KuramotoOscillatorName }
func (KuramotoOscillator) States() int  { return 1 }

func (KuramotoOscillator) DefaultParams(*network.System, network.Node) []float64 {
	return []float64{1.0, 0.5}
}

func (KuramotoOscillator) Derive(sys *network.System, v network.Node, x, dx dynamo.State, _ float64) {
	p := sys.NodeData(v).Params
	dx[sys.StateID(v)] = param(p, 0, 1.0) + param(p, 1, 0.5)*phaseCoupling(sys, v, x)
}

func phaseCoupling(sys *network.System, v network.Node, x dynamo.State) float64 {
	own := x[sys.StateID(v)]
	sum := 0.0
	for _, a := range sys.InArcs(v) {
		sum += gain(sys, a, x) * math.Sin(x[sys.StateID(sys.Source(a))]-own)
	}
	return sum
}
