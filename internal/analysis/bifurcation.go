package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

// BifurcationPoint holds the distinct values one state settled on for a
// single parameter value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// Bifurcation runs sys from x0 once per parameter value. set is called with
// the value before each run. Samples of state idx taken after the transient
// are kept once per 1e-3 bucket, in the order they appear. x0 is left
// untouched.
func Bifurcation(sys *network.System, simulator sim.Simulator, x0 dynamo.State, idx int,
	params []float64, set func(p float64), transient, record float64) ([]BifurcationPoint, error) {
	if idx < 0 || idx >= len(x0) {
		return nil, fmt.Errorf("analysis: state %d out of range (have %d)", idx, len(x0))
	}
	if transient < 0 || record <= 0 {
		return nil, fmt.Errorf("%w: need transient >= 0 and record > 0", dynamo.ErrInvalidConfig)
	}

	out := make([]BifurcationPoint, 0, len(params))
	for _, p := range params {
		set(p)
		seen := map[int64]bool{}
		point := BifurcationPoint{Param: p}
		obs := sim.ObserverFunc(func(x dynamo.State, t float64) {
			if t < transient {
				return
			}
			v := x[idx]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return
			}
			key := int64(math.Round(v * 1000))
			if seen[key] {
				return
			}
			seen[key] = true
			point.Values = append(point.Values, v)
		})
		if err := simulator.Simulate(sys, transient+record, x0.Clone(), obs, nil); err != nil {
			return out, fmt.Errorf("analysis: parameter %g: %w", p, err)
		}
		out = append(out, point)
	}
	return out, nil
}

// BifurcationScatter flattens data to (parameter, value) points for Scatter.
func BifurcationScatter(data []BifurcationPoint) []Point {
	var out []Point
	for _, b := range data {
		for _, v := range b.Values {
			out = append(out, Point{X: b.Param, Y: v})
		}
	}
	return out
}
