package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

// LyapunovExponent estimates the largest Lyapunov exponent of sys by
// running it from x0 and from x0 with its first entry shifted by
// perturbation:
//
//	lambda ~ ln(|dx(tMax)| / |dx(0)|) / tMax
//
// x0 is left untouched.
func LyapunovExponent(sys *network.System, simulator sim.Simulator, x0 dynamo.State, tMax, perturbation float64) (float64, error) {
	if len(x0) == 0 {
		return 0, nil
	}
	if tMax <= 0 || perturbation <= 0 {
		return 0, fmt.Errorf("%w: need tMax > 0 and perturbation > 0", dynamo.ErrInvalidConfig)
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation

	if err := simulator.Simulate(sys, tMax, x, nil, nil); err != nil {
		return 0, err
	}
	if err := simulator.Simulate(sys, tMax, xp, nil, nil); err != nil {
		return 0, err
	}

	for i := range xp {
		xp[i] -= x[i]
	}
	d := xp.Norm()
	if d == 0 {
		return math.Inf(-1), nil
	}
	return math.Log(d/perturbation) / tMax, nil
}
