package integrators

import "github.com/san-kum/netevo/internal/dynamo"

const abmSteps = 5

var (
	abCoef = [abmSteps]float64{1901.0 / 720.0, -2774.0 / 720.0, 2616.0 / 720.0, -1274.0 / 720.0, 251.0 / 720.0}
	amCoef = [abmSteps]float64{251.0 / 720.0, 646.0 / 720.0, -264.0 / 720.0, 106.0 / 720.0, -19.0 / 720.0}
)

// ABM5 is the five step Adams-Bashforth predictor with Adams-Moulton
// corrector. The first four steps after a Reset are taken with RK4 to fill
// the derivative history, so dt must stay constant between resets.
type ABM5 struct {
	hist  [abmSteps]dynamo.State // hist[0] is the newest derivative
	count int
	rk    *RK4
	pred  dynamo.State
	dpred dynamo.State
}

func NewABM5() *ABM5 {
	return &ABM5{rk: NewRK4()}
}

func (a *ABM5) Reset() {
	a.count = 0
}

func (a *ABM5) Step(f dynamo.DerivFunc, x dynamo.State, t, dt float64) {
	n := len(x)
	if len(a.pred) != n {
		for i := range a.hist {
			a.hist[i] = make(dynamo.State, n)
		}
		a.pred = make(dynamo.State, n)
		a.dpred = make(dynamo.State, n)
		a.count = 0
	}

	// rotate so the oldest buffer becomes the newest slot
	last := a.hist[abmSteps-1]
	copy(a.hist[1:], a.hist[:abmSteps-1])
	a.hist[0] = last
	f(x, a.hist[0], t)
	if a.count < abmSteps {
		a.count++
	}

	if a.count < abmSteps {
		a.rk.Step(f, x, t, dt)
		return
	}

	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < abmSteps; j++ {
			s += abCoef[j] * a.hist[j][i]
		}
		a.pred[i] = x[i] + dt*s
	}
	f(a.pred, a.dpred, t+dt)

	for i := 0; i < n; i++ {
		s := amCoef[0] * a.dpred[i]
		for j := 1; j < abmSteps; j++ {
			s += amCoef[j] * a.hist[j-1][i]
		}
		x[i] += dt * s
	}
}
