package integrators

import (
	"math"

	"github.com/san-kum/netevo/internal/dynamo"
)

// MaxRejections bounds the consecutive rejected tries of one step.
const MaxRejections = 500

const (
	safety    = 0.9
	minShrink = 0.2
	maxGrow   = 5.0
)

// Controlled wraps an ErrorStepper with absolute/relative error control.
type Controlled struct {
	stepper ErrorStepper
	absTol  float64
	relTol  float64

	dxdt dynamo.State
	out  dynamo.State
	xerr dynamo.State
}

func NewControlled(s ErrorStepper, absTol, relTol float64) *Controlled {
	return &Controlled{stepper: s, absTol: absTol, relTol: relTol}
}

func (c *Controlled) ensureScratch(n int) {
	if len(c.dxdt) != n {
		c.dxdt = make(dynamo.State, n)
		c.out = make(dynamo.State, n)
		c.xerr = make(dynamo.State, n)
	}
}

// TryStep attempts a step of size dt from (x, t). On success x is advanced
// in place and the new time plus a suggested next step are returned with
// ok set. On failure x is untouched and the reduced step is returned.
func (c *Controlled) TryStep(f dynamo.DerivFunc, x dynamo.State, t, dt float64) (tNew, dtNew float64, ok bool) {
	c.ensureScratch(len(x))
	f(x, c.dxdt, t)
	c.stepper.StepWithError(f, x, c.dxdt, t, dt, c.out, c.xerr)

	errMax := c.errorNorm(x, dt)
	if math.IsNaN(errMax) || errMax > 1 {
		shrink := minShrink
		if !math.IsNaN(errMax) {
			shrink = math.Max(safety*math.Pow(errMax, -1.0/float64(c.stepper.ErrorOrder()-1)), minShrink)
		}
		return t, dt * shrink, false
	}

	copy(x, c.out)
	dtNew = dt
	if errMax < 0.5 {
		errMax = math.Max(math.Pow(5.0, -float64(c.stepper.Order())), errMax)
		dtNew = dt * math.Min(safety*math.Pow(errMax, -1.0/float64(c.stepper.Order())), maxGrow)
	}
	return t + dt, dtNew, true
}

// diverged reports whether the last tried step started from a state whose
// derivative is not finite. No step size can fix that.
func (c *Controlled) diverged() bool {
	return !c.dxdt.IsValid()
}

func (c *Controlled) errorNorm(x dynamo.State, dt float64) float64 {
	errMax := 0.0
	for i := range x {
		sc := c.absTol + c.relTol*(math.Abs(x[i])+math.Abs(dt)*math.Abs(c.dxdt[i]))
		e := math.Abs(c.xerr[i]) / sc
		if math.IsNaN(e) {
			return e
		}
		if e > errMax {
			errMax = e
		}
	}
	return errMax
}
