// Package integrators holds the numerical steppers used to advance network
// state: fixed-step Runge-Kutta and Adams-Bashforth-Moulton schemes,
// embedded error steppers with step size control, and Dormand-Prince dense
// output.
package integrators

import "github.com/san-kum/netevo/internal/dynamo"

// FixedStepper advances a state by a constant step. Step updates x in place.
type FixedStepper interface {
	Step(f dynamo.DerivFunc, x dynamo.State, t, dt float64)
	// Reset drops any history kept between steps.
	Reset()
}

// ErrorStepper performs one step of an embedded pair and reports the local
// error estimate. dxdt must hold f(x, t) on entry.
type ErrorStepper interface {
	StepWithError(f dynamo.DerivFunc, x, dxdt dynamo.State, t, dt float64, out, xerr dynamo.State)
	Order() int
	ErrorOrder() int
}

func resize(s dynamo.State, n int) dynamo.State {
	if len(s) != n {
		return make(dynamo.State, n)
	}
	return s
}
