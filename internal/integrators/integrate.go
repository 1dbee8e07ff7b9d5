package integrators

import (
	"math"

	"github.com/san-kum/netevo/internal/dynamo"
)

func tooSmall(step int, t float64) error {
	return &dynamo.SimulationError{Step: step, Time: t, Wrapped: dynamo.ErrStepTooSmall}
}

// rejected turns a refused step into an error once retrying is pointless.
func rejected(c *Controlled, fails, step int, t float64) error {
	if c.diverged() {
		return &dynamo.SimulationError{Step: step, Time: t, Wrapped: dynamo.ErrInvalidState}
	}
	if fails >= MaxRejections {
		return tooSmall(step, t)
	}
	return nil
}

// timeEps is the slack allowed when comparing accumulated times against an
// end point.
func timeEps(dt float64) float64 {
	return 1e-9 * math.Abs(dt)
}

// IntegrateFixed advances x from t0 with constant steps dt while t+dt <= t1
// and observes t0 and every step end. It returns the number of steps taken.
func IntegrateFixed(s FixedStepper, f dynamo.DerivFunc, x dynamo.State, t0, t1, dt float64, obs dynamo.ObserveFunc) (int, error) {
	s.Reset()
	if err := obs(x, t0); err != nil {
		return 0, err
	}
	eps := timeEps(dt)
	steps := 0
	t := t0
	for t+dt <= t1+eps {
		s.Step(f, x, t, dt)
		steps++
		t = t0 + float64(steps)*dt
		if err := obs(x, t); err != nil {
			return steps, err
		}
	}
	return steps, nil
}

// IntegrateConst observes x at t0 + k*dtOut for every such time <= t1,
// taking as many controlled internal steps as needed between outputs.
// Internal steps are truncated so they land on every output time.
func IntegrateConst(c *Controlled, f dynamo.DerivFunc, x dynamo.State, t0, t1, dtOut float64, obs dynamo.ObserveFunc) (int, error) {
	if err := obs(x, t0); err != nil {
		return 0, err
	}
	eps := timeEps(dtOut)
	dt := dtOut
	t := t0
	steps := 0
	for k := 1; ; k++ {
		target := t0 + float64(k)*dtOut
		if target > t1+eps {
			return steps, nil
		}
		fails := 0
		for t < target-eps {
			step := dt
			truncated := false
			if t+step > target {
				step = target - t
				truncated = true
			}
			_, dtNew, ok := c.TryStep(f, x, t, step)
			if !ok {
				fails++
				if err := rejected(c, fails, steps, t); err != nil {
					return steps, err
				}
				dt = dtNew
				continue
			}
			fails = 0
			steps++
			t += step
			if !truncated || dtNew > dt {
				dt = dtNew
			}
		}
		t = target
		if err := obs(x, t); err != nil {
			return steps, err
		}
	}
}

// IntegrateAdaptive observes t0 and the end of every accepted step. The last
// step is shortened so the run finishes exactly at t1.
func IntegrateAdaptive(c *Controlled, f dynamo.DerivFunc, x dynamo.State, t0, t1, dt float64, obs dynamo.ObserveFunc) (int, error) {
	if err := obs(x, t0); err != nil {
		return 0, err
	}
	eps := timeEps(dt)
	t := t0
	steps := 0
	fails := 0
	for t < t1-eps {
		step := dt
		truncated := false
		if t+step > t1 {
			step = t1 - t
			truncated = true
		}
		_, dtNew, ok := c.TryStep(f, x, t, step)
		if !ok {
			fails++
			if err := rejected(c, fails, steps, t); err != nil {
				return steps, err
			}
			dt = dtNew
			continue
		}
		fails = 0
		steps++
		if truncated {
			t = t1
		} else {
			t += step
		}
		if !truncated || dtNew > dt {
			dt = dtNew
		}
		if err := obs(x, t); err != nil {
			return steps, err
		}
	}
	return steps, nil
}

// IntegrateConstDense observes interpolated states at t0 + k*dtOut <= t1.
// The stepper may overshoot t1; on return x holds the last observed state.
func IntegrateConstDense(d *Dense, f dynamo.DerivFunc, x dynamo.State, t0, t1, dtOut float64, obs dynamo.ObserveFunc) (int, error) {
	d.Initialize(x, t0, dtOut)
	if err := obs(x, t0); err != nil {
		return 0, err
	}
	eps := timeEps(dtOut)
	steps := 0
	for k := 1; ; k++ {
		target := t0 + float64(k)*dtOut
		if target > t1+eps {
			return steps, nil
		}
		for d.CurrentTime() < target-eps {
			if err := d.DoStep(f); err != nil {
				return steps, err
			}
			steps++
		}
		d.CalcState(target, x)
		if err := obs(x, target); err != nil {
			return steps, err
		}
	}
}

// IntegrateAdaptiveDense observes t0 and every step end of the dense
// stepper, shortening the final step to finish at t1.
func IntegrateAdaptiveDense(d *Dense, f dynamo.DerivFunc, x dynamo.State, t0, t1, dt float64, obs dynamo.ObserveFunc) (int, error) {
	d.Initialize(x, t0, dt)
	if err := obs(x, t0); err != nil {
		return 0, err
	}
	eps := timeEps(dt)
	steps := 0
	for d.CurrentTime() < t1-eps {
		if d.CurrentTime()+d.CurrentStep() > t1 {
			d.Initialize(d.CurrentState(), d.CurrentTime(), t1-d.CurrentTime())
		}
		if err := d.DoStep(f); err != nil {
			return steps, err
		}
		steps++
		if err := obs(d.CurrentState(), d.CurrentTime()); err != nil {
			copy(x, d.CurrentState())
			return steps, err
		}
	}
	copy(x, d.CurrentState())
	return steps, nil
}
