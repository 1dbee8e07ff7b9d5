package sim

import (
	"fmt"

	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/integrators"
	"github.com/san-kum/netevo/internal/network"
)

// Tolerances used when a config leaves them unset.
const (
	DefaultAbsTol = 1e-6
	DefaultRelTol = 1e-6
)

// OdeFixed integrates with a constant step and samples every step.
type OdeFixed struct {
	Stepper  integrators.FixedKind
	StepSize float64
}

func (o OdeFixed) Simulate(sys *network.System, tMax float64, initial dynamo.State, obs Observer, log changelog.ChangeLog) error {
	r, err := start(sys, initial, obs, log)
	if err != nil {
		return err
	}
	if !(o.StepSize > 0) {
		return fmt.Errorf("%w: step size %g", dynamo.ErrInvalidConfig, o.StepSize)
	}
	stepper, err := integrators.NewFixed(o.Stepper)
	if err != nil {
		return err
	}
	_, err = integrators.IntegrateFixed(stepper, r.deriv, initial, 0, tMax, o.StepSize, r.emit)
	return err
}

// OdeConst takes adaptive internal steps but samples only at multiples of
// OutputStep.
type OdeConst struct {
	Stepper    integrators.AdaptiveKind
	AbsTol     float64
	RelTol     float64
	OutputStep float64
}

func (o OdeConst) Simulate(sys *network.System, tMax float64, initial dynamo.State, obs Observer, log changelog.ChangeLog) error {
	r, err := start(sys, initial, obs, log)
	if err != nil {
		return err
	}
	if err := checkAdaptive(o.AbsTol, o.RelTol, o.OutputStep); err != nil {
		return err
	}
	if o.Stepper.Dense() {
		d := integrators.NewDense(o.AbsTol, o.RelTol)
		_, err = integrators.IntegrateConstDense(d, r.deriv, initial, 0, tMax, o.OutputStep, r.emit)
		return err
	}
	es, err := integrators.NewErrorStepper(o.Stepper)
	if err != nil {
		return err
	}
	c := integrators.NewControlled(es, o.AbsTol, o.RelTol)
	_, err = integrators.IntegrateConst(c, r.deriv, initial, 0, tMax, o.OutputStep, r.emit)
	return err
}

// OdeAdaptive samples after every accepted step. InitialStep is only the
// first trial step.
type OdeAdaptive struct {
	Stepper     integrators.AdaptiveKind
	AbsTol      float64
	RelTol      float64
	InitialStep float64
}

func (o OdeAdaptive) Simulate(sys *network.System, tMax float64, initial dynamo.State, obs Observer, log changelog.ChangeLog) error {
	r, err := start(sys, initial, obs, log)
	if err != nil {
		return err
	}
	if err := checkAdaptive(o.AbsTol, o.RelTol, o.InitialStep); err != nil {
		return err
	}
	if o.Stepper.Dense() {
		d := integrators.NewDense(o.AbsTol, o.RelTol)
		_, err = integrators.IntegrateAdaptiveDense(d, r.deriv, initial, 0, tMax, o.InitialStep, r.emit)
		return err
	}
	es, err := integrators.NewErrorStepper(o.Stepper)
	if err != nil {
		return err
	}
	c := integrators.NewControlled(es, o.AbsTol, o.RelTol)
	_, err = integrators.IntegrateAdaptive(c, r.deriv, initial, 0, tMax, o.InitialStep, r.emit)
	return err
}

func checkAdaptive(absTol, relTol, step float64) error {
	switch {
	case !(step > 0):
		return fmt.Errorf("%w: step %g", dynamo.ErrInvalidConfig, step)
	case absTol < 0 || relTol < 0 || !(absTol+relTol > 0):
		return fmt.Errorf("%w: tolerances abs=%g rel=%g", dynamo.ErrInvalidConfig, absTol, relTol)
	}
	return nil
}
