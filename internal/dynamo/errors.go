package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector holding NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates an initial state whose length differs
	// from the total state count of the network.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrStepTooSmall indicates the adaptive step control kept rejecting steps.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrInvalidConfig indicates a non-positive step size, output step or tolerance.
	ErrInvalidConfig = errors.New("dynamo: invalid simulation configuration")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
