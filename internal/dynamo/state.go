package dynamo

import "math"

// State is the flat vector of dynamical variables for a whole network.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// MaxAbs returns the infinity norm of s.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// DerivFunc writes the derivative (continuous time) or the next state
// (discrete time) of x at time t into dx. Implementations must treat x as
// read-only; x and dx never alias.
type DerivFunc func(x, dx State, t float64)

// ObserveFunc receives an accepted sample. The state is only valid for the
// duration of the call. A non-nil error stops the integration.
type ObserveFunc func(x State, t float64) error
