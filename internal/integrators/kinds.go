package integrators

import (
	"fmt"
	"strings"

	"github.com/san-kum/netevo/internal/dynamo"
)

// FixedKind selects a constant step scheme.
type FixedKind int

const (
	RK4Kind FixedKind = iota
	AdamsBashforthMoulton
	EulerKind
)

func (k FixedKind) String() string {
	switch k {
	case RK4Kind:
		return "rk4"
	case AdamsBashforthMoulton:
		return "abm"
	case EulerKind:
		return "euler"
	}
	return fmt.Sprintf("FixedKind(%d)", int(k))
}

func ParseFixedKind(s string) (FixedKind, error) {
	switch strings.ToLower(s) {
	case "rk4", "":
		return RK4Kind, nil
	case "abm", "abm5", "adams_bashforth_moulton":
		return AdamsBashforthMoulton, nil
	case "euler":
		return EulerKind, nil
	}
	return 0, fmt.Errorf("%w: unknown fixed stepper %q", dynamo.ErrInvalidConfig, s)
}

// NewFixed returns a fresh stepper of the given kind.
func NewFixed(k FixedKind) (FixedStepper, error) {
	switch k {
	case RK4Kind:
		return NewRK4(), nil
	case AdamsBashforthMoulton:
		return NewABM5(), nil
	case EulerKind:
		return NewEuler(), nil
	}
	return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, k)
}

// AdaptiveKind selects an error controlled scheme.
type AdaptiveKind int

const (
	CashKarp54Kind AdaptiveKind = iota
	Dopri5Kind
	Dopri5DenseKind
)

func (k AdaptiveKind) String() string {
	switch k {
	case CashKarp54Kind:
		return "cash_karp54"
	case Dopri5Kind:
		return "dopri5"
	case Dopri5DenseKind:
		return "dopri5_dense"
	}
	return fmt.Sprintf("AdaptiveKind(%d)", int(k))
}

func ParseAdaptiveKind(s string) (AdaptiveKind, error) {
	switch strings.ToLower(s) {
	case "cash_karp54", "cashkarp", "ck54":
		return CashKarp54Kind, nil
	case "dopri5", "":
		return Dopri5Kind, nil
	case "dopri5_dense", "dense":
		return Dopri5DenseKind, nil
	}
	return 0, fmt.Errorf("%w: unknown adaptive stepper %q", dynamo.ErrInvalidConfig, s)
}

// Dense reports whether the kind uses continuous output.
func (k AdaptiveKind) Dense() bool { return k == Dopri5DenseKind }

// NewErrorStepper returns the embedded pair behind k. The dense kind maps
// to plain Dormand-Prince; use NewDense for interpolating output.
func NewErrorStepper(k AdaptiveKind) (ErrorStepper, error) {
	switch k {
	case CashKarp54Kind:
		return NewCashKarp54(), nil
	case Dopri5Kind, Dopri5DenseKind:
		return NewDormandPrince5(), nil
	}
	return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, k)
}
