package metrics

import (
	"math/cmplx"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

// OrderParameter is the Kuramoto order parameter r = |mean(exp(i*theta))|
// of the last sample, taking each node's first state as its phase. It is 1
// for fully phase-locked nodes and near 0 for incoherent ones. It stays 0
// until a sample with node states arrives.
type OrderParameter struct {
	sys  *network.System
	last float64
}

func NewOrderParameter(sys *network.System) *OrderParameter {
	return &OrderParameter{sys: sys}
}

func (o *OrderParameter) Name() string { return "order_parameter" }

func (o *OrderParameter) Observe(x dynamo.State, t float64) {
	phases := leading(o.sys, x)
	if len(phases) == 0 {
		return
	}
	var sum complex128
	for _, theta := range phases {
		sum += cmplx.Exp(complex(0, theta))
	}
	o.last = cmplx.Abs(sum) / float64(len(phases))
}

func (o *OrderParameter) Value() float64 { return o.last }

func (o *OrderParameter) Reset() { o.last = 0 }
