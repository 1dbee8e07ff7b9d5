package integrators

import "github.com/san-kum/netevo/internal/dynamo"

// Dormand-Prince 5(4) tableau.
const (
	dpA2 = 1.0 / 5.0
	dpA3 = 3.0 / 10.0
	dpA4 = 4.0 / 5.0
	dpA5 = 8.0 / 9.0

	dpB21 = 1.0 / 5.0
	dpB31 = 3.0 / 40.0
	dpB32 = 9.0 / 40.0
	dpB41 = 44.0 / 45.0
	dpB42 = -56.0 / 15.0
	dpB43 = 32.0 / 9.0
	dpB51 = 19372.0 / 6561.0
	dpB52 = -25360.0 / 2187.0
	dpB53 = 64448.0 / 6561.0
	dpB54 = -212.0 / 729.0
	dpB61 = 9017.0 / 3168.0
	dpB62 = -355.0 / 33.0
	dpB63 = 46732.0 / 5247.0
	dpB64 = 49.0 / 176.0
	dpB65 = -5103.0 / 18656.0

	dpC1 = 35.0 / 384.0
	dpC3 = 500.0 / 1113.0
	dpC4 = 125.0 / 192.0
	dpC5 = -2187.0 / 6784.0
	dpC6 = 11.0 / 84.0

	dpE1 = dpC1 - 5179.0/57600.0
	dpE3 = dpC3 - 7571.0/16695.0
	dpE4 = dpC4 - 393.0/640.0
	dpE5 = dpC5 - -92097.0/339200.0
	dpE6 = dpC6 - 187.0/2100.0
	dpE7 = -1.0 / 40.0
)

// DormandPrince5 is the Dormand-Prince 5(4) embedded pair. After a call to
// StepWithError the stage derivatives stay available for dense output.
type DormandPrince5 struct {
	k1, k2, k3, k4, k5, k6, k7 dynamo.State
	tmp                        dynamo.State
}

func NewDormandPrince5() *DormandPrince5 {
	return &DormandPrince5{}
}

func (d *DormandPrince5) Order() int      { return 5 }
func (d *DormandPrince5) ErrorOrder() int { return 4 }

func (d *DormandPrince5) ensureScratch(n int) {
	if len(d.k1) != n {
		d.k1 = make(dynamo.State, n)
		d.k2 = make(dynamo.State, n)
		d.k3 = make(dynamo.State, n)
		d.k4 = make(dynamo.State, n)
		d.k5 = make(dynamo.State, n)
		d.k6 = make(dynamo.State, n)
		d.k7 = make(dynamo.State, n)
		d.tmp = make(dynamo.State, n)
	}
}

func (d *DormandPrince5) StepWithError(f dynamo.DerivFunc, x, dxdt dynamo.State, t, dt float64, out, xerr dynamo.State) {
	n := len(x)
	d.ensureScratch(n)
	copy(d.k1, dxdt)

	for i := 0; i < n; i++ {
		d.tmp[i] = x[i] + dt*dpB21*d.k1[i]
	}
	f(d.tmp, d.k2, t+dpA2*dt)

	for i := 0; i < n; i++ {
		d.tmp[i] = x[i] + dt*(dpB31*d.k1[i]+dpB32*d.k2[i])
	}
	f(d.tmp, d.k3, t+dpA3*dt)

	for i := 0; i < n; i++ {
		d.tmp[i] = x[i] + dt*(dpB41*d.k1[i]+dpB42*d.k2[i]+dpB43*d.k3[i])
	}
	f(d.tmp, d.k4, t+dpA4*dt)

	for i := 0; i < n; i++ {
		d.tmp[i] = x[i] + dt*(dpB51*d.k1[i]+dpB52*d.k2[i]+dpB53*d.k3[i]+dpB54*d.k4[i])
	}
	f(d.tmp, d.k5, t+dpA5*dt)

	for i := 0; i < n; i++ {
		d.tmp[i] = x[i] + dt*(dpB61*d.k1[i]+dpB62*d.k2[i]+dpB63*d.k3[i]+dpB64*d.k4[i]+dpB65*d.k5[i])
	}
	f(d.tmp, d.k6, t+dt)

	for i := 0; i < n; i++ {
		out[i] = x[i] + dt*(dpC1*d.k1[i]+dpC3*d.k3[i]+dpC4*d.k4[i]+dpC5*d.k5[i]+dpC6*d.k6[i])
	}
	f(out, d.k7, t+dt)

	for i := 0; i < n; i++ {
		xerr[i] = dt * (dpE1*d.k1[i] + dpE3*d.k3[i] + dpE4*d.k4[i] + dpE5*d.k5[i] + dpE6*d.k6[i] + dpE7*d.k7[i])
	}
}
