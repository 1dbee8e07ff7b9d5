package integrators

import "github.com/san-kum/netevo/internal/dynamo"

// Cash-Karp 5(4) tableau.
const (
	ckA2 = 1.0 / 5.0
	ckA3 = 3.0 / 10.0
	ckA4 = 3.0 / 5.0
	ckA6 = 7.0 / 8.0

	ckB21 = 1.0 / 5.0
	ckB31 = 3.0 / 40.0
	ckB32 = 9.0 / 40.0
	ckB41 = 3.0 / 10.0
	ckB42 = -9.0 / 10.0
	ckB43 = 6.0 / 5.0
	ckB51 = -11.0 / 54.0
	ckB52 = 5.0 / 2.0
	ckB53 = -70.0 / 27.0
	ckB54 = 35.0 / 27.0
	ckB61 = 1631.0 / 55296.0
	ckB62 = 175.0 / 512.0
	ckB63 = 575.0 / 13824.0
	ckB64 = 44275.0 / 110592.0
	ckB65 = 253.0 / 4096.0

	ckC1 = 37.0 / 378.0
	ckC3 = 250.0 / 621.0
	ckC4 = 125.0 / 594.0
	ckC6 = 512.0 / 1771.0

	ckE1 = ckC1 - 2825.0/27648.0
	ckE3 = ckC3 - 18575.0/48384.0
	ckE4 = ckC4 - 13525.0/55296.0
	ckE5 = -277.0 / 14336.0
	ckE6 = ckC6 - 1.0/4.0
)

// CashKarp54 is the Cash-Karp 5(4) embedded pair.
type CashKarp54 struct {
	k2, k3, k4, k5, k6 dynamo.State
	tmp                dynamo.State
}

func NewCashKarp54() *CashKarp54 {
	return &CashKarp54{}
}

func (c *CashKarp54) Order() int      { return 5 }
func (c *CashKarp54) ErrorOrder() int { return 4 }

func (c *CashKarp54) ensureScratch(n int) {
	if len(c.k2) != n {
		c.k2 = make(dynamo.State, n)
		c.k3 = make(dynamo.State, n)
		c.k4 = make(dynamo.State, n)
		c.k5 = make(dynamo.State, n)
		c.k6 = make(dynamo.State, n)
		c.tmp = make(dynamo.State, n)
	}
}

func (c *CashKarp54) StepWithError(f dynamo.DerivFunc, x, dxdt dynamo.State, t, dt float64, out, xerr dynamo.State) {
	n := len(x)
	c.ensureScratch(n)
	k1 := dxdt

	for i := 0; i < n; i++ {
		c.tmp[i] = x[i] + dt*ckB21*k1[i]
	}
	f(c.tmp, c.k2, t+ckA2*dt)

	for i := 0; i < n; i++ {
		c.tmp[i] = x[i] + dt*(ckB31*k1[i]+ckB32*c.k2[i])
	}
	f(c.tmp, c.k3, t+ckA3*dt)

	for i := 0; i < n; i++ {
		c.tmp[i] = x[i] + dt*(ckB41*k1[i]+ckB42*c.k2[i]+ckB43*c.k3[i])
	}
	f(c.tmp, c.k4, t+ckA4*dt)

	for i := 0; i < n; i++ {
		c.tmp[i] = x[i] + dt*(ckB51*k1[i]+ckB52*c.k2[i]+ckB53*c.k3[i]+ckB54*c.k4[i])
	}
	f(c.tmp, c.k5, t+dt)

	for i := 0; i < n; i++ {
		c.tmp[i] = x[i] + dt*(ckB61*k1[i]+ckB62*c.k2[i]+ckB63*c.k3[i]+ckB64*c.k4[i]+ckB65*c.k5[i])
	}
	f(c.tmp, c.k6, t+ckA6*dt)

	for i := 0; i < n; i++ {
		out[i] = x[i] + dt*(ckC1*k1[i]+ckC3*c.k3[i]+ckC4*c.k4[i]+ckC6*c.k6[i])
		xerr[i] = dt * (ckE1*k1[i] + ckE3*c.k3[i] + ckE4*c.k4[i] + ckE5*c.k5[i] + ckE6*c.k6[i])
	}
}
