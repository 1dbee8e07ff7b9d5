package integrators

import "github.com/san-kum/netevo/internal/dynamo"

// RK4 is the classical fourth order Runge-Kutta scheme. It keeps its stage
// buffers between steps and resizes them when the state length changes.
type RK4 struct {
	k     [4]dynamo.State
	probe dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) resize(n int) {
	if len(r.probe) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.probe = make(dynamo.State, n)
}

func (r *RK4) Reset() {}

// stage evaluates f at x + h*k into out.
func (r *RK4) stage(f dynamo.DerivFunc, x, k dynamo.State, h, t float64, out dynamo.State) {
	for i, v := range x {
		r.probe[i] = v + h*k[i]
	}
	f(r.probe, out, t)
}

func (r *RK4) Step(f dynamo.DerivFunc, x dynamo.State, t, dt float64) {
	r.resize(len(x))
	k1, k2, k3, k4 := r.k[0], r.k[1], r.k[2], r.k[3]

	half := dt / 2
	f(x, k1, t)
	r.stage(f, x, k1, half, t+half, k2)
	r.stage(f, x, k2, half, t+half, k3)
	r.stage(f, x, k3, dt, t+dt, k4)

	w := dt / 6
	for i := range x {
		x[i] += w * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
	}
}
