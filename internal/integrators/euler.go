package integrators

import "github.com/san-kum/netevo/internal/dynamo"

type Euler struct {
	dx dynamo.State
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Reset() {}

func (e *Euler) Step(f dynamo.DerivFunc, x dynamo.State, t, dt float64) {
	e.dx = resize(e.dx, len(x))
	f(x, e.dx, t)
	for i := range x {
		x[i] += dt * e.dx[i]
	}
}
