package integrators

import "github.com/san-kum/netevo/internal/dynamo"

// Dormand-Prince continuous extension coefficients (Hairer, contd5).
const (
	dd1 = -12715105075.0 / 11282082432.0
	dd3 = 87487479700.0 / 32700410799.0
	dd4 = -10690763975.0 / 1880347072.0
	dd5 = 701980252875.0 / 199316789632.0
	dd6 = -1453857185.0 / 822651844.0
	dd7 = 69997945.0 / 29380423.0
)

// Dense drives a controlled Dormand-Prince stepper and interpolates the
// state anywhere inside the last accepted step.
type Dense struct {
	ctrl *Controlled
	dp   *DormandPrince5

	x, xPrev   dynamo.State
	t, tPrev   float64
	dt         float64
	r1, r2     dynamo.State
	r3, r4, r5 dynamo.State
}

func NewDense(absTol, relTol float64) *Dense {
	dp := NewDormandPrince5()
	return &Dense{ctrl: NewControlled(dp, absTol, relTol), dp: dp}
}

// Initialize sets the start point and the first trial step.
func (d *Dense) Initialize(x dynamo.State, t, dt float64) {
	n := len(x)
	if len(d.x) != n {
		d.x = make(dynamo.State, n)
		d.xPrev = make(dynamo.State, n)
		d.r1 = make(dynamo.State, n)
		d.r2 = make(dynamo.State, n)
		d.r3 = make(dynamo.State, n)
		d.r4 = make(dynamo.State, n)
		d.r5 = make(dynamo.State, n)
	}
	copy(d.x, x)
	copy(d.xPrev, x)
	d.t, d.tPrev, d.dt = t, t, dt
}

// DoStep performs one accepted step, retrying with smaller steps as needed.
func (d *Dense) DoStep(f dynamo.DerivFunc) error {
	copy(d.xPrev, d.x)
	d.tPrev = d.t
	dt := d.dt
	for tries := 1; ; tries++ {
		tNew, dtNew, ok := d.ctrl.TryStep(f, d.x, d.t, dt)
		if !ok {
			if err := rejected(d.ctrl, tries, tries, d.t); err != nil {
				return err
			}
			dt = dtNew
			continue
		}
		d.t = tNew
		d.dt = dtNew
		d.prepare(dt)
		return nil
	}
}

func (d *Dense) prepare(h float64) {
	dp := d.dp
	for i := range d.x {
		ydiff := d.x[i] - d.xPrev[i]
		bspl := h*dp.k1[i] - ydiff
		d.r1[i] = d.xPrev[i]
		d.r2[i] = ydiff
		d.r3[i] = bspl
		d.r4[i] = ydiff - h*dp.k7[i] - bspl
		d.r5[i] = h * (dd1*dp.k1[i] + dd3*dp.k3[i] + dd4*dp.k4[i] + dd5*dp.k5[i] + dd6*dp.k6[i] + dd7*dp.k7[i])
	}
}

// CalcState writes the interpolated state at t, which should lie in
// [PreviousTime, CurrentTime], into out.
func (d *Dense) CalcState(t float64, out dynamo.State) {
	h := d.t - d.tPrev
	if h == 0 {
		copy(out, d.x)
		return
	}
	theta := (t - d.tPrev) / h
	theta1 := 1 - theta
	for i := range out {
		out[i] = d.r1[i] + theta*(d.r2[i]+theta1*(d.r3[i]+theta*(d.r4[i]+theta1*d.r5[i])))
	}
}

func (d *Dense) CurrentTime() float64       { return d.t }
func (d *Dense) PreviousTime() float64      { return d.tPrev }
func (d *Dense) CurrentState() dynamo.State { return d.x }
func (d *Dense) CurrentStep() float64       { return d.dt }
