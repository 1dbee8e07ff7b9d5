package sim

import (
	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

// Map iterates discrete-time dynamics: Evaluate writes the next state.
// tMax is truncated to a whole number of steps and a sample is emitted at
// t = 0 and after every step. Evaluate receives the time of the sample it
// produces, so the first call sees t = 1.
type Map struct{}

func (Map) Simulate(sys *network.System, tMax float64, initial dynamo.State, obs Observer, log changelog.ChangeLog) error {
	r, err := start(sys, initial, obs, log)
	if err != nil {
		return err
	}

	steps := int(tMax)
	cur := initial
	next := initial.Clone()
	if err := r.emit(cur, 0); err != nil {
		return err
	}
	for k := 1; k <= steps; k++ {
		sys.Evaluate(cur, next, float64(k))
		cur, next = next, cur
		if err := r.emit(cur, float64(k)); err != nil {
			if k%2 == 1 {
				copy(initial, cur)
			}
			return err
		}
	}
	if steps > 0 && steps%2 == 1 {
		copy(initial, cur)
	}
	return nil
}
