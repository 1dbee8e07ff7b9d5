// Package sim drives the state vector of a network forward in time. Every
// strategy shares the same contract: the initial state must match the
// system's total state count, indices are refreshed once if stale, and each
// accepted sample is logged, committed and observed before stepping on.
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

// Simulator runs sys from t = 0 to tMax starting at initial, which holds the
// final state on success. obs and log may be nil.
type Simulator interface {
	Simulate(sys *network.System, tMax float64, initial dynamo.State, obs Observer, log changelog.ChangeLog) error
}

// Nop does no stepping at all. It suits topology-only searches.
type Nop struct{}

func (Nop) Simulate(*network.System, float64, dynamo.State, Observer, changelog.ChangeLog) error {
	return nil
}

// run is the per-call state shared by the strategies.
type run struct {
	sys *network.System
	obs Observer
	log changelog.ChangeLog
}

func start(sys *network.System, initial dynamo.State, obs Observer, log changelog.ChangeLog) (*run, error) {
	if want := sys.TotalStates(); len(initial) != want {
		logrus.Debugf("sim: initial state has %d values, system needs %d", len(initial), want)
		return nil, fmt.Errorf("%w: got %d states, want %d", dynamo.ErrDimensionMismatch, len(initial), want)
	}
	if !sys.ValidStateIDs() {
		sys.RefreshStateIDs()
	}
	if obs == nil {
		obs = ObserverFunc(func(dynamo.State, float64) {})
	}
	if log == nil {
		log = changelog.Nop{}
	}
	return &run{sys: sys, obs: obs, log: log}, nil
}

// emit records one accepted sample.
func (r *run) emit(x dynamo.State, t float64) error {
	r.log.NewState(r.sys, x)
	r.log.EndStep(changelog.SimStep)
	if err := r.log.Commit(); err != nil {
		return fmt.Errorf("sim: commit at t=%g: %w", t, err)
	}
	r.obs.Observe(x, t)
	return nil
}

func (r *run) deriv(x, dx dynamo.State, t float64) {
	r.sys.Evaluate(x, dx, t)
}
