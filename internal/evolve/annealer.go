package evolve

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

// Params configures an Annealer. The function fields may be nil, in which
// case the defaults below are used.
type Params struct {
	InitialTrials         int
	MainTrials            int
	AcceptTrials          int
	AcceptRunsNoChange    int
	MinTemp               float64
	MaxIterations         int
	EnsureWeaklyConnected bool
	SimTMax               float64

	// InitialTemperature maps the score range seen while bootstrapping to
	// the starting temperature. Default: 4 * maxQ.
	InitialTemperature func(minQ, maxQ float64) float64
	// NewTemperature cools after each outer iteration. Default: 0.9 * temp.
	NewTemperature func(temp, q, oldQ float64) float64
	// AcceptProb is the probability of accepting a trial that is worse by
	// delta >= 0, where delta is trial score minus incumbent score. A trial
	// scoring 6 against an incumbent at 5 gets delta 1. The sign is the
	// opposite of the old-minus-new change some annealers pass, so that
	// exp(-delta/temp) shrinks as trials get worse; hooks written for the
	// other convention must negate their argument. Ties are passed with
	// delta 0. Default: exp(-delta/temp).
	AcceptProb func(delta, temp float64) float64

	// Rand drives acceptance draws. Seeded from the clock when nil.
	Rand *rand.Rand
}

func DefaultParams() Params {
	return Params{
		InitialTrials:         100,
		MainTrials:            50,
		AcceptTrials:          10,
		AcceptRunsNoChange:    10,
		MinTemp:               0.01,
		MaxIterations:         100000,
		EnsureWeaklyConnected: true,
		SimTMax:               100,
	}
}

func defaultInitialTemperature(_, maxQ float64) float64 { return 4 * maxQ }

func defaultNewTemperature(temp, _, _ float64) float64 { return 0.9 * temp }

func defaultAcceptProb(delta, temp float64) float64 { return math.Exp(-delta / temp) }

// Result is the outcome of a search. System is owned by the caller.
type Result struct {
	System       *network.System
	Score        float64
	InitialScore float64
	Iterations   int
	Temperature  float64
	Accepted     int
}

type Annealer struct {
	params Params
	perf   Performance
	mut    Mutator
	rng    *rand.Rand
}

func NewAnnealer(params Params, perf Performance, mut Mutator) *Annealer {
	if params.InitialTemperature == nil {
		params.InitialTemperature = defaultInitialTemperature
	}
	if params.NewTemperature == nil {
		params.NewTemperature = defaultNewTemperature
	}
	if params.AcceptProb == nil {
		params.AcceptProb = defaultAcceptProb
	}
	rng := params.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Annealer{params: params, perf: perf, mut: mut, rng: rng}
}

func (a *Annealer) Params() Params { return a.params }

// run holds the collaborators of one Evolve call.
type run struct {
	ctx       context.Context
	simulator sim.Simulator
	initial   InitialStates
	obs       Observer
	log       changelog.ChangeLog
}

// Evolve anneals a copy of sys; sys itself is never modified. On
// cancellation the current incumbent is returned together with ctx.Err().
func (a *Annealer) Evolve(ctx context.Context, sys *network.System, simulator sim.Simulator, initial InitialStates, obs Observer, log changelog.ChangeLog) (*Result, error) {
	r := &run{ctx: ctx, simulator: simulator, initial: initial, obs: obs, log: log}
	if r.simulator == nil {
		r.simulator = sim.Nop{}
	}
	if r.initial == nil {
		r.initial = InitialStatesFunc(func(*network.System) []dynamo.State { return nil })
	}
	if r.obs == nil {
		r.obs = ObserverFunc(func(*network.System, float64, int) {})
	}
	if r.log == nil {
		r.log = changelog.Nop{}
	}

	cur := sys.Clone()
	q1, err := a.score(r, cur)
	if err != nil {
		return nil, err
	}
	res := &Result{System: cur, Score: q1, InitialScore: q1}
	incumbentScore.Set(q1)
	r.obs.Observe(cur, q1, 0)

	minQ, maxQ := q1, q1
	walk := cur
	for i := 0; i < a.params.InitialTrials; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		next, q2, connected, err := a.propose(r, walk)
		r.log.Rollback()
		if err != nil {
			return res, err
		}
		if connected {
			minQ = math.Min(minQ, q2)
			maxQ = math.Max(maxQ, q2)
			trialsTotal.WithLabelValues("bootstrap", "sampled").Inc()
		} else {
			trialsTotal.WithLabelValues("bootstrap", "disconnected").Inc()
		}
		walk = next
		logrus.Debugf("evolve: bootstrap trial %d/%d score=%g", i+1, a.params.InitialTrials, q2)
	}

	temp := a.params.InitialTemperature(minQ, maxQ)
	res.Temperature = temp
	temperatureGauge.Set(temp)
	logrus.Debugf("evolve: initial temperature %g (scores %g..%g)", temp, minQ, maxQ)
	if !(temp > 0) {
		logrus.Warnf("evolve: initial temperature %g is not positive, skipping annealing", temp)
		return res, nil
	}

	var (
		iteration int
		noChange  int
		q2        = q1
	)
	for noChange <= a.params.AcceptRunsNoChange && temp > a.params.MinTemp && iteration <= a.params.MaxIterations {
		accepts := 0
		for i := 0; i < a.params.MainTrials; i++ {
			iteration++
			if iteration > a.params.MaxIterations {
				break
			}
			if err := ctx.Err(); err != nil {
				return res, err
			}

			next, score, connected, err := a.propose(r, cur)
			if err != nil {
				r.log.Rollback()
				return res, err
			}
			result := "disconnected"
			accepted := false
			if connected {
				q2 = score
				accepted = a.accept(q1, q2, temp)
				result = "rejected"
			}
			if accepted {
				result = "accepted"
				r.log.EndStep(changelog.EvoStep)
				if err := r.log.Commit(); err != nil {
					return res, fmt.Errorf("evolve: commit: %w", err)
				}
				cur = next
				q1, q2 = q2, q1
				accepts++
				res.Accepted++
				res.System = cur
				res.Score = q1
				incumbentScore.Set(q1)
			} else {
				r.log.Rollback()
			}
			trialsTotal.WithLabelValues("main", result).Inc()
			res.Iterations = iteration

			r.obs.Observe(cur, q1, iteration)
			if accepts >= a.params.AcceptTrials {
				break
			}
		}

		if accepts == 0 {
			noChange++
		} else {
			noChange = 0
		}
		temp = a.params.NewTemperature(temp, q1, q2)
		res.Temperature = temp
		temperatureGauge.Set(temp)
		logrus.Debugf("evolve: iteration %d temperature %g score %g accepts %d", iteration, temp, q1, accepts)
	}
	return res, nil
}

// propose clones base, mutates the clone and scores it. connected is false
// when the clone fails the weak connectivity requirement, in which case it
// is not scored.
func (a *Annealer) propose(r *run, base *network.System) (next *network.System, score float64, connected bool, err error) {
	start := time.Now()
	defer func() { trialDuration.Observe(time.Since(start).Seconds()) }()

	next = base.Clone()
	a.mut.Mutate(next, r.log)
	if a.params.EnsureWeaklyConnected && next.WeaklyConnectedComponents() != 1 {
		return next, 0, false, nil
	}
	score, err = a.score(r, next)
	return next, score, true, err
}

// accept applies the acceptance rule for a trial scoring q2 against an
// incumbent scoring q1.
func (a *Annealer) accept(q1, q2, temp float64) bool {
	if q1-q2 > 0 {
		return true
	}
	if !(temp > 0) {
		logrus.Warnf("evolve: temperature %g is not positive, trial rejected", temp)
		return false
	}
	return a.rng.Float64() <= a.params.AcceptProb(q2-q1, temp)
}

// score evaluates sys, simulating from every initial state when the
// performance needs dynamics.
func (a *Annealer) score(r *run, sys *network.System) (float64, error) {
	if !a.perf.Type().NeedsDynamics() {
		return a.perf.Score(sys, nil), nil
	}
	states := r.initial.States(sys)
	if len(states) == 0 {
		return PoorScore, nil
	}
	sum := 0.0
	for _, x := range states {
		traj := &sim.Trajectory{}
		if err := r.simulator.Simulate(sys, a.params.SimTMax, x, traj, changelog.Nop{}); err != nil {
			return 0, fmt.Errorf("evolve: scoring simulation: %w", err)
		}
		sum += a.perf.Score(sys, traj)
	}
	return sum / float64(len(states)), nil
}
