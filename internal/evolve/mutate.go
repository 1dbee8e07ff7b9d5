package evolve

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/network"
)

// MutationKind names one of the independent draws of a RandomMutator.
type MutationKind int

const (
	NewNode MutationKind = iota
	DelNode
	NewEdge
	DelEdge
	UpdNode
	UpdEdge
	Rewire
	Duplicate

	numKinds
)

var kindNames = [numKinds]string{"new_node", "del_node", "new_edge", "del_edge", "upd_node", "upd_edge", "rewire", "duplicate"}

func (k MutationKind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("MutationKind(%d)", int(k))
	}
	return kindNames[k]
}

// MutationOp performs one edit. It receives the mutator's generator.
type MutationOp func(sys *network.System, log changelog.ChangeLog, rng *rand.Rand) error

// RandomMutator runs Trials rounds; each round draws once per kind, in
// declaration order, and runs that kind's op when the draw is below its
// probability. All probabilities start at 0 and all ops are no-ops.
type RandomMutator struct {
	probs  [numKinds]float64
	ops    [numKinds]MutationOp
	trials int
	rng    *rand.Rand
}

func NewRandomMutator(seed int64) *RandomMutator {
	return &RandomMutator{trials: 1, rng: rand.New(rand.NewSource(seed))}
}

// NewRandomMutatorFromTime seeds the generator from the clock.
func NewRandomMutatorFromTime() *RandomMutator {
	return NewRandomMutator(time.Now().UnixNano())
}

func (m *RandomMutator) SetProb(k MutationKind, p float64) { m.probs[k] = p }
func (m *RandomMutator) Prob(k MutationKind) float64       { return m.probs[k] }

// Handle installs op for kind k. A nil op restores the no-op.
func (m *RandomMutator) Handle(k MutationKind, op MutationOp) { m.ops[k] = op }

func (m *RandomMutator) SetTrials(n int) { m.trials = n }
func (m *RandomMutator) Trials() int     { return m.trials }

func (m *RandomMutator) Mutate(sys *network.System, log changelog.ChangeLog) {
	for i := 0; i < m.trials; i++ {
		for k := MutationKind(0); k < numKinds; k++ {
			if m.rng.Float64() >= m.probs[k] {
				continue
			}
			if op := m.ops[k]; op != nil {
				if err := op(sys, log, m.rng); err != nil {
					logrus.Warnf("evolve: %s mutation failed: %v", k, err)
				}
			}
		}
	}
}
