package evolve

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.ErrorLevel)
	os.Exit(m.Run())
}

// nodeCount scores a graph by sign * node count.
type nodeCount struct{ sign float64 }

func (nodeCount) Type() PerformanceType { return TopologyOnly }
func (p nodeCount) Score(sys *network.System, traj *sim.Trajectory) float64 {
	return p.sign * float64(sys.CountNodes())
}

type tripleNode struct{}

func (tripleNode) Name() string                                          { return "triple" }
func (tripleNode) States() int                                           { return 3 }
func (tripleNode) DefaultParams(*network.System, network.Node) []float64 { return nil }
func (tripleNode) Derive(*network.System, network.Node, dynamo.State, dynamo.State, float64) {
}

func ring(t *testing.T, n, k int) *network.System {
	t.Helper()
	sys := network.New(network.WithSeed(42))
	require.NoError(t, sys.RingGraph(n, k, network.NoNodeDynamicName, network.NoArcDynamicName, true))
	return sys
}

func addNodeMutator(seed int64) *RandomMutator {
	m := NewRandomMutator(seed)
	m.SetProb(NewNode, 1)
	m.Handle(NewNode, AddNodeOp(network.NoNodeDynamicName))
	return m
}

func testParams() Params {
	p := DefaultParams()
	p.InitialTrials = 0
	p.Rand = rand.New(rand.NewSource(1))
	return p
}

func TestRandomMutatorDrawOrder(t *testing.T) {
	var order []string
	record := func(name string) MutationOp {
		return func(*network.System, changelog.ChangeLog, *rand.Rand) error {
			order = append(order, name)
			return nil
		}
	}

	m := NewRandomMutator(1)
	m.SetTrials(2)
	m.SetProb(Duplicate, 1)
	m.SetProb(NewNode, 1)
	m.SetProb(DelEdge, 0)
	m.Handle(NewNode, record("new"))
	m.Handle(Duplicate, record("dup"))
	m.Handle(DelEdge, record("del"))

	m.Mutate(network.New(network.WithSeed(1)), changelog.Nop{})
	assert.Equal(t, []string{"new", "dup", "new", "dup"}, order)
	assert.Equal(t, 2, m.Trials())
	assert.Equal(t, 1.0, m.Prob(NewNode))
}

func TestRandomMutatorDefaultsAreNoOps(t *testing.T) {
	sys := ring(t, 5, 1)
	m := NewRandomMutator(1)
	for k := MutationKind(0); k < numKinds; k++ {
		m.SetProb(k, 1)
	}
	m.Mutate(sys, changelog.Nop{})
	assert.Equal(t, 5, sys.CountNodes())
	assert.Equal(t, 10, sys.CountArcs())
}

func TestMutationOpErrorsAreLogged(t *testing.T) {
	sys := network.New(network.WithSeed(1))
	m := NewRandomMutator(1)
	m.SetProb(NewNode, 1)
	m.Handle(NewNode, AddNodeOp("missing"))
	assert.NotPanics(t, func() { m.Mutate(sys, changelog.Nop{}) })
	assert.Equal(t, 0, sys.CountNodes())
}

func TestUndirectedRewirePreservesCounts(t *testing.T) {
	sys := ring(t, 25, 2)
	mut := NewUndirectedRewire(5)
	for i := 0; i < 50; i++ {
		mut.Mutate(sys, changelog.Nop{})
		require.Equal(t, 25, sys.CountNodes())
		require.Equal(t, 100, sys.CountArcs())
	}
	for _, a := range sys.Arcs() {
		_, ok := sys.FindArc(sys.Target(a), sys.Source(a))
		assert.True(t, ok, "arc %d has no partner", a)
	}
}

func TestEdgeOps(t *testing.T) {
	sys := ring(t, 6, 1)
	rng := rand.New(rand.NewSource(3))
	var out bytes.Buffer
	log := changelog.NewStream(&out)

	require.NoError(t, DeleteEdgeOp(true)(sys, log, rng))
	assert.Equal(t, 10, sys.CountArcs())

	require.NoError(t, AddEdgeOp(network.NoArcDynamicName, true)(sys, log, rng))
	assert.Equal(t, 12, sys.CountArcs())

	require.NoError(t, RewireEdgeOp(true)(sys, log, rng))
	assert.Equal(t, 12, sys.CountArcs())

	require.NoError(t, log.Commit())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "E-,"))
	assert.True(t, strings.HasPrefix(lines[2], "E+,"))
}

func TestNodeOps(t *testing.T) {
	sys := ring(t, 4, 1)
	rng := rand.New(rand.NewSource(3))

	require.NoError(t, DuplicateNodeOp()(sys, changelog.Nop{}, rng))
	assert.Equal(t, 5, sys.CountNodes())
	assert.Equal(t, 12, sys.CountArcs())

	require.NoError(t, DeleteNodeOp()(sys, changelog.Nop{}, rng))
	assert.Equal(t, 4, sys.CountNodes())

	empty := network.New(network.WithSeed(1))
	assert.NoError(t, DeleteNodeOp()(empty, changelog.Nop{}, rng))
	assert.NoError(t, DeleteEdgeOp(false)(empty, changelog.Nop{}, rng))
	assert.NoError(t, AddEdgeOp(network.NoArcDynamicName, false)(empty, changelog.Nop{}, rng))
}

func TestPerturbOps(t *testing.T) {
	sys := network.New(network.WithSeed(1))
	sys.RegisterNodeDynamic(paramNode{})
	u, _ := sys.AddNode("param")
	v, _ := sys.AddNode("param")
	a, _ := sys.AddArc(u, v, network.NoArcDynamicName)
	rng := rand.New(rand.NewSource(9))

	var out bytes.Buffer
	log := changelog.NewStream(&out)
	require.NoError(t, PerturbParamsOp(0.5)(sys, log, rng))
	require.NoError(t, PerturbWeightOp(0.5)(sys, log, rng))
	require.NoError(t, log.Commit())

	changed := sys.NodeData(u).Params[0] != 1 || sys.NodeData(v).Params[0] != 1
	assert.True(t, changed)
	assert.NotEqual(t, 1.0, sys.ArcData(a).Weight)
	assert.Contains(t, out.String(), "NU,")
	assert.Contains(t, out.String(), "EU,0,1")
}

type paramNode struct{}

func (paramNode) Name() string                                          { return "param" }
func (paramNode) States() int                                           { return 0 }
func (paramNode) DefaultParams(*network.System, network.Node) []float64 { return []float64{1} }
func (paramNode) Derive(*network.System, network.Node, dynamo.State, dynamo.State, float64) {
}

func TestEigenratio(t *testing.T) {
	sys := ring(t, 4, 1)
	assert.InDelta(t, 2.0, Eigenratio{}.Score(sys, nil), 1e-9)

	sys.AddNode(network.NoNodeDynamicName)
	assert.Equal(t, PoorScore, Eigenratio{}.Score(sys, nil))
	assert.Equal(t, PoorScore, Eigenratio{}.Score(network.New(), nil))
}

func TestSynchronization(t *testing.T) {
	sys := network.New(network.WithSeed(1))
	sys.RegisterNodeDynamic(tripleNode{})
	sys.AddNode("triple")
	sys.AddNode("triple")
	sys.RefreshStateIDs()
	perf := NewSynchronization()
	assert.Equal(t, DynamicsOnly, perf.Type())

	traj := &sim.Trajectory{}
	traj.Observe(dynamo.State{9, 9, 9, 9, 9, 9}, 0)
	traj.Observe(dynamo.State{1, 2, 3, 1, 2, 3.001}, 1)
	assert.Equal(t, 0.0, perf.Score(sys, traj))

	traj.Observe(dynamo.State{1, 2, 3, 1, 2, 4}, 2)
	assert.Equal(t, 100.0, perf.Score(sys, traj))

	traj.Observe(dynamo.State{math.NaN(), 2, 3, 1, 2, 4}, 3)
	assert.Equal(t, 1.0, perf.Score(sys, traj))
}

func TestRandomInitialStates(t *testing.T) {
	sys := network.New(network.WithSeed(1))
	sys.RegisterNodeDynamic(tripleNode{})
	sys.AddNode("triple")
	sys.AddNode("triple")

	states := RandomInitialStates{Count: 3, Scale: 10}.States(sys)
	require.Len(t, states, 3)
	for _, x := range states {
		require.Len(t, x, 6)
		for _, v := range x {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 10.0)
		}
	}
}

func TestEvolveRingEigenratio(t *testing.T) {
	sys := ring(t, 25, 2)
	params := DefaultParams()
	params.InitialTrials = 20
	params.MaxIterations = 3000
	params.Rand = rand.New(rand.NewSource(7))

	a := NewAnnealer(params, Eigenratio{}, NewUndirectedRewire(7))
	res, err := a.Evolve(context.Background(), sys, nil, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 25, res.System.CountNodes())
	assert.Equal(t, 100, res.System.CountArcs())
	assert.Equal(t, 1, res.System.WeaklyConnectedComponents())
	assert.LessOrEqual(t, res.Score, res.InitialScore)
	assert.InDelta(t, Eigenratio{}.Score(res.System, nil), res.Score, 1e-9)
	assert.LessOrEqual(t, res.Iterations, params.MaxIterations)

	assert.Equal(t, 100, sys.CountArcs(), "input graph untouched")
	assert.InDelta(t, res.InitialScore, Eigenratio{}.Score(sys, nil), 1e-9)
}

func TestEvolveAlwaysAccept(t *testing.T) {
	params := testParams()
	params.EnsureWeaklyConnected = false
	params.MaxIterations = 30
	params.AcceptProb = func(float64, float64) float64 { return 1 }

	var out bytes.Buffer
	var iterations []int
	obs := ObserverFunc(func(_ *network.System, _ float64, it int) { iterations = append(iterations, it) })

	a := NewAnnealer(params, nodeCount{sign: 1}, addNodeMutator(1))
	res, err := a.Evolve(context.Background(), ring(t, 5, 1), nil, nil, obs, changelog.NewStream(&out))
	require.NoError(t, err)

	assert.Equal(t, 30, res.Iterations)
	assert.Equal(t, 30, res.Accepted)
	assert.Equal(t, 35, res.System.CountNodes())
	assert.Equal(t, 35.0, res.Score)
	assert.Equal(t, 5.0, res.InitialScore)

	require.Len(t, iterations, 31)
	for i, it := range iterations {
		assert.Equal(t, i, it)
	}
	assert.Equal(t, 30, strings.Count(out.String(), "N+,"))
	assert.Equal(t, 30, strings.Count(out.String(), "--\n"))
}

func TestEvolveScoresTheTrial(t *testing.T) {
	params := testParams()
	params.EnsureWeaklyConnected = false
	params.MaxIterations = 10
	params.AcceptProb = func(float64, float64) float64 { return 0 }

	a := NewAnnealer(params, nodeCount{sign: -1}, addNodeMutator(1))
	res, err := a.Evolve(context.Background(), ring(t, 5, 1), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Accepted)
	assert.Equal(t, 15, res.System.CountNodes())
}

func TestEvolveConnectivityGuard(t *testing.T) {
	params := testParams()
	params.MaxIterations = 20

	var out bytes.Buffer
	a := NewAnnealer(params, nodeCount{sign: -1}, addNodeMutator(1))
	res, err := a.Evolve(context.Background(), ring(t, 5, 1), nil, nil, nil, changelog.NewStream(&out))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Accepted)
	assert.Equal(t, 20, res.Iterations)
	assert.Equal(t, 5, res.System.CountNodes())
	assert.Empty(t, out.String(), "rejected trials are rolled back")
}

func TestEvolveBootstrapIsRolledBack(t *testing.T) {
	params := testParams()
	params.InitialTrials = 5
	params.EnsureWeaklyConnected = false
	params.MaxIterations = 0

	var out bytes.Buffer
	var minSeen, maxSeen float64
	params.InitialTemperature = func(minQ, maxQ float64) float64 {
		minSeen, maxSeen = minQ, maxQ
		return 4 * maxQ
	}
	a := NewAnnealer(params, nodeCount{sign: 1}, addNodeMutator(1))
	res, err := a.Evolve(context.Background(), ring(t, 5, 1), nil, nil, nil, changelog.NewStream(&out))
	require.NoError(t, err)

	assert.Empty(t, out.String())
	assert.Equal(t, 5.0, minSeen)
	assert.Equal(t, 10.0, maxSeen, "bootstrap walks from each trial")
	assert.Equal(t, 5, res.System.CountNodes())
	assert.Equal(t, 0, res.Iterations)
}

func TestEvolveNoInitialStatesGivesPoorScore(t *testing.T) {
	params := testParams()
	params.MaxIterations = 0

	sys := network.New(network.WithSeed(1))
	sys.RegisterNodeDynamic(tripleNode{})
	sys.AddNode("triple")

	a := NewAnnealer(params, NewSynchronization(), addNodeMutator(1))
	res, err := a.Evolve(context.Background(), sys, sim.Map{}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, PoorScore, res.InitialScore)
}

func TestEvolveDynamicsScoring(t *testing.T) {
	params := testParams()
	params.MaxIterations = 0
	params.SimTMax = 3

	sys := network.New(network.WithSeed(1))
	sys.RegisterNodeDynamic(tripleNode{})
	sys.AddNode("triple")
	sys.AddNode("triple")

	identical := InitialStatesFunc(func(s *network.System) []dynamo.State {
		return []dynamo.State{make(dynamo.State, s.TotalStates()), make(dynamo.State, s.TotalStates())}
	})
	a := NewAnnealer(params, NewSynchronization(), addNodeMutator(1))
	res, err := a.Evolve(context.Background(), sys, sim.Map{}, identical, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.InitialScore)

	wrongSize := InitialStatesFunc(func(*network.System) []dynamo.State { return []dynamo.State{{1}} })
	_, err = a.Evolve(context.Background(), sys, sim.Map{}, wrongSize, nil, nil)
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestEvolveNonPositiveTemperature(t *testing.T) {
	params := testParams()
	params.EnsureWeaklyConnected = false
	params.MinTemp = -1
	params.InitialTemperature = func(float64, float64) float64 { return 1 }
	params.NewTemperature = func(float64, float64, float64) float64 { return 0 }

	a := NewAnnealer(params, nodeCount{sign: 1}, addNodeMutator(1))
	var res *Result
	var err error
	assert.NotPanics(t, func() {
		res, err = a.Evolve(context.Background(), ring(t, 5, 1), nil, nil, nil, nil)
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Temperature)
	assert.LessOrEqual(t, res.Accepted, params.MainTrials)
}

func TestAcceptPassesWorsening(t *testing.T) {
	params := testParams()
	var deltas []float64
	params.AcceptProb = func(delta, temp float64) float64 {
		deltas = append(deltas, delta)
		return 0
	}
	a := NewAnnealer(params, nodeCount{sign: 1}, addNodeMutator(1))

	assert.True(t, a.accept(5, 4, 1), "better trials skip the hook")
	assert.False(t, a.accept(5, 6, 1))
	assert.False(t, a.accept(5, 5, 1))
	assert.False(t, a.accept(5, 5, 0), "ties need a positive temperature")
	assert.Equal(t, []float64{1, 0}, deltas)

	a = NewAnnealer(testParams(), nodeCount{sign: 1}, addNodeMutator(1))
	assert.True(t, a.accept(5, 5, 1), "default rule accepts ties")
}

func TestEvolveCancelled(t *testing.T) {
	params := testParams()
	params.InitialTrials = 5

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAnnealer(params, nodeCount{sign: 1}, addNodeMutator(1))
	res, err := a.Evolve(ctx, ring(t, 5, 1), nil, nil, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 5, res.System.CountNodes())
}

func TestDefaultSchedule(t *testing.T) {
	a := NewAnnealer(DefaultParams(), Eigenratio{}, NewUndirectedRewire(1))
	p := a.Params()
	assert.Equal(t, 40.0, p.InitialTemperature(1, 10))
	assert.InDelta(t, 9.0, p.NewTemperature(10, 0, 0), 1e-12)
	assert.Equal(t, 1.0, p.AcceptProb(0, 5))
	assert.InDelta(t, math.Exp(-0.5), p.AcceptProb(1, 2), 1e-12)
	assert.True(t, p.EnsureWeaklyConnected)
	assert.Equal(t, 100.0, p.SimTMax)
}
