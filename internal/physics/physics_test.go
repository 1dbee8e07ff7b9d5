package physics

import (
	"math"
	"testing"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

const tol = 1e-12

// pair builds source -> target with the given dynamics and a weighted arc.
func pair(t *testing.T, node network.NodeDynamic, arcDyn string, weight float64) (*network.System, network.Node, network.Node, network.Arc) {
	t.Helper()
	sys := network.New(network.WithSeed(1))
	sys.RegisterNodeDynamic(node)
	sys.RegisterArcDynamic(AdaptiveArc{})
	u, err := sys.AddNode(node.Name())
	if err != nil {
		t.Fatal(err)
	}
	v, _ := sys.AddNode(node.Name())
	a, err := sys.AddArc(u, v, arcDyn)
	if err != nil {
		t.Fatal(err)
	}
	sys.ArcData(a).Weight = weight
	sys.RefreshStateIDs()
	return sys, u, v, a
}

func TestRegister(t *testing.T) {
	sys := network.New()
	Register(sys)

	for _, name := range []string{KuramotoMapName, KuramotoOscillatorName, RosslerName, LorenzName, VanDerPolName, ZeroName} {
		if _, ok := sys.NodeDynamic(name); !ok {
			t.Errorf("node dynamic %s not registered", name)
		}
	}
	if _, ok := sys.ArcDynamic(AdaptiveArcName); !ok {
		t.Error("adaptive arc not registered")
	}
	if sys.NodeStates() != 3 {
		t.Errorf("expected node width 3, got %d", sys.NodeStates())
	}
	if sys.ArcStates() != 1 {
		t.Errorf("expected arc width 1, got %d", sys.ArcStates())
	}
}

func TestRosslerIsolated(t *testing.T) {
	sys, u, _, _ := pair(t, Rossler{}, network.NoArcDynamicName, 1)
	x := dynamo.State{1, 2, 3, 1, 2, 3}
	dx := make(dynamo.State, len(x))
	Rossler{}.Derive(sys, u, x, dx, 0)

	want := []float64{-5, 1 + 0.165*2, 0.2 + (1-10)*3}
	for i, w := range want {
		if math.Abs(dx[i]-w) > tol {
			t.Errorf("dx[%d] = %f, want %f", i, dx[i], w)
		}
	}
}

func TestRosslerCouplingUsesWeight(t *testing.T) {
	sys, _, v, _ := pair(t, Rossler{}, network.NoArcDynamicName, 2)
	x := dynamo.State{4, 0, 1, 1, 0, 0}
	dx := make(dynamo.State, len(x))
	Rossler{}.Derive(sys, v, x, dx, 0)

	// own x = (1, 0, 0); coupling 0.5 * 2 * (4 - 1) on x and 0.5 * 2 * (1 - 0) on z
	if math.Abs(dx[3]-3) > tol {
		t.Errorf("coupled dx = %f, want 3", dx[3])
	}
	if want := 0.2 + 1.0; math.Abs(dx[5]-want) > tol {
		t.Errorf("coupled dz = %f, want %f", dx[5], want)
	}
}

func TestLorenzAdaptiveGain(t *testing.T) {
	sys, _, v, a := pair(t, Lorenz{}, AdaptiveArcName, 100)
	x := make(dynamo.State, sys.TotalStates())
	x[0] = 2
	x[sys.ArcStateID(a)] = 0.5
	dx := make(dynamo.State, len(x))
	Lorenz{}.Derive(sys, v, x, dx, 0)

	// arc state, not weight, is the gain
	if math.Abs(dx[3]-1) > tol {
		t.Errorf("dx = %f, want 1", dx[3])
	}

	AdaptiveArc{}.Derive(sys, a, x, dx, 0)
	if want := 0.1 * 2; math.Abs(dx[sys.ArcStateID(a)]-want) > tol {
		t.Errorf("arc derivative = %f, want %f", dx[sys.ArcStateID(a)], want)
	}
}

func TestVanDerPol(t *testing.T) {
	sys, u, _, _ := pair(t, VanDerPol{}, network.NoArcDynamicName, 1)
	x := dynamo.State{2, 1, 0, 0}
	dx := make(dynamo.State, len(x))
	VanDerPol{}.Derive(sys, u, x, dx, 0)

	if dx[0] != 1 {
		t.Errorf("dx = %f, want 1", dx[0])
	}
	if want := (1-4)*1.0 - 2; math.Abs(dx[1]-want) > tol {
		t.Errorf("dy = %f, want %f", dx[1], want)
	}
}

func TestMissingParamsFallBack(t *testing.T) {
	sys, u, _, _ := pair(t, VanDerPol{}, network.NoArcDynamicName, 1)
	sys.NodeData(u).Params = nil
	x := dynamo.State{2, 1, 0, 0}
	dx := make(dynamo.State, len(x))
	VanDerPol{}.Derive(sys, u, x, dx, 0)
	if math.Abs(dx[1]+5) > tol {
		t.Errorf("dy = %f, want -5", dx[1])
	}
}

func TestZero(t *testing.T) {
	sys, u, _, _ := pair(t, Zero{}, network.NoArcDynamicName, 1)
	dx := dynamo.State{9, 9, 9, 9, 9, 9}
	Zero{}.Derive(sys, u, dynamo.State{1, 2, 3, 4, 5, 6}, dx, 0)
	for i := 0; i < 3; i++ {
		if dx[i] != 0 {
			t.Errorf("dx[%d] = %f, want 0", i, dx[i])
		}
	}
	if dx[3] != 9 {
		t.Error("zero dynamic wrote outside its slot")
	}
}

func TestKuramotoMapWraps(t *testing.T) {
	sys, u, v, _ := pair(t, KuramotoMap{}, network.NoArcDynamicName, 1)
	x := dynamo.State{2*math.Pi - 0.05, 1}
	dx := make(dynamo.State, 2)
	KuramotoMap{}.Derive(sys, u, x, dx, 0)
	KuramotoMap{}.Derive(sys, v, x, dx, 0)

	if want := 0.15; math.Abs(dx[0]-want) > 1e-9 {
		t.Errorf("wrapped phase = %f, want %f", dx[0], want)
	}
	want := 1 + 0.2 + 0.1*math.Sin(2*math.Pi-0.05-1)
	if math.Abs(dx[1]-want) > tol {
		t.Errorf("coupled phase = %f, want %f", dx[1], want)
	}
}

func TestKuramotoMapSynchronises(t *testing.T) {
	sys := network.New(network.WithSeed(3))
	sys.RegisterNodeDynamic(KuramotoMap{})
	if err := sys.RandomGraph(1, 4, false, KuramotoMapName, network.NoArcDynamicName, true); err != nil {
		t.Fatal(err)
	}

	initial := dynamo.State{0.1, 0.5, 0.9, 0.3}
	if err := (sim.Map{}).Simulate(sys, 200, initial, nil, nil); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(initial); i++ {
		if d := math.Abs(math.Sin((initial[i] - initial[0]) / 2)); d > 1e-6 {
			t.Errorf("node %d out of phase by %g", i, d)
		}
	}
}

func TestKuramotoOscillatorLocks(t *testing.T) {
	sys := network.New(network.WithSeed(3))
	sys.RegisterNodeDynamic(KuramotoOscillator{})
	if err := sys.RingGraph(3, 1, KuramotoOscillatorName, network.NoArcDynamicName, true); err != nil {
		t.Fatal(err)
	}

	initial := dynamo.State{0, 0.4, 0.8}
	s := sim.OdeFixed{StepSize: 0.01}
	if err := s.Simulate(sys, 40, initial, nil, nil); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(initial); i++ {
		if d := math.Abs(math.Sin((initial[i] - initial[0]) / 2)); d > 1e-4 {
			t.Errorf("node %d out of phase by %g", i, d)
		}
	}
}
