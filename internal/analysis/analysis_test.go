package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/integrators"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

// growthNode is dx/dt = x.
type growthNode struct{}

func (growthNode) Name() string                                          { return "growth" }
func (growthNode) States() int                                           { return 1 }
func (growthNode) DefaultParams(*network.System, network.Node) []float64 { return nil }
func (growthNode) Derive(sys *network.System, v network.Node, x, dx dynamo.State, t float64) {
	id := sys.StateID(v)
	dx[id] = x[id]
}

func sine(freq, dt float64, n int) *sim.Trajectory {
	traj := &sim.Trajectory{}
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		traj.Observe(dynamo.State{3 + math.Sin(2*math.Pi*freq*t), 1}, t)
	}
	return traj
}

func TestDominantFrequency(t *testing.T) {
	got, err := DominantFrequency(sine(0.5, 0.1, 200), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{5, 5, 5, 5, 5, 5, 5})
	if len(ps) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(ps))
	}
	for k, p := range ps {
		if p > 1e-18 {
			t.Errorf("bin %d of a constant signal is %g", k, p)
		}
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for no data")
	}
}

func TestDominantFrequencyErrors(t *testing.T) {
	if _, err := DominantFrequency(sine(1, 0.1, 3), 0); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}

	traj := sine(1, 0.1, 10)
	traj.Times[5] += 0.05
	if _, err := DominantFrequency(traj, 0); !errors.Is(err, ErrIrregular) {
		t.Errorf("expected ErrIrregular, got %v", err)
	}

	if _, err := DominantFrequency(sine(1, 0.1, 10), 2); err == nil {
		t.Error("expected range error")
	}
}

func TestLyapunovExponentOfGrowth(t *testing.T) {
	sys := network.New()
	sys.RegisterNodeDynamic(growthNode{})
	if _, err := sys.AddNode("growth"); err != nil {
		t.Fatalf("add node: %v", err)
	}
	simulator := sim.OdeFixed{Stepper: integrators.RK4Kind, StepSize: 0.01}

	x0 := dynamo.State{1}
	lambda, err := LyapunovExponent(sys, simulator, x0, 1, 1e-6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lambda-1) > 1e-4 {
		t.Errorf("expected exponent near 1, got %f", lambda)
	}
	if x0[0] != 1 {
		t.Errorf("initial state modified: %v", x0)
	}
}

func TestLyapunovExponentInvalid(t *testing.T) {
	sys := network.New()
	sys.RegisterNodeDynamic(growthNode{})
	sys.AddNode("growth")
	simulator := sim.OdeFixed{Stepper: integrators.RK4Kind, StepSize: 0.01}

	if _, err := LyapunovExponent(sys, simulator, dynamo.State{1}, 0, 1e-6); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if l, err := LyapunovExponent(sys, simulator, nil, 1, 1e-6); err != nil || l != 0 {
		t.Errorf("empty state: %f, %v", l, err)
	}
}

// logisticNode is the map x -> r x (1 - x).
type logisticNode struct{}

func (logisticNode) Name() string                                          { return "logistic" }
func (logisticNode) States() int                                           { return 1 }
func (logisticNode) DefaultParams(*network.System, network.Node) []float64 { return []float64{3} }
func (logisticNode) Derive(sys *network.System, v network.Node, x, dx dynamo.State, t float64) {
	id := sys.StateID(v)
	r := sys.NodeData(v).Params[0]
	dx[id] = r * x[id] * (1 - x[id])
}

func TestBifurcationLogisticMap(t *testing.T) {
	sys := network.New()
	sys.RegisterNodeDynamic(logisticNode{})
	v, err := sys.AddNode("logistic")
	if err != nil {
		t.Fatalf("add node: %v", err)
	}
	set := func(r float64) { sys.NodeData(v).Params[0] = r }

	x0 := dynamo.State{0.2}
	data, err := Bifurcation(sys, sim.Map{}, x0, 0, []float64{2.5, 3.2}, set, 500, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 2 {
		t.Fatalf("expected 2 points, got %d", len(data))
	}
	if data[0].Param != 2.5 || len(data[0].Values) != 1 || math.Abs(data[0].Values[0]-0.6) > 1e-6 {
		t.Errorf("r=2.5 should settle on 0.6, got %+v", data[0])
	}
	if len(data[1].Values) != 2 {
		t.Fatalf("r=3.2 should settle on a 2-cycle, got %+v", data[1])
	}
	lo, hi := math.Min(data[1].Values[0], data[1].Values[1]), math.Max(data[1].Values[0], data[1].Values[1])
	if math.Abs(lo-0.5130) > 1e-3 || math.Abs(hi-0.7995) > 1e-3 {
		t.Errorf("unexpected 2-cycle %v, %v", lo, hi)
	}
	if x0[0] != 0.2 {
		t.Errorf("initial state modified: %v", x0)
	}

	if got := BifurcationScatter(data); len(got) != 3 || got[1].X != 3.2 {
		t.Errorf("unexpected scatter points %v", got)
	}
}

func TestBifurcationInvalid(t *testing.T) {
	sys := network.New()
	sys.RegisterNodeDynamic(logisticNode{})
	sys.AddNode("logistic")
	set := func(float64) {}

	if _, err := Bifurcation(sys, sim.Map{}, dynamo.State{0.2}, 1, []float64{3}, set, 10, 10); err == nil {
		t.Error("expected range error")
	}
	if _, err := Bifurcation(sys, sim.Map{}, dynamo.State{0.2}, 0, []float64{3}, set, 10, 0); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

// circle samples (cos t, sin t) every 0.1 up to t = 20.
func circle() *sim.Trajectory {
	traj := &sim.Trajectory{}
	for i := 0; i <= 200; i++ {
		tm := float64(i) * 0.1
		traj.Observe(dynamo.State{math.Cos(tm), math.Sin(tm)}, tm)
	}
	return traj
}

func TestPhasePortrait(t *testing.T) {
	points, err := PhasePortrait(circle(), 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 201 {
		t.Fatalf("expected 201 points, got %d", len(points))
	}
	for i, p := range points {
		if r := math.Hypot(p.X, p.Y); math.Abs(r-1) > 1e-12 {
			t.Errorf("point %d off the unit circle: %v", i, p)
		}
	}
	if _, err := PhasePortrait(circle(), 0, 2); err == nil {
		t.Error("expected range error")
	}
}

func TestPoincareSection(t *testing.T) {
	// sin crosses zero upwards at 2pi, 4pi and 6pi
	points, err := PoincareSection(circle(), 1, 0, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 crossings, got %d: %v", len(points), points)
	}
	for _, p := range points {
		if math.Abs(p.X-1) > 0.01 || math.Abs(p.Y) > 1e-12 {
			t.Errorf("crossing not at (1, 0): %v", p)
		}
	}
	if _, err := PoincareSection(circle(), 3, 0, 0, 1); err == nil {
		t.Error("expected range error")
	}
}

func TestScatter(t *testing.T) {
	out := Scatter([]Point{{0, 0}, {1, 1}, {math.NaN(), 2}}, 20, 10)
	if strings.Count(out, "\n") != 10 {
		t.Errorf("expected 10 rows, got:\n%s", out)
	}
	if strings.Count(out, "•") != 2 {
		t.Errorf("expected 2 points, got:\n%s", out)
	}
	if !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Errorf("expected axes through the origin, got:\n%s", out)
	}

	if Scatter(nil, 20, 10) != "" || Scatter([]Point{{math.Inf(1), 0}}, 20, 10) != "" {
		t.Error("expected empty plot without finite points")
	}
	if Scatter([]Point{{1, 1}}, 1, 10) != "" {
		t.Error("expected empty plot for a degenerate canvas")
	}
}
