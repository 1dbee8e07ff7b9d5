package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/physics"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch(map[int][]float64{
		0: {-1, 0, 1, 2},
		3: {0.5, 1.5},
	})
	if g.Size() != 8 {
		t.Fatalf("expected 8 points, got %d", g.Size())
	}

	run := func(_ context.Context, p map[int]float64) (map[string]float64, error) {
		a, b := p[0]-1, p[3]-1.5
		return map[string]float64{"cost": a*a + b*b}, nil
	}
	best, all, err := g.Search(context.Background(), run, "cost")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 8 {
		t.Errorf("expected 8 evaluated points, got %d", len(all))
	}
	if best.Params[0] != 1 || best.Params[3] != 1.5 || best.Value != 0 {
		t.Errorf("unexpected best %+v", best)
	}
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g := NewGridSearch(map[int][]float64{0: {1, 2, 3}})
	run := func(_ context.Context, p map[int]float64) (map[string]float64, error) {
		switch p[0] {
		case 1:
			return nil, errors.New("diverged")
		case 2:
			return map[string]float64{"other": 0}, nil
		}
		return map[string]float64{"cost": p[0]}, nil
	}
	best, all, err := g.Search(context.Background(), run, "cost")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 1 || best.Params[0] != 3 {
		t.Errorf("unexpected result %+v, %v", best, all)
	}
}

func TestGridSearchNoResult(t *testing.T) {
	g := NewGridSearch(map[int][]float64{0: {1}})
	run := func(context.Context, map[int]float64) (map[string]float64, error) {
		return nil, errors.New("fail")
	}
	if _, _, err := g.Search(context.Background(), run, "cost"); !errors.Is(err, ErrNoResult) {
		t.Errorf("expected ErrNoResult, got %v", err)
	}

	empty := NewGridSearch(nil)
	if _, all, err := empty.Search(context.Background(), run, "cost"); !errors.Is(err, ErrNoResult) || len(all) != 0 {
		t.Errorf("empty grid: %v, %v", all, err)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch(map[int][]float64{0: {1, 2}})
	calls := 0
	run := func(context.Context, map[int]float64) (map[string]float64, error) {
		calls++
		return map[string]float64{"cost": 0}, nil
	}
	if _, _, err := g.Search(ctx, run, "cost"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no runs, got %d", calls)
	}
}

func TestApply(t *testing.T) {
	sys := network.New()
	physics.Register(sys)
	u, _ := sys.AddNode(physics.RosslerName)
	v, _ := sys.AddNode(physics.LorenzName)

	if n := Apply(sys, physics.RosslerName, map[int]float64{3: 0.7, 5: 1}); n != 1 {
		t.Errorf("expected 1 node updated, got %d", n)
	}
	p := sys.NodeData(u).Params
	if len(p) != 6 || p[3] != 0.7 || p[4] != 0 || p[5] != 1 {
		t.Errorf("unexpected params %v", p)
	}
	if sys.NodeData(v).Params[0] != 10 {
		t.Errorf("other dynamics should be untouched: %v", sys.NodeData(v).Params)
	}
}

func TestParseRange(t *testing.T) {
	idx, vals, err := ParseRange("3=0.1, 0.2,0.5")
	if err != nil || idx != 3 || len(vals) != 3 || vals[2] != 0.5 {
		t.Errorf("list: %d %v %v", idx, vals, err)
	}

	idx, vals, err = ParseRange("0=0:1:0.25")
	if err != nil || idx != 0 || len(vals) != 5 || math.Abs(vals[4]-1) > 1e-12 {
		t.Errorf("span: %d %v %v", idx, vals, err)
	}

	for _, bad := range []string{"3", "x=1", "-1=1", "0=a", "0=1:0:1", "0=0:1:0", "0=0:1:b"} {
		if _, _, err := ParseRange(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
