// Package optim sweeps dynamic parameters over a grid and keeps the point
// that minimises a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/netevo/internal/network"
)

var ErrNoResult = errors.New("optim: no grid point produced the metric")

// RunFunc evaluates one grid point and returns its metrics.
type RunFunc func(ctx context.Context, params map[int]float64) (map[string]float64, error)

// Point is one evaluated grid point.
type Point struct {
	Params map[int]float64
	Value  float64
}

// GridSearch walks the cartesian product of the value lists, one list per
// parameter index.
type GridSearch struct {
	indices []int
	ranges  [][]float64
}

func NewGridSearch(ranges map[int][]float64) *GridSearch {
	g := &GridSearch{}
	for i := range ranges {
		g.indices = append(g.indices, i)
	}
	sort.Ints(g.indices)
	for _, i := range g.indices {
		g.ranges = append(g.ranges, ranges[i])
	}
	return g
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point in order and returns the one with the
// smallest metric. Points whose run fails or lacks the metric are logged and
// skipped. Every evaluated point is returned as well.
func (g *GridSearch) Search(ctx context.Context, run RunFunc, metricName string) (Point, []Point, error) {
	best := Point{Value: math.Inf(1)}
	var all []Point

	err := g.searchRecursive(ctx, 0, make(map[int]float64), func(params map[int]float64) {
		metrics, err := run(ctx, params)
		if err != nil {
			logrus.Warnf("optim: grid point %v: %v", params, err)
			return
		}
		val, ok := metrics[metricName]
		if !ok {
			logrus.Debugf("optim: grid point %v has no %s", params, metricName)
			return
		}
		p := Point{Params: params, Value: val}
		all = append(all, p)
		if val < best.Value {
			best = p
		}
	})
	if err != nil {
		return best, all, err
	}
	if best.Params == nil {
		return best, all, ErrNoResult
	}
	return best, all, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[int]float64, visit func(map[int]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.indices) {
		if depth > 0 {
			visit(current)
		}
		return nil
	}

	for _, val := range g.ranges[depth] {
		newParams := make(map[int]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[g.indices[depth]] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

// Apply overwrites the given parameter indices on every node running the
// named dynamic. Parameter lists are grown with zeros when needed.
func Apply(sys *network.System, dynamic string, params map[int]float64) int {
	n := 0
	for _, v := range sys.Nodes() {
		d := sys.NodeData(v)
		if d.Dynamic == nil || d.Dynamic.Name() != dynamic {
			continue
		}
		for i, val := range params {
			for len(d.Params) <= i {
				d.Params = append(d.Params, 0)
			}
			d.Params[i] = val
		}
		n++
	}
	return n
}

// ParseRange reads "index=v1,v2,..." or "index=start:stop:step".
func ParseRange(s string) (int, []float64, error) {
	key, list, ok := strings.Cut(s, "=")
	if !ok {
		return 0, nil, fmt.Errorf("optim: range %q: missing '='", s)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || idx < 0 {
		return 0, nil, fmt.Errorf("optim: range %q: bad parameter index", s)
	}

	if parts := strings.Split(list, ":"); len(parts) == 3 {
		var bounds [3]float64
		for i, p := range parts {
			if bounds[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
				return 0, nil, fmt.Errorf("optim: range %q: %w", s, err)
			}
		}
		start, stop, step := bounds[0], bounds[1], bounds[2]
		if step <= 0 || stop < start {
			return 0, nil, fmt.Errorf("optim: range %q: need start <= stop and step > 0", s)
		}
		var vals []float64
		for i := 0; ; i++ {
			v := start + float64(i)*step
			if v > stop+step*1e-9 {
				break
			}
			vals = append(vals, v)
		}
		return idx, vals, nil
	}

	var vals []float64
	for _, p := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, nil, fmt.Errorf("optim: range %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return idx, vals, nil
}
