package network

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RandomGraph replaces the graph with n nodes and includes each candidate
// arc with probability p. When undirected, each unordered pair is drawn once
// and becomes a reciprocal arc pair.
func (s *System) RandomGraph(p float64, n int, selfLoops bool, nodeDyn, arcDyn string, undirected bool) error {
	if n < 0 || p < 0 || p > 1 {
		return fmt.Errorf("%w: n=%d p=%g", ErrInvalidGenerator, n, p)
	}
	if err := s.checkDynamics(nodeDyn, arcDyn); err != nil {
		return err
	}
	s.Clear()
	nodes, err := s.addNodes(n, nodeDyn)
	if err != nil {
		return err
	}

	for i, u := range nodes {
		start := 0
		if undirected {
			start = i
		}
		for j := start; j < len(nodes); j++ {
			v := nodes[j]
			if u == v && !selfLoops {
				continue
			}
			if s.rng.Float64() >= p {
				continue
			}
			switch {
			case !undirected:
				_, err = s.AddArc(u, v, arcDyn)
			case u == v:
				_, err = s.AddArc(u, v, arcDyn)
			default:
				if _, dup := s.FindArc(u, v); !dup {
					_, err = s.AddEdge(u, v, arcDyn)
				}
			}
			if err != nil {
				return err
			}
		}
	}
	s.RefreshStateIDs()
	logrus.Debugf("random graph: %d nodes, %d arcs (p=%g)", s.nodeCount, s.arcCount, p)
	return nil
}

// RingGraph replaces the graph with a ring lattice of n nodes where node i
// links to nodes i+1..i+k (mod n).
func (s *System) RingGraph(n, k int, nodeDyn, arcDyn string, undirected bool) error {
	if n < 0 || k < 0 || (n > 0 && k >= n) {
		return fmt.Errorf("%w: n=%d k=%d", ErrInvalidGenerator, n, k)
	}
	if err := s.checkDynamics(nodeDyn, arcDyn); err != nil {
		return err
	}
	s.Clear()
	nodes, err := s.addNodes(n, nodeDyn)
	if err != nil {
		return err
	}
	for i, u := range nodes {
		for j := 1; j <= k; j++ {
			v := nodes[(i+j)%n]
			if undirected {
				_, err = s.AddEdge(u, v, arcDyn)
			} else {
				_, err = s.AddArc(u, v, arcDyn)
			}
			if err != nil {
				return err
			}
		}
	}
	s.RefreshStateIDs()
	logrus.Debugf("ring graph: %d nodes, %d arcs (k=%d)", s.nodeCount, s.arcCount, k)
	return nil
}

// checkDynamics runs before a generator clears the graph so a bad name
// leaves the old graph in place.
func (s *System) checkDynamics(nodeDyn, arcDyn string) error {
	if _, ok := s.nodeDyn[nodeDyn]; !ok {
		return fmt.Errorf("%w: node dynamic %q", ErrUnknownDynamics, nodeDyn)
	}
	if _, ok := s.arcDyn[arcDyn]; !ok {
		return fmt.Errorf("%w: arc dynamic %q", ErrUnknownDynamics, arcDyn)
	}
	return nil
}

func (s *System) addNodes(n int, dynamic string) ([]Node, error) {
	nodes := make([]Node, n)
	for i := range nodes {
		v, err := s.AddNode(dynamic)
		if err != nil {
			return nil, err
		}
		nodes[i] = v
	}
	return nodes, nil
}

// MakeUndirected adds a reverse arc, copying the arc data, wherever an arc
// has no partner in the opposite direction.
func (s *System) MakeUndirected() {
	for _, a := range s.Arcs() {
		e := s.arcs[a]
		if _, ok := s.FindArc(e.target, e.source); ok {
			continue
		}
		r, _ := s.AddArc(e.target, e.source, e.data.Dynamic.Name())
		rd := &s.arcs[r].data
		rd.Name = e.data.Name
		rd.Weight = e.data.Weight
		rd.Properties = cloneFloats(e.data.Properties)
		rd.Params = cloneFloats(e.data.Params)
	}
}
