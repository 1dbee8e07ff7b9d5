package network

import "github.com/san-kum/netevo/internal/dynamo"

// RefreshStateIDs renumbers stale node and arc indices 0..n-1 in iteration
// order. It is a no-op when both are valid.
func (s *System) RefreshStateIDs() {
	if !s.nodeIdxValid {
		i := 0
		for _, e := range s.nodes {
			if e != nil {
				e.idx = i
				i++
			}
		}
		s.nodeIdxValid = true
	}
	if !s.arcIdxValid {
		i := 0
		for _, e := range s.arcs {
			if e != nil {
				e.idx = i
				i++
			}
		}
		s.arcIdxValid = true
	}
}

func (s *System) ValidStateIDs() bool {
	return s.nodeIdxValid && s.arcIdxValid
}

func (s *System) NodeIndex(v Node) int { return s.nodes[v].idx }
func (s *System) ArcIndex(a Arc) int   { return s.arcs[a].idx }

// StateID is the offset of v's slot. The result is stale unless
// ValidStateIDs holds.
func (s *System) StateID(v Node) int {
	return s.nodeStates * s.NodeIndex(v)
}

// ArcStateID is the offset of a's slot, after all node slots.
func (s *System) ArcStateID(a Arc) int {
	return s.nodeStates*s.nodeCount + s.arcStates*s.ArcIndex(a)
}

// TotalStates is the length of the state vector for the current graph.
func (s *System) TotalStates() int {
	return s.nodeCount*s.nodeStates + s.arcCount*s.arcStates
}

// Evaluate fills dx from x by calling every node dynamic and then every arc
// dynamic. Both indices must be valid.
func (s *System) Evaluate(x, dx dynamo.State, t float64) {
	if s.nodeStates > 0 {
		for v, e := range s.nodes {
			if e != nil {
				e.data.Dynamic.Derive(s, Node(v), x, dx, t)
			}
		}
	}
	if s.arcStates > 0 {
		for a, e := range s.arcs {
			if e != nil {
				e.data.Dynamic.Derive(s, Arc(a), x, dx, t)
			}
		}
	}
}
