package network

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Node and Arc are handles into a System. A handle is never reused within a
// System and stays valid in every Clone of it.
type (
	Node int
	Arc  int
)

// Position is informational only; dynamics never read it.
type Position struct {
	X, Y, Z float64
}

type NodeData struct {
	Key        int
	Name       string
	Position   Position
	Properties []float64
	Dynamic    NodeDynamic
	Params     []float64
}

type ArcData struct {
	Name       string
	Weight     float64
	Properties []float64
	Dynamic    ArcDynamic
	Params     []float64
}

// Edge holds the two arcs created by AddEdge.
type Edge struct {
	Reverse Arc // v -> u
	Forward Arc // u -> v
}

type nodeEntry struct {
	data    NodeData
	in, out []Arc
	idx     int
}

type arcEntry struct {
	source, target Node
	data           ArcData
	idx            int
}

// System is a graph plus the dynamics registries and state layout derived
// from it. It is not safe for concurrent use.
type System struct {
	nodes     []*nodeEntry // nil once erased
	arcs      []*arcEntry
	nodeCount int
	arcCount  int

	nodeDyn    map[string]NodeDynamic
	arcDyn     map[string]ArcDynamic
	nodeStates int
	arcStates  int

	nodeIdxValid bool
	arcIdxValid  bool

	nextKey int
	rng     *rand.Rand
}

type Option func(*System)

func WithSeed(seed int64) Option {
	return func(s *System) { s.rng = rand.New(rand.NewSource(seed)) }
}

// New returns an empty System with the no-op dynamics registered.
func New(opts ...Option) *System {
	s := &System{
		nodeDyn:      map[string]NodeDynamic{},
		arcDyn:       map[string]ArcDynamic{},
		nodeIdxValid: true,
		arcIdxValid:  true,
	}
	s.RegisterNodeDynamic(NoNodeDynamic)
	s.RegisterArcDynamic(NoArcDynamic)
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

func (s *System) Seed(seed int64) { s.rng.Seed(seed) }

func (s *System) Rand() *rand.Rand { return s.rng }

// RegisterNodeDynamic adds d under its name, replacing any previous entry,
// and widens the node slot if needed.
func (s *System) RegisterNodeDynamic(d NodeDynamic) {
	s.nodeDyn[d.Name()] = d
	if d.States() > s.nodeStates {
		s.nodeStates = d.States()
	}
}

func (s *System) RegisterArcDynamic(d ArcDynamic) {
	s.arcDyn[d.Name()] = d
	if d.States() > s.arcStates {
		s.arcStates = d.States()
	}
}

func (s *System) NodeDynamic(name string) (NodeDynamic, bool) {
	d, ok := s.nodeDyn[name]
	return d, ok
}

func (s *System) ArcDynamic(name string) (ArcDynamic, bool) {
	d, ok := s.arcDyn[name]
	return d, ok
}

// NodeDynamics returns the registered node dynamics names in sorted order.
func (s *System) NodeDynamics() []string {
	names := make([]string, 0, len(s.nodeDyn))
	for n := range s.nodeDyn {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *System) ArcDynamics() []string {
	names := make([]string, 0, len(s.arcDyn))
	for n := range s.arcDyn {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *System) NodeStates() int { return s.nodeStates }
func (s *System) ArcStates() int  { return s.arcStates }

func (s *System) AddNode(dynamic string) (Node, error) {
	return s.AddNamedNode("", dynamic)
}

func (s *System) AddNamedNode(name, dynamic string) (Node, error) {
	d, ok := s.nodeDyn[dynamic]
	if !ok {
		return -1, fmt.Errorf("%w: node dynamic %q", ErrUnknownDynamics, dynamic)
	}
	v := Node(len(s.nodes))
	e := &nodeEntry{data: NodeData{Key: s.nextKey, Name: name, Dynamic: d}}
	s.nextKey++
	s.nodes = append(s.nodes, e)
	s.nodeCount++
	s.nodeIdxValid = false
	e.data.Params = d.DefaultParams(s, v)
	return v, nil
}

func (s *System) AddArc(source, target Node, dynamic string) (Arc, error) {
	return s.AddNamedArc("", source, target, dynamic)
}

func (s *System) AddNamedArc(name string, source, target Node, dynamic string) (Arc, error) {
	d, ok := s.arcDyn[dynamic]
	if !ok {
		return -1, fmt.Errorf("%w: arc dynamic %q", ErrUnknownDynamics, dynamic)
	}
	src, err := s.node(source)
	if err != nil {
		return -1, err
	}
	tgt, err := s.node(target)
	if err != nil {
		return -1, err
	}
	a := Arc(len(s.arcs))
	e := &arcEntry{
		source: source,
		target: target,
		data:   ArcData{Name: name, Weight: 1.0, Dynamic: d},
	}
	s.arcs = append(s.arcs, e)
	src.out = append(src.out, a)
	tgt.in = append(tgt.in, a)
	s.arcCount++
	s.arcIdxValid = false
	e.data.Params = d.DefaultParams(s, a)
	return a, nil
}

// AddEdge creates the arc v->u and then u->v with the same dynamic.
func (s *System) AddEdge(u, v Node, dynamic string) (Edge, error) {
	rev, err := s.AddArc(v, u, dynamic)
	if err != nil {
		return Edge{}, err
	}
	fwd, err := s.AddArc(u, v, dynamic)
	if err != nil {
		return Edge{}, err
	}
	return Edge{Reverse: rev, Forward: fwd}, nil
}

// EraseNode removes v together with every arc incident to it.
func (s *System) EraseNode(v Node) error {
	e, err := s.node(v)
	if err != nil {
		return err
	}
	for _, a := range append(append([]Arc(nil), e.in...), e.out...) {
		if s.ValidArc(a) {
			s.eraseArc(a)
		}
	}
	s.nodes[v] = nil
	s.nodeCount--
	s.nodeIdxValid = false
	return nil
}

func (s *System) EraseArc(a Arc) error {
	if !s.ValidArc(a) {
		return fmt.Errorf("%w: %d", ErrInvalidArc, a)
	}
	s.eraseArc(a)
	return nil
}

func (s *System) eraseArc(a Arc) {
	e := s.arcs[a]
	src := s.nodes[e.source]
	tgt := s.nodes[e.target]
	src.out = removeArc(src.out, a)
	tgt.in = removeArc(tgt.in, a)
	s.arcs[a] = nil
	s.arcCount--
	s.arcIdxValid = false
}

func removeArc(list []Arc, a Arc) []Arc {
	for i, x := range list {
		if x == a {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Clear removes every node and arc and resets key assignment. Registries
// are kept.
func (s *System) Clear() {
	s.nodes = nil
	s.arcs = nil
	s.nodeCount = 0
	s.arcCount = 0
	s.nodeIdxValid = true
	s.arcIdxValid = true
	s.nextKey = 0
}

// Clone returns an independent deep copy with identical handles and keys.
// The copy gets its own generator seeded from this one.
func (s *System) Clone() *System {
	c := &System{
		nodes:        make([]*nodeEntry, len(s.nodes)),
		arcs:         make([]*arcEntry, len(s.arcs)),
		nodeCount:    s.nodeCount,
		arcCount:     s.arcCount,
		nodeDyn:      make(map[string]NodeDynamic, len(s.nodeDyn)),
		arcDyn:       make(map[string]ArcDynamic, len(s.arcDyn)),
		nodeStates:   s.nodeStates,
		arcStates:    s.arcStates,
		nodeIdxValid: s.nodeIdxValid,
		arcIdxValid:  s.arcIdxValid,
		nextKey:      s.nextKey,
		rng:          rand.New(rand.NewSource(s.rng.Int63())),
	}
	for k, d := range s.nodeDyn {
		c.nodeDyn[k] = d
	}
	for k, d := range s.arcDyn {
		c.arcDyn[k] = d
	}
	for i, e := range s.nodes {
		if e == nil {
			continue
		}
		ne := *e
		ne.in = append([]Arc(nil), e.in...)
		ne.out = append([]Arc(nil), e.out...)
		ne.data.Properties = cloneFloats(e.data.Properties)
		ne.data.Params = cloneFloats(e.data.Params)
		c.nodes[i] = &ne
	}
	for i, e := range s.arcs {
		if e == nil {
			continue
		}
		ae := *e
		ae.data.Properties = cloneFloats(e.data.Properties)
		ae.data.Params = cloneFloats(e.data.Params)
		c.arcs[i] = &ae
	}
	return c
}

func cloneFloats(f []float64) []float64 {
	if f == nil {
		return nil
	}
	return append([]float64(nil), f...)
}

// NextKey is the key the next added node will receive.
func (s *System) NextKey() int { return s.nextKey }

// SetNextKey lets a codec restore keys read from storage.
func (s *System) SetNextKey(k int) { s.nextKey = k }

// ResetKeys renumbers live nodes 0..N-1 in iteration order.
func (s *System) ResetKeys() {
	k := 0
	for _, e := range s.nodes {
		if e != nil {
			e.data.Key = k
			k++
		}
	}
	s.nextKey = k
}

func (s *System) node(v Node) (*nodeEntry, error) {
	if v < 0 || int(v) >= len(s.nodes) || s.nodes[v] == nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNode, v)
	}
	return s.nodes[v], nil
}

func (s *System) ValidNode(v Node) bool {
	return v >= 0 && int(v) < len(s.nodes) && s.nodes[v] != nil
}

func (s *System) ValidArc(a Arc) bool {
	return a >= 0 && int(a) < len(s.arcs) && s.arcs[a] != nil
}

func (s *System) CountNodes() int { return s.nodeCount }
func (s *System) CountArcs() int  { return s.arcCount }

// Nodes returns the live nodes in iteration order.
func (s *System) Nodes() []Node {
	out := make([]Node, 0, s.nodeCount)
	for i, e := range s.nodes {
		if e != nil {
			out = append(out, Node(i))
		}
	}
	return out
}

func (s *System) Arcs() []Arc {
	out := make([]Arc, 0, s.arcCount)
	for i, e := range s.arcs {
		if e != nil {
			out = append(out, Arc(i))
		}
	}
	return out
}

// GetNode returns the i-th live node in iteration order.
func (s *System) GetNode(i int) (Node, bool) {
	for v, e := range s.nodes {
		if e == nil {
			continue
		}
		if i == 0 {
			return Node(v), true
		}
		i--
	}
	return -1, false
}

func (s *System) GetArc(i int) (Arc, bool) {
	for a, e := range s.arcs {
		if e == nil {
			continue
		}
		if i == 0 {
			return Arc(a), true
		}
		i--
	}
	return -1, false
}

// NodeData returns the mutable record of v, or nil if v is not live.
func (s *System) NodeData(v Node) *NodeData {
	if !s.ValidNode(v) {
		return nil
	}
	return &s.nodes[v].data
}

func (s *System) ArcData(a Arc) *ArcData {
	if !s.ValidArc(a) {
		return nil
	}
	return &s.arcs[a].data
}

func (s *System) Source(a Arc) Node { return s.arcs[a].source }
func (s *System) Target(a Arc) Node { return s.arcs[a].target }

// InArcs returns the arcs ending at v. The slice must not be modified.
func (s *System) InArcs(v Node) []Arc  { return s.nodes[v].in }
func (s *System) OutArcs(v Node) []Arc { return s.nodes[v].out }

func (s *System) OutDegree(v Node) int { return len(s.nodes[v].out) }

// FindArc returns the first arc from u to v.
func (s *System) FindArc(u, v Node) (Arc, bool) {
	if !s.ValidNode(u) || !s.ValidNode(v) {
		return -1, false
	}
	for _, a := range s.nodes[u].out {
		if s.arcs[a].target == v {
			return a, true
		}
	}
	return -1, false
}
