package evolve

import (
	"math/rand"

	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/network"
)

// AddNodeOp adds an isolated node with the given dynamic.
func AddNodeOp(dynamic string) MutationOp {
	return func(sys *network.System, log changelog.ChangeLog, _ *rand.Rand) error {
		v, err := sys.AddNode(dynamic)
		if err != nil {
			return err
		}
		log.AddNode(sys, v)
		return nil
	}
}

// DeleteNodeOp removes a random node and its arcs.
func DeleteNodeOp() MutationOp {
	return func(sys *network.System, log changelog.ChangeLog, rng *rand.Rand) error {
		v, ok := randomNode(sys, rng)
		if !ok {
			return nil
		}
		seen := map[network.Arc]bool{}
		for _, list := range [][]network.Arc{sys.InArcs(v), sys.OutArcs(v)} {
			for _, a := range list {
				if !seen[a] {
					seen[a] = true
					log.EraseArc(sys, a)
				}
			}
		}
		log.EraseNode(sys, v)
		return sys.EraseNode(v)
	}
}

// AddEdgeOp links a random pair of distinct, unlinked nodes. When
// undirected the reverse arc is created too.
func AddEdgeOp(dynamic string, undirected bool) MutationOp {
	return func(sys *network.System, log changelog.ChangeLog, rng *rand.Rand) error {
		u, v, ok := randomNonAdjacentPair(sys, rng)
		if !ok {
			return nil
		}
		return addLink(sys, log, u, v, dynamic, undirected)
	}
}

// DeleteEdgeOp removes a random arc, and its partner when undirected.
func DeleteEdgeOp(undirected bool) MutationOp {
	return func(sys *network.System, log changelog.ChangeLog, rng *rand.Rand) error {
		a, ok := randomArc(sys, rng)
		if !ok {
			return nil
		}
		_, err := removeLink(sys, log, a, undirected)
		return err
	}
}

// RewireEdgeOp moves a random edge to a random unlinked pair, keeping the
// dynamic and weight of the removed arc.
func RewireEdgeOp(undirected bool) MutationOp {
	return func(sys *network.System, log changelog.ChangeLog, rng *rand.Rand) error {
		return rewireOnce(sys, log, rng, undirected)
	}
}

// PerturbParamsOp adds N(0, sigma) noise to the parameters of a random node.
func PerturbParamsOp(sigma float64) MutationOp {
	return func(sys *network.System, log changelog.ChangeLog, rng *rand.Rand) error {
		v, ok := randomNode(sys, rng)
		if !ok {
			return nil
		}
		d := sys.NodeData(v)
		for i := range d.Params {
			d.Params[i] += rng.NormFloat64() * sigma
		}
		log.UpdateNode(sys, v)
		return nil
	}
}

// PerturbWeightOp adds N(0, sigma) noise to the weight of a random arc.
func PerturbWeightOp(sigma float64) MutationOp {
	return func(sys *network.System, log changelog.ChangeLog, rng *rand.Rand) error {
		a, ok := randomArc(sys, rng)
		if !ok {
			return nil
		}
		sys.ArcData(a).Weight += rng.NormFloat64() * sigma
		log.UpdateArc(sys, a)
		return nil
	}
}

// DuplicateNodeOp copies a random node, its parameters and all its arcs.
func DuplicateNodeOp() MutationOp {
	return func(sys *network.System, log changelog.ChangeLog, rng *rand.Rand) error {
		v, ok := randomNode(sys, rng)
		if !ok {
			return nil
		}
		src := sys.NodeData(v)
		c, err := sys.AddNamedNode(src.Name, src.Dynamic.Name())
		if err != nil {
			return err
		}
		cd := sys.NodeData(c)
		cd.Position = src.Position
		cd.Properties = append([]float64(nil), src.Properties...)
		cd.Params = append([]float64(nil), src.Params...)
		log.AddNode(sys, c)

		out := append([]network.Arc(nil), sys.OutArcs(v)...)
		in := append([]network.Arc(nil), sys.InArcs(v)...)
		for _, a := range out {
			t := sys.Target(a)
			if t == v {
				t = c
			}
			if err := copyArc(sys, log, a, c, t); err != nil {
				return err
			}
		}
		for _, a := range in {
			s := sys.Source(a)
			if s == v {
				continue // self-loop already copied
			}
			if err := copyArc(sys, log, a, s, c); err != nil {
				return err
			}
		}
		return nil
	}
}

func copyArc(sys *network.System, log changelog.ChangeLog, a network.Arc, source, target network.Node) error {
	d := sys.ArcData(a)
	n, err := sys.AddNamedArc(d.Name, source, target, d.Dynamic.Name())
	if err != nil {
		return err
	}
	nd := sys.ArcData(n)
	nd.Weight = d.Weight
	nd.Properties = append([]float64(nil), d.Properties...)
	nd.Params = append([]float64(nil), d.Params...)
	log.AddArc(sys, source, target)
	return nil
}

func randomNode(sys *network.System, rng *rand.Rand) (network.Node, bool) {
	if sys.CountNodes() == 0 {
		return -1, false
	}
	return sys.GetNode(rng.Intn(sys.CountNodes()))
}

func randomArc(sys *network.System, rng *rand.Rand) (network.Arc, bool) {
	if sys.CountArcs() == 0 {
		return -1, false
	}
	return sys.GetArc(rng.Intn(sys.CountArcs()))
}

// randomNonAdjacentPair samples distinct nodes with no arc between them in
// either direction.
func randomNonAdjacentPair(sys *network.System, rng *rand.Rand) (network.Node, network.Node, bool) {
	n := sys.CountNodes()
	if n < 2 {
		return -1, -1, false
	}
	nodes := sys.Nodes()
	for tries := 0; tries < 4*n*n; tries++ {
		u := nodes[rng.Intn(n)]
		v := nodes[rng.Intn(n)]
		if u == v {
			continue
		}
		if _, ok := sys.FindArc(u, v); ok {
			continue
		}
		if _, ok := sys.FindArc(v, u); ok {
			continue
		}
		return u, v, true
	}
	return -1, -1, false
}

func addLink(sys *network.System, log changelog.ChangeLog, u, v network.Node, dynamic string, undirected bool) error {
	if undirected {
		if _, err := sys.AddEdge(u, v, dynamic); err != nil {
			return err
		}
		log.AddArc(sys, v, u)
		log.AddArc(sys, u, v)
		return nil
	}
	if _, err := sys.AddArc(u, v, dynamic); err != nil {
		return err
	}
	log.AddArc(sys, u, v)
	return nil
}

// removeLink erases a and, when undirected, one reverse arc. It returns a
// copy of the erased arc's data.
func removeLink(sys *network.System, log changelog.ChangeLog, a network.Arc, undirected bool) (network.ArcData, error) {
	data := *sys.ArcData(a)
	u, v := sys.Source(a), sys.Target(a)
	if undirected && u != v {
		if r, ok := sys.FindArc(v, u); ok {
			log.EraseArc(sys, r)
			if err := sys.EraseArc(r); err != nil {
				return data, err
			}
		}
	}
	log.EraseArc(sys, a)
	return data, sys.EraseArc(a)
}

func rewireOnce(sys *network.System, log changelog.ChangeLog, rng *rand.Rand, undirected bool) error {
	a, ok := randomArc(sys, rng)
	if !ok {
		return nil
	}
	oldU, oldV := sys.Source(a), sys.Target(a)
	data, err := removeLink(sys, log, a, undirected)
	if err != nil {
		return err
	}
	u, v, ok := randomNonAdjacentPair(sys, rng)
	if !ok {
		u, v = oldU, oldV
	}
	if err := addLink(sys, log, u, v, data.Dynamic.Name(), undirected); err != nil {
		return err
	}
	pairs := [][2]network.Node{{u, v}}
	if undirected {
		pairs = append(pairs, [2]network.Node{v, u})
	}
	for _, pair := range pairs {
		if arc, ok := sys.FindArc(pair[0], pair[1]); ok {
			sys.ArcData(arc).Weight = data.Weight
		}
	}
	return nil
}

// UndirectedRewire moves between 1 and 10 undirected edges per call, the
// count drawn as floor(Exp(1)) clamped to that range. Node and arc counts
// of a reciprocal graph are preserved.
type UndirectedRewire struct {
	rng *rand.Rand
}

func NewUndirectedRewire(seed int64) *UndirectedRewire {
	return &UndirectedRewire{rng: rand.New(rand.NewSource(seed))}
}

func (m *UndirectedRewire) Mutate(sys *network.System, log changelog.ChangeLog) {
	n := int(m.rng.ExpFloat64())
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}
	for i := 0; i < n; i++ {
		if err := rewireOnce(sys, log, m.rng, true); err != nil {
			return
		}
	}
}
