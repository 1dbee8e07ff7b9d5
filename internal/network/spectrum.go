package network

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
)

// MatrixKind selects the matrix whose spectrum is computed.
type MatrixKind int

const (
	// Laplacian has -out-degree on the diagonal and 1 at (source, target).
	Laplacian MatrixKind = iota
	Adjacency
)

func (k MatrixKind) String() string {
	switch k {
	case Laplacian:
		return "laplacian"
	case Adjacency:
		return "adjacency"
	}
	return fmt.Sprintf("MatrixKind(%d)", int(k))
}

func ParseMatrixKind(s string) (MatrixKind, error) {
	switch s {
	case "laplacian", "":
		return Laplacian, nil
	case "adjacency":
		return Adjacency, nil
	}
	return 0, fmt.Errorf("network: unknown matrix kind %q", s)
}

// WeaklyConnectedComponents counts components of the graph with arc
// directions ignored. Self-loops do not matter and an empty graph has none.
func (s *System) WeaklyConnectedComponents() int {
	if s.nodeCount == 0 {
		return 0
	}
	g := simple.NewUndirectedGraph()
	for v, e := range s.nodes {
		if e != nil {
			g.AddNode(simple.Node(v))
		}
	}
	for _, e := range s.arcs {
		if e == nil || e.source == e.target {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(e.source), simple.Node(e.target)))
	}
	return len(topo.ConnectedComponents(g))
}

// Matrix builds the Laplacian or adjacency matrix indexed by node index. It
// returns nil for an empty graph.
func (s *System) Matrix(kind MatrixKind) *mat.Dense {
	n := s.nodeCount
	if n == 0 {
		return nil
	}
	s.RefreshStateIDs()
	m := mat.NewDense(n, n, nil)
	for _, a := range s.Arcs() {
		i := s.NodeIndex(s.Source(a))
		j := s.NodeIndex(s.Target(a))
		if kind == Laplacian && i == j {
			continue
		}
		m.Set(i, j, 1)
	}
	if kind == Laplacian {
		for _, v := range s.Nodes() {
			i := s.NodeIndex(v)
			m.Set(i, i, -float64(s.OutDegree(v)))
		}
	}
	return m
}

// Eigenvalues returns the eigenvalues of the chosen matrix in the order the
// solver reports them.
func (s *System) Eigenvalues(kind MatrixKind) ([]complex128, error) {
	m := s.Matrix(kind)
	if m == nil {
		return nil, nil
	}
	var eig mat.Eigen
	if !eig.Factorize(m, mat.EigenNone) {
		return nil, ErrEigenFailed
	}
	return eig.Values(nil), nil
}

// Eigensystem returns eigenvalues and right eigenvectors (as columns).
func (s *System) Eigensystem(kind MatrixKind) ([]complex128, *mat.CDense, error) {
	m := s.Matrix(kind)
	if m == nil {
		return nil, nil, nil
	}
	var eig mat.Eigen
	if !eig.Factorize(m, mat.EigenRight) {
		return nil, nil, ErrEigenFailed
	}
	var vecs mat.CDense
	eig.VectorsTo(&vecs)
	return eig.Values(nil), &vecs, nil
}
