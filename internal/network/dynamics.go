package network

import "github.com/san-kum/netevo/internal/dynamo"

// NodeDynamic describes how the state of a node evolves. One value is shared
// by every node using it, so implementations keep per-node data in
// NodeData.Params.
//
// Derive writes the derivative (or next state, for maps) of node v into dx,
// starting at sys.StateID(v). x is the full system state and must not be
// modified.
type NodeDynamic interface {
	Name() string
	States() int
	DefaultParams(sys *System, v Node) []float64
	Derive(sys *System, v Node, x, dx dynamo.State, t float64)
}

// ArcDynamic is the arc counterpart of NodeDynamic.
type ArcDynamic interface {
	Name() string
	States() int
	DefaultParams(sys *System, a Arc) []float64
	Derive(sys *System, a Arc, x, dx dynamo.State, t float64)
}

// Names of the dynamics every System registers on creation.
const (
	NoNodeDynamicName = "NoNodeDynamic"
	NoArcDynamicName  = "NoArcDynamic"
)

type noNodeDynamic struct{}

func (noNodeDynamic) Name() string                                              { return NoNodeDynamicName }
func (noNodeDynamic) States() int                                               { return 0 }
func (noNodeDynamic) DefaultParams(*System, Node) []float64                     { return nil }
func (noNodeDynamic) Derive(*System, Node, dynamo.State, dynamo.State, float64) {}

type noArcDynamic struct{}

func (noArcDynamic) Name() string                                             { return NoArcDynamicName }
func (noArcDynamic) States() int                                              { return 0 }
func (noArcDynamic) DefaultParams(*System, Arc) []float64                     { return nil }
func (noArcDynamic) Derive(*System, Arc, dynamo.State, dynamo.State, float64) {}

var (
	NoNodeDynamic NodeDynamic = noNodeDynamic{}
	NoArcDynamic  ArcDynamic  = noArcDynamic{}
)
