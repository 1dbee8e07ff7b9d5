// Package changelog records structural edits and state emissions of a
// network so they can be replayed or rendered elsewhere. Records are
// buffered until Commit and dropped on Rollback; edits to the graph itself
// are applied eagerly by the caller.
package changelog

import (
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

// StepType tags the boundary passed to EndStep.
type StepType int

const (
	InitStep StepType = iota
	SimStep
	EvoStep
)

func (s StepType) String() string {
	switch s {
	case InitStep:
		return "init"
	case SimStep:
		return "sim"
	case EvoStep:
		return "evo"
	}
	return "unknown"
}

// ChangeLog observes a System. Adds and updates are reported after the edit
// is applied, erases before it, so the entity is live in every call.
type ChangeLog interface {
	AddNode(sys *network.System, v network.Node)
	AddArc(sys *network.System, source, target network.Node)
	EraseNode(sys *network.System, v network.Node)
	EraseArc(sys *network.System, a network.Arc)
	UpdateNode(sys *network.System, v network.Node)
	UpdateArc(sys *network.System, a network.Arc)
	NewState(sys *network.System, x dynamo.State)
	EndStep(step StepType)
	Rollback()
	Commit() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) AddNode(*network.System, network.Node)              {}
func (Nop) AddArc(*network.System, network.Node, network.Node) {}
func (Nop) EraseNode(*network.System, network.Node)            {}
func (Nop) EraseArc(*network.System, network.Arc)              {}
func (Nop) UpdateNode(*network.System, network.Node)           {}
func (Nop) UpdateArc(*network.System, network.Arc)             {}
func (Nop) NewState(*network.System, dynamo.State)             {}
func (Nop) EndStep(StepType)                                   {}
func (Nop) Rollback()                                          {}
func (Nop) Commit() error                                      { return nil }
