package changelog

import (
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

// Set forwards every call to its loggers in the order they were added.
type Set struct {
	loggers []ChangeLog
}

func NewSet(loggers ...ChangeLog) *Set {
	return &Set{loggers: loggers}
}

func (s *Set) Add(l ChangeLog) { s.loggers = append(s.loggers, l) }

func (s *Set) Len() int { return len(s.loggers) }

func (s *Set) AddNode(sys *network.System, v network.Node) {
	for _, l := range s.loggers {
		l.AddNode(sys, v)
	}
}

func (s *Set) AddArc(sys *network.System, source, target network.Node) {
	for _, l := range s.loggers {
		l.AddArc(sys, source, target)
	}
}

func (s *Set) EraseNode(sys *network.System, v network.Node) {
	for _, l := range s.loggers {
		l.EraseNode(sys, v)
	}
}

func (s *Set) EraseArc(sys *network.System, a network.Arc) {
	for _, l := range s.loggers {
		l.EraseArc(sys, a)
	}
}

func (s *Set) UpdateNode(sys *network.System, v network.Node) {
	for _, l := range s.loggers {
		l.UpdateNode(sys, v)
	}
}

func (s *Set) UpdateArc(sys *network.System, a network.Arc) {
	for _, l := range s.loggers {
		l.UpdateArc(sys, a)
	}
}

func (s *Set) NewState(sys *network.System, x dynamo.State) {
	for _, l := range s.loggers {
		l.NewState(sys, x)
	}
}

func (s *Set) EndStep(step StepType) {
	for _, l := range s.loggers {
		l.EndStep(step)
	}
}

func (s *Set) Rollback() {
	for _, l := range s.loggers {
		l.Rollback()
	}
}

// Commit commits every logger and returns the first error seen.
func (s *Set) Commit() error {
	var first error
	for _, l := range s.loggers {
		if err := l.Commit(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
