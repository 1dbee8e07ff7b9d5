package sim

import (
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/netevo/internal/dynamo"
)

// Observer is called with every accepted sample. x is only valid during
// the call.
type Observer interface {
	Observe(x dynamo.State, t float64)
}

type ObserverFunc func(x dynamo.State, t float64)

func (f ObserverFunc) Observe(x dynamo.State, t float64) { f(x, t) }

// Trajectory keeps a copy of every sample.
type Trajectory struct {
	States []dynamo.State
	Times  []float64
}

func (tr *Trajectory) Observe(x dynamo.State, t float64) {
	tr.States = append(tr.States, x.Clone())
	tr.Times = append(tr.Times, t)
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Last returns the final sample, or nil for an empty trajectory.
func (tr *Trajectory) Last() dynamo.State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

func (tr *Trajectory) Reset() {
	tr.States = tr.States[:0]
	tr.Times = tr.Times[:0]
}

// StreamObserver writes one "t = <t>, state = (<x0>, <x1>, ...)" line per
// sample. The first write error is kept in Err and later samples are
// dropped.
type StreamObserver struct {
	W   io.Writer
	Err error
	buf []byte
}

func NewStreamObserver(w io.Writer) *StreamObserver {
	return &StreamObserver{W: w}
}

func (s *StreamObserver) Observe(x dynamo.State, t float64) {
	if s.Err != nil {
		return
	}
	b := append(s.buf[:0], "t = "...)
	b = strconv.AppendFloat(b, t, 'g', -1, 64)
	b = append(b, ", state = ("...)
	for i, v := range x {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = strconv.AppendFloat(b, v, 'g', -1, 64)
	}
	b = append(b, ")\n"...)
	s.buf = b
	if _, err := s.W.Write(b); err != nil {
		s.Err = fmt.Errorf("sim: stream observer: %w", err)
	}
}
