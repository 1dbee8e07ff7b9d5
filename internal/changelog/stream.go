package changelog

import (
	"bytes"
	"io"
	"strconv"

	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

// Stream buffers one text record per line and writes the buffer to its
// sink on Commit. Entities are identified by node key; arcs by the keys of
// their endpoints.
type Stream struct {
	out io.Writer
	buf bytes.Buffer
}

func NewStream(out io.Writer) *Stream {
	return &Stream{out: out}
}

func (s *Stream) key(sys *network.System, v network.Node) {
	s.buf.WriteString(strconv.Itoa(sys.NodeData(v).Key))
}

func (s *Stream) arcKeys(sys *network.System, source, target network.Node) {
	s.key(sys, source)
	s.buf.WriteByte(',')
	s.key(sys, target)
}

func (s *Stream) AddNode(sys *network.System, v network.Node) {
	s.buf.WriteString("N+,")
	s.key(sys, v)
	s.buf.WriteByte('\n')
}

func (s *Stream) AddArc(sys *network.System, source, target network.Node) {
	s.buf.WriteString("E+,")
	s.arcKeys(sys, source, target)
	s.buf.WriteByte('\n')
}

func (s *Stream) EraseNode(sys *network.System, v network.Node) {
	s.buf.WriteString("N-,")
	s.key(sys, v)
	s.buf.WriteByte('\n')
}

func (s *Stream) EraseArc(sys *network.System, a network.Arc) {
	s.buf.WriteString("E-,")
	s.arcKeys(sys, sys.Source(a), sys.Target(a))
	s.buf.WriteByte('\n')
}

func (s *Stream) UpdateNode(sys *network.System, v network.Node) {
	s.buf.WriteString("NU,")
	s.key(sys, v)
	s.buf.WriteByte('\n')
}

func (s *Stream) UpdateArc(sys *network.System, a network.Arc) {
	s.buf.WriteString("EU,")
	s.arcKeys(sys, sys.Source(a), sys.Target(a))
	s.buf.WriteByte('\n')
}

// NewState dumps every node slot and then every arc slot of x. Indices
// must be valid.
func (s *Stream) NewState(sys *network.System, x dynamo.State) {
	if w := sys.NodeStates(); w > 0 {
		for _, v := range sys.Nodes() {
			s.buf.WriteString("NS,")
			s.key(sys, v)
			s.floats(x, sys.StateID(v), w)
		}
	}
	if w := sys.ArcStates(); w > 0 {
		for _, a := range sys.Arcs() {
			s.buf.WriteString("ES,")
			s.arcKeys(sys, sys.Source(a), sys.Target(a))
			s.floats(x, sys.ArcStateID(a), w)
		}
	}
}

func (s *Stream) floats(x dynamo.State, from, n int) {
	var tmp [32]byte
	for _, f := range x[from : from+n] {
		s.buf.WriteByte(',')
		s.buf.Write(strconv.AppendFloat(tmp[:0], f, 'g', -1, 64))
	}
	s.buf.WriteByte('\n')
}

func (s *Stream) EndStep(step StepType) {
	switch step {
	case InitStep:
		s.buf.WriteString("---\n")
	case SimStep:
		s.buf.WriteString("-\n")
	case EvoStep:
		s.buf.WriteString("--\n")
	}
}

func (s *Stream) Rollback() { s.buf.Reset() }

// Commit writes the pending records. The buffer is cleared even when the
// write fails.
func (s *Stream) Commit() error {
	defer s.buf.Reset()
	if s.buf.Len() == 0 {
		return nil
	}
	_, err := s.out.Write(s.buf.Bytes())
	return err
}

// Pending reports the number of buffered bytes.
func (s *Stream) Pending() int { return s.buf.Len() }
