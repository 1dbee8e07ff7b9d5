// Package gml reads and writes systems in the Graph Modelling Language.
//
// Nodes carry id, key, label, graphics [x y z], properties, dynName and
// dynParams; edges carry source, target, label, weight, properties,
// dynName and dynParams. Number lists are stored as comma separated
// strings. Graphs are always written with directed 1.
package gml

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/netevo/internal/network"
)

var (
	ErrOpen      = errors.New("gml: cannot open file")
	ErrMalformed = errors.New("gml: malformed document")
)

// Creator is written into the header of every saved document.
const Creator = "netevo"

// Save writes sys to w. Node ids are positions in iteration order.
func Save(w io.Writer, sys *network.System) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Creator \"%s on %s\"\n", Creator, time.Now().Format(time.ANSIC))
	bw.WriteString("graph [\n directed 1\n")

	ids := make(map[network.Node]int, sys.CountNodes())
	for i, v := range sys.Nodes() {
		ids[v] = i
		d := sys.NodeData(v)
		bw.WriteString(" node [\n")
		fmt.Fprintf(bw, "  id %d\n", i)
		fmt.Fprintf(bw, "  key %d\n", d.Key)
		fmt.Fprintf(bw, "  label \"%s\"\n", escape(d.Name))
		fmt.Fprintf(bw, "  graphics [ x %s y %s z %s ]\n", num(d.Position.X), num(d.Position.Y), num(d.Position.Z))
		fmt.Fprintf(bw, "  properties \"%s\"\n", joinFloats(d.Properties))
		fmt.Fprintf(bw, "  dynName \"%s\"\n", escape(d.Dynamic.Name()))
		fmt.Fprintf(bw, "  dynParams \"%s\"\n", joinFloats(d.Params))
		bw.WriteString(" ]\n")
	}
	for _, a := range sys.Arcs() {
		d := sys.ArcData(a)
		bw.WriteString(" edge [\n")
		fmt.Fprintf(bw, "  source %d\n", ids[sys.Source(a)])
		fmt.Fprintf(bw, "  target %d\n", ids[sys.Target(a)])
		fmt.Fprintf(bw, "  label \"%s\"\n", escape(d.Name))
		fmt.Fprintf(bw, "  weight %s\n", num(d.Weight))
		fmt.Fprintf(bw, "  properties \"%s\"\n", joinFloats(d.Properties))
		fmt.Fprintf(bw, "  dynName \"%s\"\n", escape(d.Dynamic.Name()))
		fmt.Fprintf(bw, "  dynParams \"%s\"\n", joinFloats(d.Params))
		bw.WriteString(" ]\n")
	}
	bw.WriteString("]\n")
	return bw.Flush()
}

func SaveFile(path string, sys *network.System) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if err := Save(f, sys); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load replaces the contents of sys with the graph read from r. Keys are
// kept and the next key is raised past the largest one. Dynamics must
// already be registered with sys. On error sys is left empty.
func Load(r io.Reader, sys *network.System) error {
	sys.Clear()
	if err := load(r, sys); err != nil {
		sys.Clear()
		return err
	}
	return nil
}

func LoadFile(path string, sys *network.System) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer f.Close()
	return Load(f, sys)
}

func load(r io.Reader, sys *network.System) error {
	doc, err := parse(newScanner(r), false)
	if err != nil {
		return err
	}
	graph, ok := find(doc, "graph")
	if !ok || graph.kind != listValue {
		return fmt.Errorf("%w: no graph list", ErrMalformed)
	}

	var nodes, edges [][]pair
	for _, p := range graph.list {
		switch p.key {
		case "node", "edge":
			if p.kind != listValue {
				return fmt.Errorf("%w: %s is not a list", ErrMalformed, p.key)
			}
			if p.key == "node" {
				nodes = append(nodes, p.list)
			} else {
				edges = append(edges, p.list)
			}
		case "directed":
			if p.kind == intValue && p.i == 0 {
				logrus.Debugf("gml: undirected flag ignored, arcs are loaded as written")
			}
		}
	}

	byID := make(map[int64]network.Node, len(nodes))
	maxKey := -1
	var unkeyed []network.Node
	for _, fields := range nodes {
		id, ok := find(fields, "id")
		if !ok || id.kind != intValue {
			return fmt.Errorf("%w: node without integer id", ErrMalformed)
		}
		if _, dup := byID[id.i]; dup {
			return fmt.Errorf("%w: duplicate node id %d", ErrMalformed, id.i)
		}
		dyn := network.NoNodeDynamicName
		if p, ok := find(fields, "dynName"); ok {
			if p.kind != stringValue {
				return fmt.Errorf("%w: node %d dynName is not a string", ErrMalformed, id.i)
			}
			dyn = p.s
		}
		v, err := sys.AddNode(dyn)
		if err != nil {
			return err
		}
		byID[id.i] = v
		d := sys.NodeData(v)
		if err := readNode(fields, d); err != nil {
			return fmt.Errorf("node %d: %w", id.i, err)
		}
		if p, ok := find(fields, "key"); ok {
			k, isNum := p.number()
			if !isNum {
				return fmt.Errorf("%w: node %d key is not a number", ErrMalformed, id.i)
			}
			d.Key = int(k)
			maxKey = max(maxKey, d.Key)
		} else {
			unkeyed = append(unkeyed, v)
		}
	}
	sys.SetNextKey(maxKey + 1)
	for _, v := range unkeyed {
		sys.NodeData(v).Key = sys.NextKey()
		sys.SetNextKey(sys.NextKey() + 1)
	}

	for _, fields := range edges {
		src, ok1 := find(fields, "source")
		tgt, ok2 := find(fields, "target")
		if !ok1 || !ok2 || src.kind != intValue || tgt.kind != intValue {
			return fmt.Errorf("%w: edge without integer source and target", ErrMalformed)
		}
		u, ok1 := byID[src.i]
		v, ok2 := byID[tgt.i]
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: edge %d -> %d references an unknown node", ErrMalformed, src.i, tgt.i)
		}
		dyn := network.NoArcDynamicName
		if p, ok := find(fields, "dynName"); ok {
			if p.kind != stringValue {
				return fmt.Errorf("%w: edge %d -> %d dynName is not a string", ErrMalformed, src.i, tgt.i)
			}
			dyn = p.s
		}
		a, err := sys.AddArc(u, v, dyn)
		if err != nil {
			return err
		}
		if err := readArc(fields, sys.ArcData(a)); err != nil {
			return fmt.Errorf("edge %d -> %d: %w", src.i, tgt.i, err)
		}
	}

	sys.RefreshStateIDs()
	logrus.Debugf("gml: loaded %d nodes and %d arcs", sys.CountNodes(), sys.CountArcs())
	return nil
}

func readNode(fields []pair, d *network.NodeData) error {
	for _, p := range fields {
		var err error
		switch p.key {
		case "label":
			err = str(p, &d.Name)
		case "graphics":
			if p.kind != listValue {
				return fmt.Errorf("%w: graphics is not a list", ErrMalformed)
			}
			for _, g := range p.list {
				dst := map[string]*float64{"x": &d.Position.X, "y": &d.Position.Y, "z": &d.Position.Z}[g.key]
				if dst == nil {
					continue
				}
				if *dst, err = number(g); err != nil {
					return err
				}
			}
		case "properties":
			d.Properties, err = floats(p)
		case "dynParams":
			d.Params, err = floats(p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func readArc(fields []pair, d *network.ArcData) error {
	for _, p := range fields {
		var err error
		switch p.key {
		case "label":
			err = str(p, &d.Name)
		case "weight":
			d.Weight, err = number(p)
		case "properties":
			d.Properties, err = floats(p)
		case "dynParams":
			d.Params, err = floats(p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func find(list []pair, key string) (pair, bool) {
	for _, p := range list {
		if p.key == key {
			return p, true
		}
	}
	return pair{}, false
}

func str(p pair, dst *string) error {
	if p.kind != stringValue {
		return fmt.Errorf("%w: %s is not a string", ErrMalformed, p.key)
	}
	*dst = p.s
	return nil
}

func number(p pair) (float64, error) {
	f, ok := p.number()
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a number", ErrMalformed, p.key)
	}
	return f, nil
}

// floats parses a comma separated list. The empty string is an empty list.
func floats(p pair) ([]float64, error) {
	if p.kind != stringValue {
		return nil, fmt.Errorf("%w: %s is not a string", ErrMalformed, p.key)
	}
	if strings.TrimSpace(p.s) == "" {
		return nil, nil
	}
	parts := strings.Split(p.s, ",")
	out := make([]float64, len(parts))
	for i, s := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s entry %q", ErrMalformed, p.key, s)
		}
		out[i] = f
	}
	return out, nil
}

func joinFloats(f []float64) string {
	parts := make([]string, len(f))
	for i, v := range f {
		parts[i] = num(v)
	}
	return strings.Join(parts, ",")
}

// num formats v so that it scans back as the same float. Integral values
// keep a decimal point so they are read as floats.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
