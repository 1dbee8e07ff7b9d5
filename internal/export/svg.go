// Package export renders networks and trajectories as SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

// Point is a position on the drawing plane.
type Point struct{ X, Y float64 }

// Layout returns the drawing position of every node, keyed by node. Stored
// positions are used when any node has one; otherwise nodes are spread on a
// circle in iteration order.
func Layout(sys *network.System) map[network.Node]Point {
	nodes := sys.Nodes()
	out := make(map[network.Node]Point, len(nodes))
	placed := false
	for _, v := range nodes {
		p := sys.NodeData(v).Position
		if p.X != 0 || p.Y != 0 {
			placed = true
		}
		out[v] = Point{p.X, p.Y}
	}
	if placed {
		return out
	}
	for i, v := range nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(nodes))
		out[v] = Point{math.Cos(angle), math.Sin(angle)}
	}
	return out
}

// frame maps data coordinates onto a width x height canvas with 10%
// padding and y pointing up.
type frame struct {
	minX, minY, rangeX, rangeY float64
	width, height              int
}

func newFrame(pts []Point, width, height int) frame {
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	return frame{minX: minX, minY: minY, rangeX: maxX - minX, rangeY: maxY - minY, width: width, height: height}
}

func (f frame) at(p Point) (float64, float64) {
	x := (p.X - f.minX) / f.rangeX * float64(f.width)
	y := float64(f.height) - (p.Y-f.minY)/f.rangeY*float64(f.height)
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// GraphToSVG draws arcs as lines and nodes as labelled circles. Self-loops
// are drawn as small rings above their node.
func GraphToSVG(sys *network.System, width, height int) string {
	var sb strings.Builder
	header(&sb, width, height)
	if sys.CountNodes() == 0 {
		sb.WriteString("</svg>")
		return sb.String()
	}

	pos := Layout(sys)
	pts := make([]Point, 0, len(pos))
	for _, p := range pos {
		pts = append(pts, p)
	}
	f := newFrame(pts, width, height)
	radius := math.Max(3, math.Min(float64(width), float64(height))/float64(4*sys.CountNodes()+8))

	sb.WriteString(`<g stroke="#00aa00" stroke-width="1">` + "\n")
	for _, a := range sys.Arcs() {
		u, v := sys.Source(a), sys.Target(a)
		x1, y1 := f.at(pos[u])
		if u == v {
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none"/>`+"\n", x1, y1-radius, radius)
			continue
		}
		x2, y2 := f.at(pos[v])
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<g fill="#00ff00" font-family="monospace" font-size="10">` + "\n")
	for _, v := range sys.Nodes() {
		x, y := f.at(pos[v])
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", x, y, radius)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f">%d</text>`+"\n", x+radius+1, y-radius-1, sys.NodeData(v).Key)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG plots state idx against time as a single path. It returns
// "" when fewer than two samples carry that state.
func TrajectoryToSVG(traj *sim.Trajectory, idx, width, height int, strokeColor string) string {
	pts := make([]Point, 0, traj.Len())
	for i, x := range traj.States {
		if idx < 0 || idx >= len(x) {
			return ""
		}
		pts = append(pts, Point{traj.Times[i], x[idx]})
	}
	if len(pts) < 2 {
		return ""
	}

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	f := newFrame(pts, width, height)
	for i, p := range pts {
		x, y := f.at(p)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
