package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/netevo/internal/sim"
)

// Point is one sample projected onto a pair of state variables.
type Point struct {
	X, Y float64
}

// PhasePortrait projects every sample of traj onto states i and j, for
// example the x and y of a Rossler node.
func PhasePortrait(traj *sim.Trajectory, i, j int) ([]Point, error) {
	xs, err := Series(traj, i)
	if err != nil {
		return nil, err
	}
	ys, err := Series(traj, j)
	if err != nil {
		return nil, err
	}
	out := make([]Point, len(xs))
	for k := range xs {
		out[k] = Point{X: xs[k], Y: ys[k]}
	}
	return out, nil
}

// PoincareSection records states i and j wherever state k crosses level
// upwards. Each crossing is placed by linear interpolation between the two
// samples around it.
func PoincareSection(traj *sim.Trajectory, k int, level float64, i, j int) ([]Point, error) {
	cross, err := Series(traj, k)
	if err != nil {
		return nil, err
	}
	portrait, err := PhasePortrait(traj, i, j)
	if err != nil {
		return nil, err
	}

	var out []Point
	for n := 1; n < len(cross); n++ {
		prev, cur := cross[n-1], cross[n]
		if !(prev < level && cur >= level) {
			continue
		}
		frac := (level - prev) / (cur - prev)
		a, b := portrait[n-1], portrait[n]
		out = append(out, Point{
			X: a.X + frac*(b.X-a.X),
			Y: a.Y + frac*(b.Y-a.Y),
		})
	}
	return out, nil
}

// Scatter draws points on a width x height character grid, with axes
// where zero is in view. Non-finite points are skipped.
func Scatter(points []Point, width, height int) string {
	if width < 2 || height < 2 {
		return ""
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if !finite(p) {
			continue
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if minX > maxX {
		return ""
	}
	minX, maxX = pad(minX, maxX)
	minY, maxY = pad(minY, maxY)

	col := func(x float64) int { return int((x - minX) / (maxX - minX) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/(maxY-minY)*float64(height-1)) }

	canvas := make([][]rune, height)
	for r := range canvas {
		canvas[r] = []rune(strings.Repeat(" ", width))
	}
	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range canvas {
			canvas[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range canvas[r] {
			if canvas[r][c] == '│' {
				canvas[r][c] = '┼'
			} else {
				canvas[r][c] = '─'
			}
		}
	}
	for _, p := range points {
		if finite(p) {
			canvas[row(p.Y)][col(p.X)] = '•'
		}
	}

	var sb strings.Builder
	for _, r := range canvas {
		sb.WriteString(strings.TrimRight(string(r), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// pad widens [lo, hi] by a tenth on each side, or to unit width when flat.
func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - 0.5, hi + 0.5
	}
	return lo - 0.1*span, hi + 0.1*span
}
