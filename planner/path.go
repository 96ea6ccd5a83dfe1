package planner

import (
	"fmt"
	"math"
)

// Path is an ordered sequence of cells from start to end, both included
type Path []Cell

// Len returns the number of cells on the path
func (p Path) Len() int { return len(p) }

// Edges returns the number of moves along the path
func (p Path) Edges() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Valid checks that p runs from start to end through free cells, each step
// moving to a 4-adjacent cell.
func (p Path) Valid(g *Grid, start, end Cell) error {
	if len(p) == 0 {
		return fmt.Errorf("empty path")
	}
	if p[0] != start {
		return fmt.Errorf("path starts at %v, want %v", p[0], start)
	}
	if p[len(p)-1] != end {
		return fmt.Errorf("path ends at %v, want %v", p[len(p)-1], end)
	}
	for i, c := range p {
		blocked, err := g.IsBlocked(c)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if blocked {
			return fmt.Errorf("step %d: cell %v is blocked", i, c)
		}
		if i > 0 && abs(c.Row-p[i-1].Row)+abs(c.Col-p[i-1].Col) != 1 {
			return fmt.Errorf("step %d: %v is not adjacent to %v", i, c, p[i-1])
		}
	}
	return nil
}

// Waypoints reduces the path to the cells where it changes direction, plus
// both ends. Straight runs between waypoints are implied.
func (p Path) Waypoints() Path {
	return p.Simplify(0)
}

// Simplify reduces the path with the Douglas-Peucker algorithm, dropping
// cells closer than epsilon cells to the simplified line.
func (p Path) Simplify(epsilon float64) Path {
	if len(p) <= 2 {
		out := make(Path, len(p))
		copy(out, p)
		return out
	}
	return douglasPeucker(p, epsilon)
}

func douglasPeucker(points Path, epsilon float64) Path {
	if len(points) <= 2 {
		return points
	}

	// Find the cell with maximum distance from the chord between first and last
	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		left := douglasPeucker(points[0:index+1], epsilon)
		right := douglasPeucker(points[index:], epsilon)

		result := make(Path, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return Path{points[0], points[end]}
}

// perpendicularDistance is the distance from c to the line through a and b,
// or to a itself when a == b. Collinear cells give exactly zero.
func perpendicularDistance(c, a, b Cell) float64 {
	dx := b.Col - a.Col
	dy := b.Row - a.Row
	px := c.Col - a.Col
	py := c.Row - a.Row

	if dx == 0 && dy == 0 {
		return math.Hypot(float64(px), float64(py))
	}

	cross := dx*py - dy*px
	if cross == 0 {
		return 0
	}
	return math.Abs(float64(cross)) / math.Hypot(float64(dx), float64(dy))
}
