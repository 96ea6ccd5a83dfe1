package planner

import (
	"fmt"
	"strings"
)

// Cell is a grid coordinate. Row grows downwards, Col grows to the right.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Text form of a grid cell
const (
	freeRune    = '.'
	blockedRune = '#'
)

// Grid is a rows x cols occupancy map. Dimensions are fixed at construction.
type Grid struct {
	rows, cols int
	blocked    []bool // row-major, true = blocked
}

// MaxCells bounds rows*cols for any grid
const MaxCells = 1 << 24

// NewGrid creates an all-free grid
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", rows, cols)
	}
	// divide rather than multiply so huge dimensions cannot overflow
	if rows > MaxCells/cols {
		return nil, fmt.Errorf("grid %dx%d exceeds %d cells", rows, cols, MaxCells)
	}
	return &Grid{
		rows:    rows,
		cols:    cols,
		blocked: make([]bool, rows*cols),
	}, nil
}

// NewCanvasGrid creates a grid covering a width x height pixel canvas split
// into square cells of cellSize pixels. Partial cells at the edges are dropped.
func NewCanvasGrid(width, height, cellSize int) (*Grid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("invalid cell size %d", cellSize)
	}
	return NewGrid(height/cellSize, width/cellSize)
}

// CellAt snaps a pixel position to the cell containing it
func CellAt(x, y float64, cellSize int) Cell {
	size := float64(cellSize)
	return Cell{
		Row: floorDiv(y, size),
		Col: floorDiv(x, size),
	}
}

func floorDiv(v, size float64) int {
	q := int(v / size)
	if v < 0 && float64(q)*size != v {
		q--
	}
	return q
}

// ParseGrid builds a grid from its text form: one string per row, '.' for a
// free cell and '#' for a blocked one.
func ParseGrid(lines []string) (*Grid, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	g, err := NewGrid(len(lines), len(lines[0]))
	if err != nil {
		return nil, err
	}
	for r, line := range lines {
		if len(line) != g.cols {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(line), g.cols)
		}
		for c, ch := range line {
			switch ch {
			case freeRune:
			case blockedRune:
				g.blocked[r*g.cols+c] = true
			default:
				return nil, fmt.Errorf("row %d col %d: unexpected %q", r, c, ch)
			}
		}
	}
	return g, nil
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether c lies inside the grid
func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

func (g *Grid) checkBounds(c Cell) error {
	if !g.InBounds(c) {
		return fmt.Errorf("cell %v in %dx%d grid: %w", c, g.rows, g.cols, ErrOutOfBounds)
	}
	return nil
}

// IsBlocked reports the occupancy of c
func (g *Grid) IsBlocked(c Cell) (bool, error) {
	if err := g.checkBounds(c); err != nil {
		return false, err
	}
	return g.blocked[c.Row*g.cols+c.Col], nil
}

// SetBlocked marks c as blocked or free
func (g *Grid) SetBlocked(c Cell, blocked bool) error {
	if err := g.checkBounds(c); err != nil {
		return err
	}
	g.blocked[c.Row*g.cols+c.Col] = blocked
	return nil
}

// AddWall blocks every cell on the Bresenham line from one cell to another,
// both ends included.
func (g *Grid) AddWall(from, to Cell) error {
	if err := g.checkBounds(from); err != nil {
		return err
	}
	if err := g.checkBounds(to); err != nil {
		return err
	}

	dx, sx := abs(to.Col-from.Col), 1
	if from.Col >= to.Col {
		sx = -1
	}
	dy, sy := abs(to.Row-from.Row), 1
	if from.Row >= to.Row {
		sy = -1
	}

	// err is kept doubled so the half step stays integral
	err := -dy
	if dx > dy {
		err = dx
	}

	cur := from
	for {
		g.blocked[cur.Row*g.cols+cur.Col] = true
		if cur == to {
			return nil
		}
		e2 := err
		if e2 > -2*dx {
			err -= 2 * dy
			cur.Col += sx
		}
		if e2 < 2*dy {
			err += 2 * dx
			cur.Row += sy
		}
	}
}

// Neighbor offsets, in expansion order: up, down, left, right
var directions = [4]Cell{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// Neighbors returns the free in-bounds cells 4-adjacent to c, in the order
// up, down, left, right.
func (g *Grid) Neighbors(c Cell) []Cell {
	neighbors := make([]Cell, 0, len(directions))
	for _, d := range directions {
		n := Cell{Row: c.Row + d.Row, Col: c.Col + d.Col}
		if g.InBounds(n) && !g.blocked[n.Row*g.cols+n.Col] {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	blocked := make([]bool, len(g.blocked))
	copy(blocked, g.blocked)
	return &Grid{rows: g.rows, cols: g.cols, blocked: blocked}
}

// BlockedCells lists blocked cells in row-major order
func (g *Grid) BlockedCells() []Cell {
	cells := make([]Cell, 0)
	for i, b := range g.blocked {
		if b {
			cells = append(cells, Cell{Row: i / g.cols, Col: i % g.cols})
		}
	}
	return cells
}

// BlockedCount returns the number of blocked cells
func (g *Grid) BlockedCount() int {
	n := 0
	for _, b := range g.blocked {
		if b {
			n++
		}
	}
	return n
}

// Lines returns the text form of the grid, one string per row
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	var sb strings.Builder
	for r := 0; r < g.rows; r++ {
		sb.Reset()
		for c := 0; c < g.cols; c++ {
			if g.blocked[r*g.cols+c] {
				sb.WriteByte(blockedRune)
			} else {
				sb.WriteByte(freeRune)
			}
		}
		lines[r] = sb.String()
	}
	return lines
}

func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
