package planner

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func mustParse(t *testing.T, lines ...string) *Grid {
	t.Helper()
	g, err := ParseGrid(lines)
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	return g
}

func TestNewGridRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{
		{0, 5}, {5, 0}, {-1, 3},
		{100000, 100000},               // over MaxCells
		{math.MaxInt, math.MaxInt},     // rows*cols overflows
		{MaxCells + 1, 1},              // one row too many
		{math.MaxInt / 2, math.MaxInt}, // product overflows
	} {
		if _, err := NewGrid(dims[0], dims[1]); err == nil {
			t.Errorf("NewGrid(%d, %d) succeeded, want error", dims[0], dims[1])
		}
	}
}

func TestNewGridAtMaxCells(t *testing.T) {
	g, err := NewGrid(MaxCells/4096, 4096)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	last := Cell{Row: g.Rows() - 1, Col: g.Cols() - 1}
	if err := g.SetBlocked(last, true); err != nil {
		t.Fatal(err)
	}
	if blocked, err := g.IsBlocked(last); err != nil || !blocked {
		t.Errorf("IsBlocked(%v) = %v, %v", last, blocked, err)
	}
}

func TestNewCanvasGrid(t *testing.T) {
	g, err := NewCanvasGrid(805, 600, 10)
	if err != nil {
		t.Fatalf("NewCanvasGrid: %v", err)
	}
	if g.Rows() != 60 || g.Cols() != 80 {
		t.Errorf("got %dx%d, want 60x80", g.Rows(), g.Cols())
	}
	if _, err := NewCanvasGrid(800, 600, 0); err == nil {
		t.Error("zero cell size accepted")
	}
}

func TestCellAt(t *testing.T) {
	tests := []struct {
		x, y float64
		want Cell
	}{
		{0, 0, Cell{0, 0}},
		{9.99, 9.99, Cell{0, 0}},
		{15, 25, Cell{Row: 2, Col: 1}},
		{799, 599, Cell{Row: 59, Col: 79}},
		{-1, 5, Cell{Row: 0, Col: -1}},
		{-10, -20, Cell{Row: -2, Col: -1}},
	}
	for _, tt := range tests {
		if got := CellAt(tt.x, tt.y, 10); got != tt.want {
			t.Errorf("CellAt(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestIsBlockedOutOfBounds(t *testing.T) {
	g, _ := NewGrid(3, 4)
	for _, c := range []Cell{{-1, 0}, {0, -1}, {3, 0}, {0, 4}} {
		_, err := g.IsBlocked(c)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("IsBlocked(%v) error = %v, want ErrOutOfBounds", c, err)
		}
	}
	if err := g.SetBlocked(Cell{5, 5}, true); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetBlocked out of bounds error = %v", err)
	}
}

func TestSetBlocked(t *testing.T) {
	g, _ := NewGrid(2, 2)
	if err := g.SetBlocked(Cell{1, 0}, true); err != nil {
		t.Fatal(err)
	}
	blocked, err := g.IsBlocked(Cell{1, 0})
	if err != nil || !blocked {
		t.Fatalf("IsBlocked = %v, %v; want true, nil", blocked, err)
	}
	if err := g.SetBlocked(Cell{1, 0}, false); err != nil {
		t.Fatal(err)
	}
	if blocked, _ := g.IsBlocked(Cell{1, 0}); blocked {
		t.Error("cell still blocked after clearing")
	}
}

func TestAddWall(t *testing.T) {
	tests := []struct {
		name     string
		from, to Cell
		want     []string
	}{
		{
			name: "horizontal",
			from: Cell{1, 0}, to: Cell{1, 4},
			want: []string{".....", "#####", "....."},
		},
		{
			name: "vertical reversed",
			from: Cell{2, 3}, to: Cell{0, 3},
			want: []string{"...#.", "...#.", "...#."},
		},
		{
			name: "diagonal",
			from: Cell{0, 0}, to: Cell{2, 2},
			want: []string{"#....", ".#...", "..#.."},
		},
		{
			name: "shallow slope",
			from: Cell{0, 0}, to: Cell{2, 4},
			want: []string{"##...", "..##.", "....#"},
		},
		{
			name: "single cell",
			from: Cell{2, 4}, to: Cell{2, 4},
			want: []string{".....", ".....", "....#"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := NewGrid(3, 5)
			if err := g.AddWall(tt.from, tt.to); err != nil {
				t.Fatalf("AddWall: %v", err)
			}
			if got := g.Lines(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

func TestAddWallOutOfBoundsLeavesGridUntouched(t *testing.T) {
	g, _ := NewGrid(3, 3)
	if err := g.AddWall(Cell{0, 0}, Cell{3, 3}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("error = %v, want ErrOutOfBounds", err)
	}
	if g.BlockedCount() != 0 {
		t.Errorf("%d cells blocked after failed AddWall", g.BlockedCount())
	}
}

func TestNeighborsOrderAndFilter(t *testing.T) {
	g := mustParse(t,
		"...",
		"#..",
		"...",
	)
	got := g.Neighbors(Cell{1, 1})
	want := []Cell{{0, 1}, {2, 1}, {1, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors = %v, want %v", got, want)
	}

	got = g.Neighbors(Cell{0, 0})
	want = []Cell{{0, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("corner Neighbors = %v, want %v", got, want)
	}
}

func TestParseGridRoundTrip(t *testing.T) {
	lines := []string{"#..#", "....", ".##."}
	g := mustParse(t, lines...)
	if !reflect.DeepEqual(g.Lines(), lines) {
		t.Errorf("Lines = %v, want %v", g.Lines(), lines)
	}
	if g.BlockedCount() != 4 {
		t.Errorf("BlockedCount = %d, want 4", g.BlockedCount())
	}
	want := []Cell{{0, 0}, {0, 3}, {2, 1}, {2, 2}}
	if got := g.BlockedCells(); !reflect.DeepEqual(got, want) {
		t.Errorf("BlockedCells = %v, want %v", got, want)
	}
}

func TestParseGridErrors(t *testing.T) {
	tests := map[string][]string{
		"empty":  nil,
		"ragged": {"...", ".."},
		"symbol": {".x."},
		"blank":  {""},
	}
	for name, lines := range tests {
		if _, err := ParseGrid(lines); err == nil {
			t.Errorf("%s: ParseGrid succeeded, want error", name)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := mustParse(t, "..", "..")
	c := g.Clone()
	if err := c.SetBlocked(Cell{0, 0}, true); err != nil {
		t.Fatal(err)
	}
	if g.BlockedCount() != 0 {
		t.Error("mutating clone changed original")
	}
}
