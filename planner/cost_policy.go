package planner

import (
	"fmt"
	"strings"
)

// CostPolicy estimates the remaining cost between two cells. Estimates must
// be non-negative.
type CostPolicy interface {
	Heuristic(a, b Cell) float64
}

// ManhattanDistance is the admissible, consistent heuristic for 4-connected
// unit-cost moves. Searches using it return shortest paths.
type ManhattanDistance struct{}

func (ManhattanDistance) Heuristic(a, b Cell) float64 {
	return float64(abs(a.Row-b.Row) + abs(a.Col-b.Col))
}

// DefaultWallPenalty is the WallBiased penalty per blocked cell
const DefaultWallPenalty = 10.0

// WallBiased adds Penalty to the Manhattan estimate for each of a and b that
// is a blocked cell. It is inadmissible and meant to pull the route towards
// walls, the way a cable is run along a conduit.
//
// Known quirk: the search only ever evaluates free cells, and endpoints must
// be free, so the penalty never applies and the result equals the Manhattan
// one. Left unchanged until the intended bias is confirmed.
type WallBiased struct {
	Grid    *Grid
	Penalty float64
}

// NewWallBiased returns a WallBiased policy over g with DefaultWallPenalty
func NewWallBiased(g *Grid) WallBiased {
	return WallBiased{Grid: g, Penalty: DefaultWallPenalty}
}

func (w WallBiased) Heuristic(a, b Cell) float64 {
	h := ManhattanDistance{}.Heuristic(a, b)
	if w.Grid == nil {
		return h
	}
	// Out-of-bounds cells count as free
	if blocked, _ := w.Grid.IsBlocked(a); blocked {
		h += w.Penalty
	}
	if blocked, _ := w.Grid.IsBlocked(b); blocked {
		h += w.Penalty
	}
	return h
}

// Policy names accepted by PolicyFor
const (
	PolicyShortest  = "shortest"
	PolicyRealistic = "realistic"
)

// PolicyNames lists the canonical policy names
var PolicyNames = []string{PolicyShortest, PolicyRealistic}

// PolicyFor maps a policy identifier to a CostPolicy bound to g
func PolicyFor(name string, g *Grid) (CostPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyShortest, "manhattan", "":
		return ManhattanDistance{}, nil
	case PolicyRealistic, "wall-biased", "wallbiased":
		return NewWallBiased(g), nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownPolicy)
	}
}
