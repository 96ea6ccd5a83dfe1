package main

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"fiber-planner/planner"
)

// PolygonEntry wraps an obstacle polygon for R-tree storage
type PolygonEntry struct {
	Polygon orb.Polygon
	BBox    rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (p *PolygonEntry) Bounds() rtreego.Rect {
	return p.BBox
}

// PolygonIndex answers which obstacle polygons may cover a region
type PolygonIndex struct {
	tree *rtreego.Rtree
}

// NewPolygonIndex indexes polygons by bounding box. Degenerate polygons
// (empty, or zero width or height) cover no cell centre and are skipped.
func NewPolygonIndex(polygons []orb.Polygon) *PolygonIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, polygon := range polygons {
		bbox, ok := boundToRect(polygon)
		if ok {
			tree.Insert(&PolygonEntry{Polygon: polygon, BBox: bbox})
		}
	}

	return &PolygonIndex{tree: tree}
}

// Size returns the number of indexed polygons
func (pi *PolygonIndex) Size() int {
	return pi.tree.Size()
}

// QueryRegion returns polygons whose bounding box intersects the given box
func (pi *PolygonIndex) QueryRegion(minX, minY, maxX, maxY float64) []orb.Polygon {
	bbox, err := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{maxX - minX, maxY - minY},
	)
	if err != nil {
		return []orb.Polygon{}
	}

	results := pi.tree.SearchIntersect(bbox)
	polygons := make([]orb.Polygon, 0, len(results))

	for _, item := range results {
		entry := item.(*PolygonEntry)
		polygons = append(polygons, entry.Polygon)
	}

	return polygons
}

// boundToRect converts the bounding box of a polygon's outer ring
func boundToRect(polygon orb.Polygon) (rtreego.Rect, bool) {
	if len(polygon) == 0 || len(polygon[0]) == 0 {
		return rtreego.Rect{}, false
	}
	b := polygon[0].Bound()
	rect, err := rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]},
	)
	return rect, err == nil
}

// wallEntry is one blocked cell, occupying the unit square
// [col, col+1) x [row, row+1)
type wallEntry struct {
	cell planner.Cell
	bbox rtreego.Rect
}

func (w *wallEntry) Bounds() rtreego.Rect {
	return w.bbox
}

// WallIndex is an R-tree over the blocked cells of a grid snapshot
type WallIndex struct {
	tree *rtreego.Rtree
}

// NewWallIndex indexes the blocked cells of g. Later changes to g are not
// reflected.
func NewWallIndex(g *planner.Grid) *WallIndex {
	cells := g.BlockedCells()
	objs := make([]rtreego.Spatial, 0, len(cells))
	for _, c := range cells {
		bbox, err := rtreego.NewRect(
			rtreego.Point{float64(c.Col), float64(c.Row)},
			[]float64{1, 1},
		)
		if err != nil {
			continue
		}
		objs = append(objs, &wallEntry{cell: c, bbox: bbox})
	}
	// bulk load is much faster than inserting cell by cell
	return &WallIndex{tree: rtreego.NewTree(2, 25, 50, objs...)}
}

// Size returns the number of indexed wall cells
func (wi *WallIndex) Size() int {
	return wi.tree.Size()
}

// Touches reports whether c shares an edge with a blocked cell
func (wi *WallIndex) Touches(c planner.Cell) bool {
	// A 2x2 box centred on the cell overlaps exactly its 3x3 neighbourhood
	query, err := rtreego.NewRect(
		rtreego.Point{float64(c.Col) - 0.5, float64(c.Row) - 0.5},
		[]float64{2, 2},
	)
	if err != nil {
		return false
	}
	for _, item := range wi.tree.SearchIntersect(query) {
		w := item.(*wallEntry).cell
		if abs(w.Row-c.Row)+abs(w.Col-c.Col) == 1 {
			return true
		}
	}
	return false
}

// Contacts counts the cells of path that run alongside a wall
func (wi *WallIndex) Contacts(path planner.Path) int {
	n := 0
	for _, c := range path {
		if wi.Touches(c) {
			n++
		}
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
