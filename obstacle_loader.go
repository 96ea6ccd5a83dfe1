package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"fiber-planner/planner"
)

// Obstacles are wall geometries in canvas pixel coordinates: x to the right,
// y downwards.
type Obstacles struct {
	Polygons []orb.Polygon
	Lines    []orb.LineString
	Points   []orb.Point
}

// Len returns the number of geometries
func (o *Obstacles) Len() int {
	return len(o.Polygons) + len(o.Lines) + len(o.Points)
}

// Merge appends the geometries of other
func (o *Obstacles) Merge(other *Obstacles) {
	o.Polygons = append(o.Polygons, other.Polygons...)
	o.Lines = append(o.Lines, other.Lines...)
	o.Points = append(o.Points, other.Points...)
}

// ParseObstacles decodes a GeoJSON FeatureCollection
func ParseObstacles(data []byte) (*Obstacles, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feature collection: %w", err)
	}

	obs := &Obstacles{}
	for _, feature := range fc.Features {
		if feature == nil || feature.Geometry == nil {
			continue
		}
		obs.add(feature.Geometry)
	}
	return obs, nil
}

func (o *Obstacles) add(geometry orb.Geometry) {
	switch g := geometry.(type) {
	case orb.Polygon:
		o.Polygons = append(o.Polygons, g)
	case orb.MultiPolygon:
		o.Polygons = append(o.Polygons, g...)
	case orb.Ring:
		o.Polygons = append(o.Polygons, orb.Polygon{g})
	case orb.LineString:
		o.Lines = append(o.Lines, g)
	case orb.MultiLineString:
		o.Lines = append(o.Lines, g...)
	case orb.Point:
		o.Points = append(o.Points, g)
	case orb.MultiPoint:
		o.Points = append(o.Points, g...)
	case orb.Collection:
		for _, child := range g {
			o.add(child)
		}
	default:
		log.Printf("⚠️  Skipping unsupported geometry %s\n", geometry.GeoJSONType())
	}
}

// LoadObstacleFiles loads all GeoJSON files from dir
func LoadObstacleFiles(dir string) (*Obstacles, error) {
	all := &Obstacles{}

	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, err
	}

	log.Printf("Loading obstacles from %d GeoJSON files...\n", len(files))

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		obs, err := ParseObstacles(data)
		if err != nil {
			log.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}

		all.Merge(obs)
		log.Printf("   ✅ Loaded %d geometries from %s\n", obs.Len(), filepath.Base(file))
	}

	log.Printf("Total obstacles loaded: %d geometries\n", all.Len())
	return all, nil
}

// Rasterize blocks the cells of g covered by obs and returns how many cells
// changed from free to blocked.
//
// A polygon blocks every cell whose centre lies inside it or on its border.
// A line string is clipped to the canvas, keeping the slope of every
// segment, and blocks the cells on the straight segments that remain.
// A point, or a single-vertex line, blocks the cell containing it, if any.
func Rasterize(g *planner.Grid, obs *Obstacles, cellSize int) (int, error) {
	if cellSize <= 0 {
		return 0, fmt.Errorf("invalid cell size %d", cellSize)
	}
	before := g.BlockedCount()

	if err := rasterizePolygons(g, MergeOverlappingPolygons(obs.Polygons), cellSize); err != nil {
		return 0, err
	}

	canvas := orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{float64(g.Cols() * cellSize), float64(g.Rows() * cellSize)},
	}
	for _, line := range obs.Lines {
		if len(line) == 1 {
			if err := blockPoint(g, line[0], cellSize); err != nil {
				return 0, err
			}
			continue
		}
		for _, part := range clip.LineString(canvas, line.Clone()) {
			if err := rasterizeLine(g, part, cellSize); err != nil {
				return 0, err
			}
		}
	}

	for _, p := range obs.Points {
		if err := blockPoint(g, p, cellSize); err != nil {
			return 0, err
		}
	}

	return g.BlockedCount() - before, nil
}

func rasterizePolygons(g *planner.Grid, polygons []orb.Polygon, cellSize int) error {
	index := NewPolygonIndex(polygons)
	if index.Size() == 0 {
		return nil
	}

	size := float64(cellSize)
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			minX, minY := float64(c)*size, float64(r)*size
			centre := orb.Point{minX + size/2, minY + size/2}

			for _, polygon := range index.QueryRegion(minX, minY, minX+size, minY+size) {
				if planar.PolygonContains(polygon, centre) {
					if err := g.SetBlocked(planner.Cell{Row: r, Col: c}, true); err != nil {
						return err
					}
					break
				}
			}
		}
	}
	return nil
}

// rasterizeLine blocks the cells along a line string already clipped to the
// canvas
func rasterizeLine(g *planner.Grid, line orb.LineString, cellSize int) error {
	if len(line) == 1 {
		return blockPoint(g, line[0], cellSize)
	}
	for i := 1; i < len(line); i++ {
		from := clampCell(g, planner.CellAt(line[i-1][0], line[i-1][1], cellSize))
		to := clampCell(g, planner.CellAt(line[i][0], line[i][1], cellSize))
		if err := g.AddWall(from, to); err != nil {
			return err
		}
	}
	return nil
}

// blockPoint blocks the cell containing p, if it is on the grid
func blockPoint(g *planner.Grid, p orb.Point, cellSize int) error {
	c := planner.CellAt(p[0], p[1], cellSize)
	if !g.InBounds(c) {
		return nil
	}
	return g.SetBlocked(c, true)
}

// clampCell moves c onto the nearest in-bounds cell. Points on the far
// canvas edge, or a rounding error off the near one, land one cell outside.
func clampCell(g *planner.Grid, c planner.Cell) planner.Cell {
	c.Row = max(0, min(c.Row, g.Rows()-1))
	c.Col = max(0, min(c.Col, g.Cols()-1))
	return c
}
