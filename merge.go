package main

import (
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MergeOverlappingPolygons drops polygons whose whole area lies inside another
// polygon. A polygon that spans a hole or a concave gap of another is kept.
func MergeOverlappingPolygons(polygons []orb.Polygon) []orb.Polygon {
	if len(polygons) <= 1 {
		return polygons
	}

	filtered := removeContainedPolygons(polygons)

	if removed := len(polygons) - len(filtered); removed > 0 {
		log.Printf("   Polygons after removing contained: %d (removed %d)\n", len(filtered), removed)
	}

	return filtered
}

// removeContainedPolygons removes polygons that are fully contained within other polygons
func removeContainedPolygons(polygons []orb.Polygon) []orb.Polygon {
	result := make([]orb.Polygon, 0, len(polygons))
	contained := make([]bool, len(polygons))

	for i := 0; i < len(polygons); i++ {
		if contained[i] {
			continue
		}

		for j := 0; j < len(polygons); j++ {
			if i == j || contained[j] {
				continue
			}

			if isPolygonContainedIn(polygons[i], polygons[j]) {
				contained[i] = true
				break
			}

			if isPolygonContainedIn(polygons[j], polygons[i]) {
				contained[j] = true
			}
		}
	}

	for i := 0; i < len(polygons); i++ {
		if !contained[i] {
			result = append(result, polygons[i])
		}
	}

	return result
}

// isPolygonContainedIn checks if the area of a lies inside b: every outer
// vertex of a is in b, no edge of a meets an edge of b, and no hole of b lies
// inside a. Touching edges count as meeting, so the check errs towards keeping
// both polygons.
func isPolygonContainedIn(a, b orb.Polygon) bool {
	if len(a) == 0 || len(a[0]) == 0 || len(b) == 0 || len(b[0]) == 0 {
		return false
	}

	// Quick bounding box check first
	if !isBoundContained(a[0].Bound(), b[0].Bound()) {
		return false
	}

	for _, vertex := range a[0] {
		if !planar.PolygonContains(b, vertex) {
			return false
		}
	}

	for _, ring := range b {
		if ringsIntersect(a[0], ring) {
			return false
		}
	}

	for _, hole := range b[1:] {
		for _, vertex := range hole {
			if planar.PolygonContains(a, vertex) {
				return false
			}
		}
	}

	return true
}

// ringsIntersect checks if any edge of r1 meets any edge of r2
func ringsIntersect(r1, r2 orb.Ring) bool {
	for i := 1; i < len(r1); i++ {
		for j := 1; j < len(r2); j++ {
			if segmentsIntersect(r1[i-1], r1[i], r2[j-1], r2[j]) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect checks if segment p1-p2 meets segment p3-p4, shared
// endpoints and collinear overlaps included
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Check for collinear cases
	return (d1 == 0 && onSegment(p3, p4, p1)) ||
		(d2 == 0 && onSegment(p3, p4, p2)) ||
		(d3 == 0 && onSegment(p1, p2, p3)) ||
		(d4 == 0 && onSegment(p1, p2, p4))
}

// direction is the cross product of p1->p3 and p1->p2
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

// onSegment checks if q, collinear with p-r, lies within their bounding box
func onSegment(p, r, q orb.Point) bool {
	return q[0] >= min(p[0], r[0]) && q[0] <= max(p[0], r[0]) &&
		q[1] >= min(p[1], r[1]) && q[1] <= max(p[1], r[1])
}

// isBoundContained checks if bound a is contained in bound b
func isBoundContained(a, b orb.Bound) bool {
	return a.Min[0] >= b.Min[0] && a.Max[0] <= b.Max[0] &&
		a.Min[1] >= b.Min[1] && a.Max[1] <= b.Max[1]
}
