// Convex hull construction over component boundary points
package algorithms

import (
	"image"
	"sort"
)

// ConvexHull computes the convex hull of a point set with Andrew's monotone
// chain: sort by (x, y), build the lower and upper chains rejecting non-left
// turns, then concatenate the chains minus their duplicated endpoints. The
// result is strictly convex (collinear interior points removed) and wound
// counter-clockwise in standard axis orientation.
func ConvexHull(points []image.Point) []image.Point {
	if len(points) < 3 {
		out := make([]image.Point, len(points))
		copy(out, points)
		return out
	}

	pts := make([]image.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	lower := make([]image.Point, 0, len(pts))
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]image.Point, 0, len(pts))
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}

// cross returns the z component of (a->b) x (a->c). Positive means b->c
// turns left of a->b.
func cross(a, b, c image.Point) int64 {
	return int64(b.X-a.X)*int64(c.Y-a.Y) - int64(b.Y-a.Y)*int64(c.X-a.X)
}
