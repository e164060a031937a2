// Minimum-area rotated rectangle fitting
package algorithms

import (
	"image"
	"math"
)

// Point2 is a 2-D point in continuous pixel space.
type Point2 struct {
	X, Y float64
}

// MinAreaRect finds the minimum-area bounding rectangle of arbitrary
// rotation enclosing the point set. For each hull edge the hull is rotated
// so that edge is axis-aligned, the axis-aligned bounding box of the rotated
// hull is measured, and the smallest box over all edges wins; its corners
// are rotated back into original pixel space. The per-edge search is
// O(hull²), which is fine for the tiny hulls this pipeline produces.
//
// A degenerate point set whose hull has fewer than 3 points falls back to
// the axis-aligned bounding box of the input points. ok is false only for an
// empty input.
func MinAreaRect(points []image.Point) (rect [4]Point2, ok bool) {
	if len(points) == 0 {
		return rect, false
	}

	hull := ConvexHull(points)
	if len(hull) < 3 {
		return boundingBox(points), true
	}

	best := math.Inf(1)
	for i := range hull {
		j := (i + 1) % len(hull)
		theta := math.Atan2(float64(hull[j].Y-hull[i].Y), float64(hull[j].X-hull[i].X))
		cos, sin := math.Cos(theta), math.Sin(theta)

		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range hull {
			// Rotate by -theta so the edge lies along the x axis.
			rx := float64(p.X)*cos + float64(p.Y)*sin
			ry := -float64(p.X)*sin + float64(p.Y)*cos
			minX = math.Min(minX, rx)
			maxX = math.Max(maxX, rx)
			minY = math.Min(minY, ry)
			maxY = math.Max(maxY, ry)
		}

		area := (maxX - minX) * (maxY - minY)
		if area < best {
			best = area
			box := [4]Point2{
				{minX, minY},
				{maxX, minY},
				{maxX, maxY},
				{minX, maxY},
			}
			for k, c := range box {
				// Inverse rotation back to original space.
				rect[k] = Point2{
					X: c.X*cos - c.Y*sin,
					Y: c.X*sin + c.Y*cos,
				}
			}
		}
	}
	return rect, true
}

func boundingBox(points []image.Point) [4]Point2 {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return [4]Point2{
		{float64(minX), float64(minY)},
		{float64(maxX), float64(minY)},
		{float64(maxX), float64(maxY)},
		{float64(minX), float64(maxY)},
	}
}
