// Connected-component labeling of the cleaned binary mask
package algorithms

import (
	"image"

	"scansplit/internal/raster"
)

// Component is one 4-connected foreground region. Boundary holds the
// foreground pixels adjacent to background or the mask edge; the convex hull
// of these border samples equals the hull of the whole region, so the full
// pixel set is never retained.
type Component struct {
	Label    int
	Area     int
	Boundary []image.Point
}

// Label scans the mask in row-major order and flood-fills each unlabeled
// foreground region with an explicit BFS queue. Labels increase
// monotonically from 0 in discovery order, which downstream sorting relies
// on as its tie-break.
func Label(mask *raster.Mask) []Component {
	w, h := mask.Width, mask.Height
	labels := make([]int, w*h)
	for i := range labels {
		labels[i] = -1
	}

	var comps []Component
	queue := make([]int, 0, 256)
	next := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			start := y*w + x
			if !mask.Bits[start] || labels[start] >= 0 {
				continue
			}

			comp := Component{Label: next}
			labels[start] = next
			queue = append(queue[:0], start)

			for head := 0; head < len(queue); head++ {
				i := queue[head]
				cx, cy := i%w, i/w
				comp.Area++

				edge := false
				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := cx+d[0], cy+d[1]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						edge = true
						continue
					}
					ni := ny*w + nx
					if !mask.Bits[ni] {
						edge = true
						continue
					}
					if labels[ni] < 0 {
						labels[ni] = next
						queue = append(queue, ni)
					}
				}
				if edge {
					comp.Boundary = append(comp.Boundary, image.Pt(cx, cy))
				}
			}

			comps = append(comps, comp)
			next++
		}
	}
	return comps
}
