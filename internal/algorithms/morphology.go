// Morphological cleanup of the binary mask
package algorithms

import (
	"math"

	"scansplit/internal/raster"
)

// CloseRadius maps a detection sensitivity in [0,1] to the closing radius.
// Lower sensitivity means a stricter threshold that fragments a photo's dark
// content, so a larger radius is needed to re-merge the pieces.
func CloseRadius(sensitivity float64) int {
	r := int(math.Round(7 * (1 - sensitivity)))
	if r < 1 {
		r = 1
	}
	return r
}

// Close performs a morphological closing: dilation by radius followed by
// erosion by the same radius. Both operations use a separable square window,
// processed as a horizontal pass then a vertical pass, which keeps the cost
// linear in pixel count regardless of radius.
func Close(mask *raster.Mask, radius int) *raster.Mask {
	dilated := Dilate(mask, radius)
	return Erode(dilated, radius)
}

// Dilate sets a pixel if any pixel within the window is set.
func Dilate(mask *raster.Mask, radius int) *raster.Mask {
	return separablePass(mask, radius, false)
}

// Erode keeps a pixel only if every pixel within the window (clamped to the
// mask bounds) is set.
func Erode(mask *raster.Mask, radius int) *raster.Mask {
	return separablePass(mask, radius, true)
}

func separablePass(mask *raster.Mask, radius int, requireAll bool) *raster.Mask {
	w, h := mask.Width, mask.Height
	tmp := raster.NewMask(w, h)
	out := raster.NewMask(w, h)
	for y := 0; y < h; y++ {
		slideLine(mask.Bits, tmp.Bits, y*w, 1, w, radius, requireAll)
	}
	for x := 0; x < w; x++ {
		slideLine(tmp.Bits, out.Bits, x, w, h, radius, requireAll)
	}
	return out
}

// slideLine runs one 1-D window pass over n elements starting at offset with
// the given stride, keeping a running count of set bits in the clamped window
// [i-radius, i+radius]. With requireAll false the output bit is set when the
// window contains any set bit (dilation); with requireAll true the whole
// window must be set (erosion).
func slideLine(src, dst []bool, offset, stride, n, radius int, requireAll bool) {
	at := func(i int) bool { return src[offset+i*stride] }

	count := 0
	hi := radius
	if hi > n-1 {
		hi = n - 1
	}
	for i := 0; i <= hi; i++ {
		if at(i) {
			count++
		}
	}
	lo := 0
	for i := 0; i < n; i++ {
		window := hi - lo + 1
		if requireAll {
			dst[offset+i*stride] = count == window
		} else {
			dst[offset+i*stride] = count > 0
		}
		if hi < n-1 {
			hi++
			if at(hi) {
				count++
			}
		}
		if i+1-radius > 0 {
			if at(lo) {
				count--
			}
			lo++
		}
	}
}

// FillHoles flips enclosed background regions to foreground. Background
// pixels reachable from the image border stay background; anything the
// border-seeded flood fill cannot reach is an interior hole.
func FillHoles(mask *raster.Mask) *raster.Mask {
	w, h := mask.Width, mask.Height
	reached := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))

	seed := func(x, y int) {
		i := y*w + x
		if !mask.Bits[i] && !reached[i] {
			reached[i] = true
			queue = append(queue, i)
		}
	}
	for x := 0; x < w; x++ {
		seed(x, 0)
		seed(x, h-1)
	}
	for y := 0; y < h; y++ {
		seed(0, y)
		seed(w-1, y)
	}

	for head := 0; head < len(queue); head++ {
		i := queue[head]
		x, y := i%w, i/w
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if !mask.Bits[ni] && !reached[ni] {
				reached[ni] = true
				queue = append(queue, ni)
			}
		}
	}

	out := mask.Clone()
	for i := range out.Bits {
		if !out.Bits[i] && !reached[i] {
			out.Bits[i] = true
		}
	}
	return out
}
