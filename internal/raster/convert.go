// Working bitmap preparation from a decoded source image
package raster

import (
	"image"

	"github.com/nfnt/resize"
)

// MaxWorkingSide caps the longer side of the working bitmap. Detection runs
// at this bounded resolution and only the final perspective crop touches the
// full-resolution pixels.
const MaxWorkingSide = 1000

// FromImage converts a decoded source image into a grayscale working bitmap.
// Images whose longer side exceeds MaxWorkingSide are downscaled first,
// preserving aspect ratio. The returned scale maps working coordinates back
// to full resolution (full = working * scale).
func FromImage(src image.Image) (*Gray, float64) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := 1.0
	longer := w
	if h > longer {
		longer = h
	}
	if longer > MaxWorkingSide {
		ratio := float64(longer) / float64(MaxWorkingSide)
		newW := int(float64(w)/ratio + 0.5)
		newH := int(float64(h)/ratio + 0.5)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}
		src = resize.Resize(uint(newW), uint(newH), src, resize.Bilinear)
		bounds = src.Bounds()
		origW := w
		w, h = bounds.Dx(), bounds.Dy()
		// Scale comes from the realized dimensions, not the pre-rounding
		// ratio, so it matches the resize that actually happened.
		scale = float64(origW) / float64(w)
	}

	gray := NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Rec. 601 luma on 16-bit channel values, reduced to a byte.
			luma := (299*r + 587*g + 114*b) / 1000
			gray.Pix[y*w+x] = uint8(luma >> 8)
		}
	}
	return gray, scale
}
