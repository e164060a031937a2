// Binarization of the grayscale working bitmap
package algorithms

import (
	"math"

	"scansplit/internal/raster"
)

// Cutoff maps a detection sensitivity in [0,1] to the binarization cutoff.
// Higher sensitivity raises the cutoff so lighter pixels count as content,
// which picks up faint photos at the cost of more false positives.
func Cutoff(sensitivity float64) uint8 {
	c := math.Round(200 + sensitivity*35)
	if c < 0 {
		c = 0
	}
	if c > 255 {
		c = 255
	}
	return uint8(c)
}

// Threshold binarizes the working bitmap. A pixel is foreground iff its gray
// value is strictly below the sensitivity-derived cutoff.
func Threshold(gray *raster.Gray, sensitivity float64) *raster.Mask {
	cutoff := Cutoff(sensitivity)
	mask := raster.NewMask(gray.Width, gray.Height)
	for i, v := range gray.Pix {
		mask.Bits[i] = v < cutoff
	}
	return mask
}
