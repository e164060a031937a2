package raster

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestFromImageKeepsSmallImages(t *testing.T) {
	gray, scale := FromImage(uniformImage(800, 600, color.White))
	assert.Equal(t, 800, gray.Width)
	assert.Equal(t, 600, gray.Height)
	assert.Equal(t, 1.0, scale)
	assert.Equal(t, uint8(255), gray.At(400, 300))
}

func TestFromImageDownscalesLargeImages(t *testing.T) {
	gray, scale := FromImage(uniformImage(2000, 1000, color.Black))
	assert.Equal(t, MaxWorkingSide, gray.Width)
	assert.Equal(t, 500, gray.Height)
	assert.Equal(t, 2.0, scale)
	assert.Equal(t, uint8(0), gray.At(10, 10))
}

func TestFromImageScaleMatchesRealizedResize(t *testing.T) {
	// 901/1.8 rounds to 501, so the realized width ratio is 901/501, not
	// the pre-rounding 1.8.
	gray, scale := FromImage(uniformImage(901, 1800, color.White))
	assert.Equal(t, 501, gray.Width)
	assert.Equal(t, MaxWorkingSide, gray.Height)
	assert.InDelta(t, 901.0/501.0, scale, 1e-9)
}

func TestFromImageLuma(t *testing.T) {
	mid := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	gray, _ := FromImage(uniformImage(10, 10, mid))
	assert.Equal(t, uint8(128), gray.At(5, 5))
}

func TestMaskAccessors(t *testing.T) {
	m := NewMask(4, 3)
	require.Len(t, m.Bits, 12)
	assert.Equal(t, 0, m.Count())

	m.Set(2, 1, true)
	assert.True(t, m.At(2, 1))
	assert.Equal(t, 1, m.Count())
	assert.True(t, m.In(3, 2))
	assert.False(t, m.In(4, 0))

	clone := m.Clone()
	clone.Set(0, 0, true)
	assert.False(t, m.At(0, 0))
	assert.True(t, clone.At(2, 1))
}
