package core

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func whiteCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func fillBlack(img *image.NRGBA, r image.Rectangle) {
	draw.Draw(img, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
}

// threeSquares is a 1000x1000 white canvas with three separated 100x100
// black squares.
func threeSquares() *image.NRGBA {
	img := whiteCanvas(1000, 1000)
	fillBlack(img, image.Rect(100, 100, 200, 200))
	fillBlack(img, image.Rect(600, 150, 700, 250))
	fillBlack(img, image.Rect(300, 700, 400, 800))
	return img
}

func TestDetectThreeSquares(t *testing.T) {
	opts := DefaultOptions()
	opts.MinRelativeSize = 0.001
	d := NewDetector(opts, testLogger())

	photos, err := d.Detect(context.Background(), threeSquares())
	require.NoError(t, err)
	require.Len(t, photos, 3)

	// Equal areas, so ordering follows raster discovery order.
	wantTopLeftX := []float64{100, 600, 300}
	wantTopLeftYDown := []float64{100, 150, 700}
	for i, photo := range photos {
		assert.InDelta(t, wantTopLeftX[i], photo.Quad.TopLeft.X*1000, 2, "photo %d", i)
		assert.InDelta(t, wantTopLeftYDown[i], (1-photo.Quad.TopLeft.Y)*1000, 2, "photo %d", i)

		// Crop approximates the 100x100 square minus the trim margin.
		assert.InDelta(t, 95, photo.Image.Rect.Dx(), 6, "photo %d", i)
		assert.InDelta(t, 95, photo.Image.Rect.Dy(), 6, "photo %d", i)

		// Crop interior is the photo's dark content.
		c := photo.Image.PixOffset(photo.Image.Rect.Dx()/2, photo.Image.Rect.Dy()/2)
		assert.LessOrEqual(t, photo.Image.Pix[c], uint8(40), "photo %d", i)

		assert.Equal(t, 0, photo.Rotation)
	}
}

func TestDetectQuadRoleInvariant(t *testing.T) {
	opts := DefaultOptions()
	opts.MinRelativeSize = 0.001
	d := NewDetector(opts, testLogger())

	photos, err := d.Detect(context.Background(), threeSquares())
	require.NoError(t, err)
	require.NotEmpty(t, photos)

	for _, photo := range photos {
		q := photo.Quad
		assert.InDelta(t, q.TopLeft.Y, q.TopRight.Y, 0.01)
		assert.InDelta(t, q.BottomLeft.Y, q.BottomRight.Y, 0.01)
		assert.Greater(t, q.TopLeft.Y, q.BottomLeft.Y)
		assert.Less(t, q.TopLeft.X, q.TopRight.X)
		assert.Less(t, q.BottomLeft.X, q.BottomRight.X)
	}
}

func TestDetectAreaWindowExcludes(t *testing.T) {
	d := NewDetector(DefaultOptions(), testLogger())

	// Each square covers 0.01 of the working area, below the default floor.
	photos, err := d.Detect(context.Background(), threeSquares())
	require.NoError(t, err)
	assert.Empty(t, photos)

	// A block covering over half the canvas exceeds the default ceiling.
	big := whiteCanvas(400, 400)
	fillBlack(big, image.Rect(20, 20, 380, 380))
	photos, err = d.Detect(context.Background(), big)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestDetectMaxCount(t *testing.T) {
	opts := DefaultOptions()
	opts.MinRelativeSize = 0.001
	opts.MaxCount = 2
	d := NewDetector(opts, testLogger())

	photos, err := d.Detect(context.Background(), threeSquares())
	require.NoError(t, err)
	assert.Len(t, photos, 2)
}

// rotatedRect draws a filled rectangle of the given half extents rotated by
// theta around (cx, cy).
func rotatedRect(img *image.NRGBA, cx, cy, halfW, halfH, thetaDeg float64) {
	theta := thetaDeg * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			u := dx*cos + dy*sin
			v := -dx*sin + dy*cos
			if math.Abs(u) <= halfW && math.Abs(v) <= halfH {
				i := img.PixOffset(x, y)
				img.Pix[i+0] = 0
				img.Pix[i+1] = 0
				img.Pix[i+2] = 0
				img.Pix[i+3] = 255
			}
		}
	}
}

func TestDetectRotatedRectangle(t *testing.T) {
	img := whiteCanvas(800, 600)
	rotatedRect(img, 400, 300, 150, 100, 15)

	d := NewDetector(DefaultOptions(), testLogger())
	photos, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, photos, 1)

	photo := photos[0]

	// Top edge angle in full-resolution screen coordinates is ~15 degrees
	// modulo 90.
	ax := (photo.Quad.TopRight.X - photo.Quad.TopLeft.X) * 800
	ay := (photo.Quad.TopLeft.Y - photo.Quad.TopRight.Y) * 600
	angle := math.Abs(math.Atan2(ay, ax) * 180 / math.Pi)
	angle = math.Mod(angle, 90)
	nearest := math.Min(math.Abs(angle-15), math.Abs(angle-75))
	assert.LessOrEqual(t, nearest, 2.5, "top edge angle %v", angle)

	// The rectified crop is axis-aligned: up to trim and mask quantization
	// its extent matches the drawn rectangle.
	long := math.Max(float64(photo.Image.Rect.Dx()), float64(photo.Image.Rect.Dy()))
	short := math.Min(float64(photo.Image.Rect.Dx()), float64(photo.Image.Rect.Dy()))
	assert.InDelta(t, 290, long, 15)
	assert.InDelta(t, 190, short, 15)

	// Rectified interior is dark.
	c := photo.Image.PixOffset(photo.Image.Rect.Dx()/2, photo.Image.Rect.Dy()/2)
	assert.LessOrEqual(t, photo.Image.Pix[c], uint8(40))
}

func TestDetectDeterministic(t *testing.T) {
	img := whiteCanvas(800, 600)
	rotatedRect(img, 400, 300, 150, 100, 15)

	d := NewDetector(DefaultOptions(), testLogger())
	first, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	second, err := d.Detect(context.Background(), img)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Quad, second[i].Quad)
	}
}

func TestDetectAllWhiteReturnsEmpty(t *testing.T) {
	d := NewDetector(DefaultOptions(), testLogger())
	photos, err := d.Detect(context.Background(), whiteCanvas(200, 200))
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestDetectTouchingSquaresMerge(t *testing.T) {
	img := whiteCanvas(500, 500)
	fillBlack(img, image.Rect(100, 100, 200, 200))
	fillBlack(img, image.Rect(200, 100, 300, 200))

	d := NewDetector(DefaultOptions(), testLogger())
	photos, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, photos, 1)

	quad := photos[0].Quad
	assert.InDelta(t, 100, quad.TopLeft.X*500, 3)
	assert.InDelta(t, 300, quad.TopRight.X*500, 3)
}

func TestDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDetector(DefaultOptions(), testLogger())
	photos, err := d.Detect(ctx, threeSquares())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, photos)
}

func TestDetectNilSource(t *testing.T) {
	d := NewDetector(DefaultOptions(), testLogger())
	_, err := d.Detect(context.Background(), nil)
	assert.ErrorIs(t, err, ErrCannotLoadImage)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	bad := DefaultOptions()
	bad.Sensitivity = 1.5
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.MinRelativeSize = 0.6
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.MaxCount = 0
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.TrimFactor = 0.5
	assert.Error(t, bad.Validate())
}
