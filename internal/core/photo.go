// Detected photo model: normalized quad, crop buffer, user rotation
package core

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Point is a position in normalized image coordinates: both axes in [0,1],
// y increasing upward.
type Point struct {
	X, Y float64
}

// Quad locates a detected photo as four role-labeled corners in normalized
// coordinates. Roles are assigned deterministically from corner positions,
// independent of the orientation the rectangle was discovered in.
type Quad struct {
	TopLeft     Point
	TopRight    Point
	BottomLeft  Point
	BottomRight Point
}

// DetectedPhoto is one photograph found on the scan: its location on the
// source image, the perspective-corrected crop, and the 90°-multiple
// rotation the user has applied on top of the base crop.
type DetectedPhoto struct {
	Quad     Quad
	Image    *image.NRGBA
	Rotation int
}

// Rotate returns a copy of the photo with an additional rotation applied.
// The angle must be a multiple of 90 degrees; positive angles rotate
// counter-clockwise. The crop buffer is recomputed from the stored crop, not
// re-derived from the source scan.
func Rotate(photo DetectedPhoto, degrees int) (DetectedPhoto, error) {
	if degrees%90 != 0 {
		return DetectedPhoto{}, errors.Errorf("rotation must be a multiple of 90 degrees, got %d", degrees)
	}

	turns := ((degrees/90)%4 + 4) % 4
	img := photo.Image
	switch turns {
	case 1:
		img = imaging.Rotate90(img)
	case 2:
		img = imaging.Rotate180(img)
	case 3:
		img = imaging.Rotate270(img)
	}

	return DetectedPhoto{
		Quad:     photo.Quad,
		Image:    img,
		Rotation: (photo.Rotation + turns*90) % 360,
	}, nil
}
