// Projective transform construction and perspective resampling
package algorithms

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// ErrDegenerateQuad is returned when no projective transform exists for the
// requested quadrilateral.
var ErrDegenerateQuad = errors.New("degenerate quadrilateral")

// Homography maps unit-square coordinates (u, v) onto a quadrilateral:
//
//	x = (a*u + b*v + c) / (g*u + h*v + 1)
//	y = (d*u + e*v + f) / (g*u + h*v + 1)
type Homography struct {
	a, b, c, d, e, f, g, h float64
}

// SquareToQuad builds the projective transform taking the unit square
// corners (0,0), (1,0), (1,1), (0,1) to tl, tr, br, bl respectively,
// following Heckbert's closed-form construction.
func SquareToQuad(tl, tr, br, bl Point2) (*Homography, error) {
	sx := tl.X - tr.X + br.X - bl.X
	sy := tl.Y - tr.Y + br.Y - bl.Y

	m := &Homography{c: tl.X, f: tl.Y}
	if sx == 0 && sy == 0 {
		// Parallelogram: the transform is affine.
		m.a = tr.X - tl.X
		m.b = bl.X - tl.X
		m.d = tr.Y - tl.Y
		m.e = bl.Y - tl.Y
	} else {
		dx1 := tr.X - br.X
		dy1 := tr.Y - br.Y
		dx2 := bl.X - br.X
		dy2 := bl.Y - br.Y
		den := dx1*dy2 - dy1*dx2
		if den == 0 {
			return nil, ErrDegenerateQuad
		}
		m.g = (sx*dy2 - sy*dx2) / den
		m.h = (dx1*sy - dy1*sx) / den
		m.a = tr.X - tl.X + m.g*tr.X
		m.b = bl.X - tl.X + m.h*bl.X
		m.d = tr.Y - tl.Y + m.g*tr.Y
		m.e = bl.Y - tl.Y + m.h*bl.Y
	}

	if quadArea(tl, tr, br, bl) == 0 {
		return nil, ErrDegenerateQuad
	}
	return m, nil
}

// Apply maps a unit-square coordinate onto the quadrilateral.
func (m *Homography) Apply(u, v float64) (float64, float64) {
	w := m.g*u + m.h*v + 1
	return (m.a*u + m.b*v + m.c) / w, (m.d*u + m.e*v + m.f) / w
}

// WarpQuad resamples the quadrilateral tl/tr/br/bl of src onto an
// axis-aligned outW x outH rectangle, sampling the source bilinearly through
// the inverse mapping.
func WarpQuad(src *image.NRGBA, tl, tr, br, bl Point2, outW, outH int) (*image.NRGBA, error) {
	if outW < 1 || outH < 1 {
		return nil, ErrDegenerateQuad
	}
	m, err := SquareToQuad(tl, tr, br, bl)
	if err != nil {
		return nil, err
	}

	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	for py := 0; py < outH; py++ {
		v := (float64(py) + 0.5) / float64(outH)
		for px := 0; px < outW; px++ {
			u := (float64(px) + 0.5) / float64(outW)
			sx, sy := m.Apply(u, v)
			r, g, b, a := sampleBilinear(src, sx, sy)
			i := out.PixOffset(px, py)
			out.Pix[i+0] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = b
			out.Pix[i+3] = a
		}
	}
	return out, nil
}

func sampleBilinear(src *image.NRGBA, x, y float64) (uint8, uint8, uint8, uint8) {
	w := src.Rect.Dx()
	h := src.Rect.Dy()

	x -= 0.5
	y -= 0.5
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	clampX := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > w-1 {
			return w - 1
		}
		return v
	}
	clampY := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > h-1 {
			return h - 1
		}
		return v
	}

	i00 := src.PixOffset(src.Rect.Min.X+clampX(x0), src.Rect.Min.Y+clampY(y0))
	i10 := src.PixOffset(src.Rect.Min.X+clampX(x0+1), src.Rect.Min.Y+clampY(y0))
	i01 := src.PixOffset(src.Rect.Min.X+clampX(x0), src.Rect.Min.Y+clampY(y0+1))
	i11 := src.PixOffset(src.Rect.Min.X+clampX(x0+1), src.Rect.Min.Y+clampY(y0+1))

	lerp2 := func(ch int) uint8 {
		top := float64(src.Pix[i00+ch])*(1-fx) + float64(src.Pix[i10+ch])*fx
		bot := float64(src.Pix[i01+ch])*(1-fx) + float64(src.Pix[i11+ch])*fx
		return uint8(top*(1-fy) + bot*fy + 0.5)
	}
	return lerp2(0), lerp2(1), lerp2(2), lerp2(3)
}

func quadArea(tl, tr, br, bl Point2) float64 {
	pts := [4]Point2{tl, tr, br, bl}
	area := 0.0
	for i := range pts {
		j := (i + 1) % 4
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(area) / 2
}
