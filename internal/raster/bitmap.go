// Flat pixel arenas shared by the detection pipeline
package raster

// Gray is a grayscale bitmap stored as a flat byte buffer addressed by
// y*Width+x. All pipeline stages operate on this representation instead of
// per-pixel color values.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray allocates a zeroed grayscale bitmap.
func NewGray(width, height int) *Gray {
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the gray value at (x, y).
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set stores a gray value at (x, y).
func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// In reports whether (x, y) lies inside the bitmap.
func (g *Gray) In(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Mask is a binary grid with the same addressing scheme as Gray.
// A set bit marks candidate dark content.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates a cleared mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}
}

// At returns the bit at (x, y).
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Set stores a bit at (x, y).
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// In reports whether (x, y) lies inside the mask.
func (m *Mask) In(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	out := NewMask(m.Width, m.Height)
	copy(out.Bits, m.Bits)
	return out
}

// Count returns the number of set bits.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}
