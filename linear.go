package texel

import "math"

// Linear is an image in the canonical representation: linear-light RGBA,
// four float32 values per texel, rows top to bottom. Alpha is straight
// (not premultiplied).
type Linear struct {
	Width  int
	Height int
	Pix    []float32
}

// NewLinear creates a zeroed canonical image. Non-positive dimensions
// yield an empty image. It panics if the image would be too large to
// address.
func NewLinear(width, height int) *Linear {
	width, height = max(width, 0), max(height, 0)
	if !sizeFits(width, height) {
		panic("texel: NewLinear dimensions overflow")
	}
	return &Linear{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}
}

// Texels returns the number of texels in the image.
func (l *Linear) Texels() int {
	return l.Width * l.Height
}

// At returns the texel at (x, y). Out-of-range coordinates return
// transparent black.
func (l *Linear) At(x, y int) [4]float32 {
	if x < 0 || x >= l.Width || y < 0 || y >= l.Height {
		return [4]float32{}
	}
	i := (y*l.Width + x) * 4
	return [4]float32(l.Pix[i : i+4])
}

// Set stores c at (x, y). Out-of-range coordinates are ignored.
func (l *Linear) Set(x, y int, c [4]float32) {
	if x < 0 || x >= l.Width || y < 0 || y >= l.Height {
		return
	}
	i := (y*l.Width + x) * 4
	copy(l.Pix[i:i+4], c[:])
}

// valid reports whether Pix holds exactly Width*Height texels.
func (l *Linear) valid() bool {
	return l.Width >= 0 && l.Height >= 0 && sizeFits(l.Width, l.Height) &&
		len(l.Pix) == l.Width*l.Height*4
}

// sizeFits reports whether a width x height image, 16 bytes per texel, can
// be addressed. Both dimensions must be non-negative.
func sizeFits(width, height int) bool {
	return width == 0 || height == 0 || width <= math.MaxInt/16/height
}
