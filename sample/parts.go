package sample

import "fmt"

// Parts describes which channels a texel carries and in which order.
type Parts uint8

const (
	// A is a lone alpha channel. Colour is synthesised as black.
	A Parts = iota

	// R is a lone red channel.
	R

	// G is a lone green channel.
	G

	// B is a lone blue channel.
	B

	// Luma is a single luminance channel replicated to R, G and B.
	Luma

	// LumaA is luminance followed by alpha.
	LumaA

	// Rgb is red, green, blue.
	Rgb

	// Bgr is blue, green, red.
	Bgr

	// Rgba is red, green, blue, alpha.
	Rgba

	// Rgbx is red, green, blue and an ignored fourth component.
	Rgbx

	// Bgra is blue, green, red, alpha.
	Bgra

	// Bgrx is blue, green, red and an ignored fourth component.
	Bgrx

	// Argb is alpha, red, green, blue.
	Argb

	// Xrgb is an ignored component followed by red, green, blue.
	Xrgb

	// Abgr is alpha, blue, green, red.
	Abgr

	// Xbgr is an ignored component followed by blue, green, red.
	Xbgr

	// Yuv is full-range Y'CbCr with BT.709 coefficients. Chroma is centred
	// on 0.5.
	Yuv

	// partsCount is the number of layouts (for internal use).
	partsCount
)

// RGBA is a canonical colour tuple in (R, G, B, A) order.
type RGBA [4]float64

type partsKind uint8

const (
	kindDirect partsKind = iota
	kindLuma
	kindYuv
)

// partsInfo describes one layout. src[ch] is the raw component feeding
// canonical channel ch, or -1 when the channel is synthesised.
type partsInfo struct {
	name       string
	components int
	kind       partsKind
	src        [4]int8
}

var partsTable = [partsCount]partsInfo{
	A:     {"A", 1, kindDirect, [4]int8{-1, -1, -1, 0}},
	R:     {"R", 1, kindDirect, [4]int8{0, -1, -1, -1}},
	G:     {"G", 1, kindDirect, [4]int8{-1, 0, -1, -1}},
	B:     {"B", 1, kindDirect, [4]int8{-1, -1, 0, -1}},
	Luma:  {"Luma", 1, kindLuma, [4]int8{0, 0, 0, -1}},
	LumaA: {"LumaA", 2, kindLuma, [4]int8{0, 0, 0, 1}},
	Rgb:   {"Rgb", 3, kindDirect, [4]int8{0, 1, 2, -1}},
	Bgr:   {"Bgr", 3, kindDirect, [4]int8{2, 1, 0, -1}},
	Rgba:  {"Rgba", 4, kindDirect, [4]int8{0, 1, 2, 3}},
	Rgbx:  {"Rgbx", 4, kindDirect, [4]int8{0, 1, 2, -1}},
	Bgra:  {"Bgra", 4, kindDirect, [4]int8{2, 1, 0, 3}},
	Bgrx:  {"Bgrx", 4, kindDirect, [4]int8{2, 1, 0, -1}},
	Argb:  {"Argb", 4, kindDirect, [4]int8{1, 2, 3, 0}},
	Xrgb:  {"Xrgb", 4, kindDirect, [4]int8{1, 2, 3, -1}},
	Abgr:  {"Abgr", 4, kindDirect, [4]int8{3, 2, 1, 0}},
	Xbgr:  {"Xbgr", 4, kindDirect, [4]int8{3, 2, 1, -1}},
	Yuv:   {"Yuv", 3, kindYuv, [4]int8{0, 1, 2, -1}},
}

// BT.709 luma coefficients.
const (
	lumaR = 0.2126
	lumaB = 0.0722
	lumaG = 1 - lumaR - lumaB
)

// AllParts returns every layout in declaration order.
func AllParts() []Parts {
	out := make([]Parts, partsCount)
	for i := range out {
		out[i] = Parts(i)
	}
	return out
}

// IsValid returns true if p is a known layout.
func (p Parts) IsValid() bool {
	return p < partsCount
}

// Components returns the number of raw components the layout consumes.
// Unknown layouts consume none.
func (p Parts) Components() int {
	if !p.IsValid() {
		return 0
	}
	return partsTable[p].components
}

// HasAlpha reports whether the layout carries its own alpha channel.
func (p Parts) HasAlpha() bool {
	return p.IsValid() && partsTable[p].src[3] >= 0
}

// Normalize maps raw components to canonical (R, G, B, A). Missing colour
// channels become 0, missing alpha becomes 1 and luma is replicated. Yuv
// results may fall outside [0, 1].
func (p Parts) Normalize(c [4]float64) RGBA {
	if !p.IsValid() {
		return RGBA{0, 0, 0, 1}
	}
	info := &partsTable[p]
	if info.kind == kindYuv {
		return yuvToRGB(c)
	}

	var out RGBA
	for ch, s := range info.src {
		switch {
		case s >= 0:
			out[ch] = c[s]
		case ch == 3:
			out[ch] = 1
		}
	}
	return out
}

// Denormalize is the inverse of Normalize. Channels the layout carries are
// restored exactly; padding slots are written as 0. Luma is recovered as the
// BT.709 weighted sum, which is exact for replicated input.
func (p Parts) Denormalize(v RGBA) [4]float64 {
	var out [4]float64
	if !p.IsValid() {
		return out
	}
	info := &partsTable[p]
	switch info.kind {
	case kindYuv:
		return rgbToYuv(v)
	case kindLuma:
		out[0] = lumaR*v[0] + lumaG*v[1] + lumaB*v[2]
		if s := info.src[3]; s >= 0 {
			out[s] = v[3]
		}
		return out
	}

	for ch, s := range info.src {
		if s >= 0 {
			out[s] = v[ch]
		}
	}
	return out
}

// yuvToRGB converts full-range Y'CbCr to R'G'B'.
func yuvToRGB(c [4]float64) RGBA {
	y, cb, cr := c[0], c[1]-0.5, c[2]-0.5
	r := y + 2*(1-lumaR)*cr
	b := y + 2*(1-lumaB)*cb
	g := (y - lumaR*r - lumaB*b) / lumaG
	return RGBA{r, g, b, 1}
}

// rgbToYuv converts R'G'B' to full-range Y'CbCr.
func rgbToYuv(v RGBA) [4]float64 {
	y := lumaR*v[0] + lumaG*v[1] + lumaB*v[2]
	cb := (v[2]-y)/(2*(1-lumaB)) + 0.5
	cr := (v[0]-y)/(2*(1-lumaR)) + 0.5
	return [4]float64{y, cb, cr, 0}
}

// String returns the name of the layout.
func (p Parts) String() string {
	if !p.IsValid() {
		return fmt.Sprintf("Parts(%d)", uint8(p))
	}
	return partsTable[p].name
}
