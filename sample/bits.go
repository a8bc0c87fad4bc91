package sample

import "fmt"

// Bits describes how components are packed into the bytes of a texel.
//
// Packed formats (Int332, Int565, Int1010102, ...) are named and laid out
// from the most significant bit down. Array formats (Int8x3, Int16x4, the
// float formats) are laid out in little-endian memory order. The "i" in a
// name marks a component that carries no colour; it is still demuxed so
// that a round trip preserves it, and the Xrgb/Rgbx family of Parts skips
// it.
type Bits uint8

const (
	// Int8 is a single 8-bit integer.
	Int8 Bits = iota

	// Int332 is three components of 3, 3 and 2 bits in one byte.
	Int332

	// Int233 is three components of 2, 3 and 3 bits in one byte.
	Int233

	// Int16 is a single 16-bit integer.
	Int16

	// Int4x4 is four 4-bit components in 16 bits.
	Int4x4

	// Inti444 is four 4-bit components, the first one ignored.
	Inti444

	// Int444i is four 4-bit components, the last one ignored.
	Int444i

	// Int565 is three components of 5, 6 and 5 bits in 16 bits.
	Int565

	// Int8x2 is two 8-bit integers.
	Int8x2

	// Int8x3 is three 8-bit integers.
	Int8x3

	// Int8x4 is four 8-bit integers.
	Int8x4

	// Int1010102 is three 10-bit components and a 2-bit component.
	Int1010102

	// Int2101010 is a 2-bit component and three 10-bit components.
	Int2101010

	// Int101010i is three 10-bit components and an ignored 2-bit component.
	Int101010i

	// Inti101010 is an ignored 2-bit component and three 10-bit components.
	Inti101010

	// Int16x2 is two 16-bit integers.
	Int16x2

	// Int16x3 is three 16-bit integers.
	Int16x3

	// Int16x4 is four 16-bit integers.
	Int16x4

	// Float16x4 is four IEEE 754 half-precision floats.
	Float16x4

	// Float32x4 is four IEEE 754 single-precision floats.
	Float32x4

	// bitsCount is the number of packings (for internal use).
	bitsCount
)

// Texel is one raw texel as read from staging storage. Scalar staging
// formats use lane 0 only.
type Texel [4]uint32

// Field locates one component inside a Texel.
type Field struct {
	Lane    uint8
	Shift   uint8
	Width   uint8
	Padding bool
}

// Mask returns the right-justified bit mask of the field.
func (f Field) Mask() uint32 {
	if f.Width >= 32 {
		return ^uint32(0)
	}
	return 1<<f.Width - 1
}

// bitsInfo describes one packing.
type bitsInfo struct {
	name   string
	packed int
	lanes  int
	float  bool
	fields []Field
}

func field(lane, shift, width uint8) Field { return Field{Lane: lane, Shift: shift, Width: width} }
func pad(lane, shift, width uint8) Field {
	return Field{Lane: lane, Shift: shift, Width: width, Padding: true}
}

var bitsTable = [bitsCount]bitsInfo{
	Int8:       {"Int8", 8, 1, false, []Field{field(0, 0, 8)}},
	Int332:     {"Int332", 8, 1, false, []Field{field(0, 5, 3), field(0, 2, 3), field(0, 0, 2)}},
	Int233:     {"Int233", 8, 1, false, []Field{field(0, 6, 2), field(0, 3, 3), field(0, 0, 3)}},
	Int16:      {"Int16", 16, 1, false, []Field{field(0, 0, 16)}},
	Int4x4:     {"Int4x4", 16, 1, false, []Field{field(0, 12, 4), field(0, 8, 4), field(0, 4, 4), field(0, 0, 4)}},
	Inti444:    {"Inti444", 16, 1, false, []Field{pad(0, 12, 4), field(0, 8, 4), field(0, 4, 4), field(0, 0, 4)}},
	Int444i:    {"Int444i", 16, 1, false, []Field{field(0, 12, 4), field(0, 8, 4), field(0, 4, 4), pad(0, 0, 4)}},
	Int565:     {"Int565", 16, 1, false, []Field{field(0, 11, 5), field(0, 5, 6), field(0, 0, 5)}},
	Int8x2:     {"Int8x2", 16, 1, false, []Field{field(0, 0, 8), field(0, 8, 8)}},
	Int8x3:     {"Int8x3", 24, 1, false, []Field{field(0, 0, 8), field(0, 8, 8), field(0, 16, 8)}},
	Int8x4:     {"Int8x4", 32, 1, false, []Field{field(0, 0, 8), field(0, 8, 8), field(0, 16, 8), field(0, 24, 8)}},
	Int1010102: {"Int1010102", 32, 1, false, []Field{field(0, 22, 10), field(0, 12, 10), field(0, 2, 10), field(0, 0, 2)}},
	Int2101010: {"Int2101010", 32, 1, false, []Field{field(0, 30, 2), field(0, 20, 10), field(0, 10, 10), field(0, 0, 10)}},
	Int101010i: {"Int101010i", 32, 1, false, []Field{field(0, 22, 10), field(0, 12, 10), field(0, 2, 10), pad(0, 0, 2)}},
	Inti101010: {"Inti101010", 32, 1, false, []Field{pad(0, 30, 2), field(0, 20, 10), field(0, 10, 10), field(0, 0, 10)}},
	Int16x2:    {"Int16x2", 32, 1, false, []Field{field(0, 0, 16), field(0, 16, 16)}},
	Int16x3:    {"Int16x3", 48, 4, false, []Field{field(0, 0, 16), field(1, 0, 16), field(2, 0, 16)}},
	Int16x4:    {"Int16x4", 64, 4, false, []Field{field(0, 0, 16), field(1, 0, 16), field(2, 0, 16), field(3, 0, 16)}},
	Float16x4:  {"Float16x4", 64, 4, true, []Field{field(0, 0, 16), field(1, 0, 16), field(2, 0, 16), field(3, 0, 16)}},
	Float32x4:  {"Float32x4", 128, 4, true, []Field{field(0, 0, 32), field(1, 0, 32), field(2, 0, 32), field(3, 0, 32)}},
}

// AllBits returns every packing in declaration order.
func AllBits() []Bits {
	out := make([]Bits, bitsCount)
	for i := range out {
		out[i] = Bits(i)
	}
	return out
}

// IsValid returns true if b is a known packing.
func (b Bits) IsValid() bool {
	return b < bitsCount
}

// Components returns the number of raw components the packing yields,
// padding components included.
func (b Bits) Components() int {
	if !b.IsValid() {
		return 0
	}
	return len(bitsTable[b].fields)
}

// PackedBits returns the width of one packed texel in bits.
func (b Bits) PackedBits() int {
	if !b.IsValid() {
		return 0
	}
	return bitsTable[b].packed
}

// Bytes returns the size of one packed texel in host memory.
func (b Bits) Bytes() int {
	return b.PackedBits() / 8
}

// Lanes returns 1 for packings held in a single scalar and 4 for packings
// spread over equal-width lanes.
func (b Bits) Lanes() int {
	if !b.IsValid() {
		return 0
	}
	return bitsTable[b].lanes
}

// IsFloat reports whether the fields hold IEEE floats.
func (b Bits) IsFloat() bool {
	return b.IsValid() && bitsTable[b].float
}

// Fields returns a copy of the field layout.
func (b Bits) Fields() []Field {
	if !b.IsValid() {
		return nil
	}
	return append([]Field(nil), bitsTable[b].fields...)
}

// String returns the name of the packing.
func (b Bits) String() string {
	if !b.IsValid() {
		return fmt.Sprintf("Bits(%d)", uint8(b))
	}
	return bitsTable[b].name
}
