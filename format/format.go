// Package format defines the pixel format descriptor and its validation.
package format

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/texel/sample"
	"github.com/gogpu/texel/transfer"
)

// ErrInvalidCombination is returned when a descriptor's packing cannot feed
// its channel layout.
var ErrInvalidCombination = errors.New("format: invalid combination")

// Descriptor fully describes an externally defined pixel encoding. It is a
// comparable value and may be used as a map key.
type Descriptor struct {
	Transfer transfer.Function
	Parts    sample.Parts
	Bits     sample.Bits
}

// Validate checks that Bits yields enough raw components for Parts. A
// single-channel layout (A, R, G, B, Luma) requires exactly one component;
// every other layout requires at least as many components as it consumes.
func (d Descriptor) Validate() error {
	if !d.Transfer.IsValid() {
		return fmt.Errorf("%w: unknown transfer %v", ErrInvalidCombination, d.Transfer)
	}
	if !d.Parts.IsValid() {
		return fmt.Errorf("%w: unknown parts %v", ErrInvalidCombination, d.Parts)
	}
	if !d.Bits.IsValid() {
		return fmt.Errorf("%w: unknown bits %v", ErrInvalidCombination, d.Bits)
	}

	have, need := d.Bits.Components(), d.Parts.Components()
	if need == 1 && have != 1 {
		return fmt.Errorf("%w: %v takes exactly 1 component, %v yields %d",
			ErrInvalidCombination, d.Parts, d.Bits, have)
	}
	if have < need {
		return fmt.Errorf("%w: %v takes %d components, %v yields %d",
			ErrInvalidCombination, d.Parts, need, d.Bits, have)
	}
	return nil
}

// String returns a compact form such as "Srgb/Rgba/Int8x4".
func (d Descriptor) String() string {
	return fmt.Sprintf("%v/%v/%v", d.Transfer, d.Parts, d.Bits)
}

// Parse reads a descriptor in the form produced by String, for example
// "srgb/rgba/int8x4". Names are matched as by transfer.Parse,
// sample.ParseParts and sample.ParseBits. The result is validated.
func Parse(s string) (Descriptor, error) {
	fields := strings.Split(s, "/")
	if len(fields) != 3 {
		return Descriptor{}, fmt.Errorf("format: %q is not transfer/parts/bits", s)
	}
	tf, err := transfer.Parse(fields[0])
	if err != nil {
		return Descriptor{}, err
	}
	parts, err := sample.ParseParts(fields[1])
	if err != nil {
		return Descriptor{}, err
	}
	bits, err := sample.ParseBits(fields[2])
	if err != nil {
		return Descriptor{}, err
	}
	d := Descriptor{Transfer: tf, Parts: parts, Bits: bits}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Channel selects a single colour channel.
type Channel uint8

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
)

// Channel returns a descriptor that reads one colour channel of an 8-bit
// RGB-family format in place, together with the byte offset of that
// channel within a texel. Int8 is the result packing; the caller strides by
// d.Bits.Bytes() and reads at the offset.
func (d Descriptor) Channel(ch Channel) (Descriptor, int, error) {
	if err := d.Validate(); err != nil {
		return Descriptor{}, 0, err
	}
	if ch > ChannelB {
		return Descriptor{}, 0, fmt.Errorf("%w: unknown channel %d", ErrInvalidCombination, ch)
	}
	switch d.Bits {
	case sample.Int8x3, sample.Int8x4:
	default:
		return Descriptor{}, 0, fmt.Errorf("%w: channel extraction needs Int8x3 or Int8x4, got %v",
			ErrInvalidCombination, d.Bits)
	}

	// Slot of each canonical channel per layout.
	var slots [3]int
	switch d.Parts {
	case sample.Rgb, sample.Rgba, sample.Rgbx:
		slots = [3]int{0, 1, 2}
	case sample.Bgr, sample.Bgra, sample.Bgrx:
		slots = [3]int{2, 1, 0}
	case sample.Argb, sample.Xrgb:
		slots = [3]int{1, 2, 3}
	case sample.Abgr, sample.Xbgr:
		slots = [3]int{3, 2, 1}
	default:
		return Descriptor{}, 0, fmt.Errorf("%w: channel extraction needs an RGB layout, got %v",
			ErrInvalidCombination, d.Parts)
	}

	parts := [3]sample.Parts{sample.R, sample.G, sample.B}[ch]
	return Descriptor{Transfer: d.Transfer, Parts: parts, Bits: sample.Int8}, slots[ch], nil
}

// Layout is the extent of a tightly packed image buffer.
type Layout struct {
	Width  int
	Height int
}

// Texels returns the number of texels in the layout.
func (l Layout) Texels() int {
	if l.Width <= 0 || l.Height <= 0 {
		return 0
	}
	return l.Width * l.Height
}

// ByteLen returns the byte length of a buffer holding the layout in d.
// The result is only meaningful when l.Fits(d).
func (l Layout) ByteLen(d Descriptor) int {
	return l.Texels() * d.Bits.Bytes()
}

// canonicalBytes is the size of one canonical linear RGBA texel.
const canonicalBytes = 16

// Fits reports whether l has non-negative dimensions and every buffer a
// conversion derives from it, packed in d, staged or canonical, has a byte
// length that fits in an int.
func (l Layout) Fits(d Descriptor) bool {
	if l.Width < 0 || l.Height < 0 {
		return false
	}
	if l.Width == 0 || l.Height == 0 {
		return true
	}
	per := max(d.Bits.Bytes(), canonicalBytes)
	return l.Width <= math.MaxInt/per/l.Height
}
