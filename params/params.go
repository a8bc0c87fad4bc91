// Package params encodes the per-dispatch parameter block shared by every
// invocation of the texel program.
//
// The block carries only the three descriptor tags. It is laid out as a
// 16-byte uniform: three little-endian uint32 words followed by one zero
// word so that it meets uniform buffer alignment. Decode and encode use the
// same block.
package params

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/texel/format"
	"github.com/gogpu/texel/sample"
	"github.com/gogpu/texel/transfer"
)

// Size is the byte size of an encoded block.
const Size = 16

// ErrMalformed is returned for blocks of the wrong size, with a non-zero
// pad word, or with a tag that names no known variant.
var ErrMalformed = errors.New("params: malformed block")

// Block holds the descriptor tags as they are read by the program.
type Block struct {
	Transfer uint32
	Parts    uint32
	Bits     uint32
}

// FromDescriptor returns the block for d.
func FromDescriptor(d format.Descriptor) Block {
	return Block{
		Transfer: uint32(d.Transfer),
		Parts:    uint32(d.Parts),
		Bits:     uint32(d.Bits),
	}
}

// Descriptor returns the descriptor encoded in b. Every tag must name a
// known variant; the combination itself is not validated.
func (b Block) Descriptor() (format.Descriptor, error) {
	d := format.Descriptor{
		Transfer: transfer.Function(b.Transfer),
		Parts:    sample.Parts(b.Parts),
		Bits:     sample.Bits(b.Bits),
	}
	switch {
	case uint32(d.Transfer) != b.Transfer || !d.Transfer.IsValid():
		return format.Descriptor{}, fmt.Errorf("%w: transfer tag %d", ErrMalformed, b.Transfer)
	case uint32(d.Parts) != b.Parts || !d.Parts.IsValid():
		return format.Descriptor{}, fmt.Errorf("%w: parts tag %d", ErrMalformed, b.Parts)
	case uint32(d.Bits) != b.Bits || !d.Bits.IsValid():
		return format.Descriptor{}, fmt.Errorf("%w: bits tag %d", ErrMalformed, b.Bits)
	}
	return d, nil
}

// Bytes serialises the block.
func (b Block) Bytes() []byte {
	return b.AppendBytes(make([]byte, 0, Size))
}

// AppendBytes appends the serialised block to dst.
func (b Block) AppendBytes(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, b.Transfer)
	dst = binary.LittleEndian.AppendUint32(dst, b.Parts)
	dst = binary.LittleEndian.AppendUint32(dst, b.Bits)
	return binary.LittleEndian.AppendUint32(dst, 0)
}

// Parse decodes a serialised block.
func Parse(data []byte) (Block, error) {
	if len(data) != Size {
		return Block{}, fmt.Errorf("%w: %d bytes, want %d", ErrMalformed, len(data), Size)
	}
	if pad := binary.LittleEndian.Uint32(data[12:]); pad != 0 {
		return Block{}, fmt.Errorf("%w: pad word %#x", ErrMalformed, pad)
	}
	b := Block{
		Transfer: binary.LittleEndian.Uint32(data[0:]),
		Parts:    binary.LittleEndian.Uint32(data[4:]),
		Bits:     binary.LittleEndian.Uint32(data[8:]),
	}
	if _, err := b.Descriptor(); err != nil {
		return Block{}, err
	}
	return b, nil
}
