package staging

import (
	"encoding/binary"

	"github.com/gogpu/texel/sample"
)

// kernel reads and writes one texel of a staging format.
type kernel struct {
	load  func(b []byte) sample.Texel
	store func(b []byte, t sample.Texel)
}

var kernels = [formatCount]kernel{
	R8Uint: {
		load:  func(b []byte) sample.Texel { return sample.Texel{uint32(b[0])} },
		store: func(b []byte, t sample.Texel) { b[0] = uint8(t[0]) },
	},
	R16Uint: {
		load:  func(b []byte) sample.Texel { return sample.Texel{uint32(binary.LittleEndian.Uint16(b))} },
		store: func(b []byte, t sample.Texel) { binary.LittleEndian.PutUint16(b, uint16(t[0])) },
	},
	R32Uint: {
		load:  func(b []byte) sample.Texel { return sample.Texel{binary.LittleEndian.Uint32(b)} },
		store: func(b []byte, t sample.Texel) { binary.LittleEndian.PutUint32(b, t[0]) },
	},
	Rgba16Uint: {
		load: func(b []byte) sample.Texel {
			var t sample.Texel
			for i := range t {
				t[i] = uint32(binary.LittleEndian.Uint16(b[2*i:]))
			}
			return t
		},
		store: func(b []byte, t sample.Texel) {
			for i, v := range t {
				binary.LittleEndian.PutUint16(b[2*i:], uint16(v))
			}
		},
	},
	Rgba32Uint: {
		load: func(b []byte) sample.Texel {
			var t sample.Texel
			for i := range t {
				t[i] = binary.LittleEndian.Uint32(b[4*i:])
			}
			return t
		},
		store: func(b []byte, t sample.Texel) {
			for i, v := range t {
				binary.LittleEndian.PutUint32(b[4*i:], v)
			}
		},
	},
}

// Load reads texel i of a staged buffer. Lanes narrower than 32 bits are
// zero-extended.
func Load(staged []byte, f Format, i int) sample.Texel {
	n := f.Bytes()
	return kernels[f].load(staged[i*n : i*n+n])
}

// Store writes texel i of a staged buffer, truncating each lane to the
// lane width.
func Store(staged []byte, f Format, i int, t sample.Texel) {
	n := f.Bytes()
	kernels[f].store(staged[i*n:i*n+n], t)
}

// Widen copies packed texels of b into a new buffer with the stride of f.
// Bytes past the packed width of each texel are zero. A trailing partial
// texel is ignored.
func Widen(packed []byte, b sample.Bits, f Format) []byte {
	src, dst := b.Bytes(), f.Bytes()
	if src == 0 || dst < src {
		return nil
	}
	count := len(packed) / src
	out := make([]byte, count*dst)
	if src == dst {
		copy(out, packed)
		return out
	}
	for i := 0; i < count; i++ {
		copy(out[i*dst:i*dst+src], packed[i*src:i*src+src])
	}
	return out
}

// Narrow is the inverse of Widen: it drops the staging padding of each
// texel and returns a tightly packed buffer.
func Narrow(staged []byte, b sample.Bits, f Format) []byte {
	src, dst := f.Bytes(), b.Bytes()
	if dst == 0 || src < dst {
		return nil
	}
	count := len(staged) / src
	out := make([]byte, count*dst)
	if src == dst {
		copy(out, staged)
		return out
	}
	for i := 0; i < count; i++ {
		copy(out[i*dst:i*dst+dst], staged[i*src:i*src+dst])
	}
	return out
}
