package staging

import (
	"bytes"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/texel/sample"
)

func TestSelect(t *testing.T) {
	want := map[sample.Bits]Format{
		sample.Int8:       R8Uint,
		sample.Int332:     R8Uint,
		sample.Int233:     R8Uint,
		sample.Int16:      R16Uint,
		sample.Int4x4:     R16Uint,
		sample.Inti444:    R16Uint,
		sample.Int444i:    R16Uint,
		sample.Int565:     R16Uint,
		sample.Int8x2:     R16Uint,
		sample.Int8x3:     R32Uint,
		sample.Int8x4:     R32Uint,
		sample.Int1010102: R32Uint,
		sample.Int2101010: R32Uint,
		sample.Int101010i: R32Uint,
		sample.Inti101010: R32Uint,
		sample.Int16x2:    R32Uint,
		sample.Int16x3:    Rgba16Uint,
		sample.Int16x4:    Rgba16Uint,
		sample.Float16x4:  Rgba16Uint,
		sample.Float32x4:  Rgba32Uint,
	}

	for _, b := range sample.AllBits() {
		t.Run(b.String(), func(t *testing.T) {
			got := Select(b)
			if got != want[b] {
				t.Errorf("Select(%v) = %v, want %v", b, got, want[b])
			}
			if again := Select(b); again != got {
				t.Errorf("Select(%v) not deterministic: %v then %v", b, got, again)
			}
		})
	}
}

func TestSelectIsMinimal(t *testing.T) {
	for _, b := range sample.AllBits() {
		got := Select(b)
		if got.Bits() < b.PackedBits() {
			t.Errorf("Select(%v) = %v holds %d bits, need %d", b, got, got.Bits(), b.PackedBits())
		}
		if got.Lanes() != b.Lanes() {
			t.Errorf("Select(%v) = %v has %d lanes, want %d", b, got, got.Lanes(), b.Lanes())
		}
		for _, f := range All() {
			if f.Lanes() == b.Lanes() && f.Bits() >= b.PackedBits() && f.Bits() < got.Bits() {
				t.Errorf("Select(%v) = %v, but %v is narrower", b, got, f)
			}
		}
	}
}

func TestSelectUnknown(t *testing.T) {
	if got := Select(sample.Bits(200)); got != Undefined {
		t.Errorf("Select(unknown) = %v", got)
	}
	if Undefined.IsValid() {
		t.Error("Undefined.IsValid() = true")
	}
}

func TestFormatInfo(t *testing.T) {
	tests := []struct {
		format Format
		bytes  int
		native gputypes.TextureFormat
	}{
		{R8Uint, 1, gputypes.TextureFormatR8Uint},
		{R16Uint, 2, gputypes.TextureFormatR16Uint},
		{R32Uint, 4, gputypes.TextureFormatR32Uint},
		{Rgba16Uint, 8, gputypes.TextureFormatRGBA16Uint},
		{Rgba32Uint, 16, gputypes.TextureFormatRGBA32Uint},
	}
	for _, tt := range tests {
		if got := tt.format.Bytes(); got != tt.bytes {
			t.Errorf("%v.Bytes() = %d, want %d", tt.format, got, tt.bytes)
		}
		if got := tt.format.TextureFormat(); got != tt.native {
			t.Errorf("%v.TextureFormat() = %v, want %v", tt.format, got, tt.native)
		}
	}
}

func TestEntryPointNames(t *testing.T) {
	tests := []struct {
		bits sample.Bits
		dir  Direction
		want string
	}{
		{sample.Int8, Decode, "decode_r8"},
		{sample.Int565, Encode, "encode_r16"},
		{sample.Int8x4, Decode, "decode_r32"},
		{sample.Float16x4, Encode, "encode_rgba16"},
		{sample.Float32x4, Decode, "decode_rgba32"},
	}
	for _, tt := range tests {
		if got := EntryFor(tt.bits, tt.dir).Name(); got != tt.want {
			t.Errorf("EntryFor(%v, %v).Name() = %q, want %q", tt.bits, tt.dir, got, tt.want)
		}
	}
	if got := len(EntryPoints()); got != 10 {
		t.Errorf("len(EntryPoints()) = %d, want 10", got)
	}
}

func TestWidenNarrow(t *testing.T) {
	packed := []byte{1, 2, 3, 4, 5, 6}
	staged := Widen(packed, sample.Int8x3, R32Uint)
	want := []byte{1, 2, 3, 0, 4, 5, 6, 0}
	if !bytes.Equal(staged, want) {
		t.Fatalf("Widen = %v, want %v", staged, want)
	}
	if got := Narrow(staged, sample.Int8x3, R32Uint); !bytes.Equal(got, packed) {
		t.Errorf("Narrow = %v, want %v", got, packed)
	}

	same := Widen(packed, sample.Int8, R8Uint)
	same[0] = 99
	if packed[0] != 1 {
		t.Error("Widen aliased its input")
	}
}

func TestLoadStore(t *testing.T) {
	for _, f := range All() {
		t.Run(f.String(), func(t *testing.T) {
			buf := make([]byte, 3*f.Bytes())
			var in sample.Texel
			for lane := 0; lane < f.Lanes(); lane++ {
				in[lane] = uint32(0xA5A5A5A5) >> (32 - f.LaneBits())
			}
			Store(buf, f, 1, in)
			if got := Load(buf, f, 1); got != in {
				t.Errorf("Load = %#x, want %#x", got, in)
			}
			if got := Load(buf, f, 0); got != (sample.Texel{}) {
				t.Errorf("neighbour texel = %#x, want zero", got)
			}
		})
	}
}

func TestLoadLittleEndian(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04}
	if got := Load(buf, R32Uint, 0); got[0] != 0x04030201 {
		t.Errorf("Load r32 = %#x", got[0])
	}
	if got := Load(buf, R16Uint, 1); got[0] != 0x0403 {
		t.Errorf("Load r16 = %#x", got[0])
	}
}
