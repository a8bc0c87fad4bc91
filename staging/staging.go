// Package staging selects the native storage format that aliases a bit
// packing on the device, and moves texels between the caller's packed
// bytes and that storage.
//
// The catalogue is deliberately small: the device binds one storage
// resource per staging format and runs the program entry point compiled for
// it. Selection is a pure lookup and always picks the narrowest member that
// holds the packing without truncation.
package staging

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/texel/sample"
)

// Format is a native unsigned-integer storage format.
type Format uint8

const (
	// Undefined is the zero value and selects nothing.
	Undefined Format = iota

	// R8Uint is one 8-bit lane.
	R8Uint

	// R16Uint is one 16-bit lane.
	R16Uint

	// R32Uint is one 32-bit lane.
	R32Uint

	// Rgba16Uint is four 16-bit lanes.
	Rgba16Uint

	// Rgba32Uint is four 32-bit lanes.
	Rgba32Uint

	// formatCount is the number of formats (for internal use).
	formatCount
)

// Info contains metadata about a staging format.
type Info struct {
	// Name is the short name used in program entry points.
	Name string

	// Lanes is the number of equal-width integer lanes.
	Lanes int

	// LaneBits is the width of each lane.
	LaneBits int

	// Native is the matching device texture format.
	Native gputypes.TextureFormat
}

var infoTable = [formatCount]Info{
	Undefined:  {Name: "undefined", Native: gputypes.TextureFormatUndefined},
	R8Uint:     {Name: "r8", Lanes: 1, LaneBits: 8, Native: gputypes.TextureFormatR8Uint},
	R16Uint:    {Name: "r16", Lanes: 1, LaneBits: 16, Native: gputypes.TextureFormatR16Uint},
	R32Uint:    {Name: "r32", Lanes: 1, LaneBits: 32, Native: gputypes.TextureFormatR32Uint},
	Rgba16Uint: {Name: "rgba16", Lanes: 4, LaneBits: 16, Native: gputypes.TextureFormatRGBA16Uint},
	Rgba32Uint: {Name: "rgba32", Lanes: 4, LaneBits: 32, Native: gputypes.TextureFormatRGBA32Uint},
}

// All returns the catalogue from narrowest to widest, Undefined excluded.
func All() []Format {
	return []Format{R8Uint, R16Uint, R32Uint, Rgba16Uint, Rgba32Uint}
}

// Select returns the narrowest catalogue member whose lane shape matches b
// and whose width holds b.PackedBits(). Unknown packings select Undefined.
func Select(b sample.Bits) Format {
	if !b.IsValid() {
		return Undefined
	}
	for _, f := range All() {
		if f.Lanes() == b.Lanes() && f.Bits() >= b.PackedBits() {
			return f
		}
	}
	return Undefined
}

// IsValid returns true if f is a catalogue member.
func (f Format) IsValid() bool {
	return f > Undefined && f < formatCount
}

// Info returns metadata for the format.
func (f Format) Info() Info {
	if f >= formatCount {
		return infoTable[Undefined]
	}
	return infoTable[f]
}

// Lanes returns the number of lanes.
func (f Format) Lanes() int { return f.Info().Lanes }

// LaneBits returns the width of one lane.
func (f Format) LaneBits() int { return f.Info().LaneBits }

// Bits returns the total texel width.
func (f Format) Bits() int { return f.Lanes() * f.LaneBits() }

// Bytes returns the texel stride in storage.
func (f Format) Bytes() int { return f.Bits() / 8 }

// TextureFormat returns the native device format aliased by f.
func (f Format) TextureFormat() gputypes.TextureFormat { return f.Info().Native }

// String returns the short name of the format.
func (f Format) String() string {
	if f >= formatCount {
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
	return infoTable[f].Name
}

// Direction selects the decode or encode half of the program.
type Direction uint8

const (
	// Decode converts raw texels to canonical linear RGBA.
	Decode Direction = iota

	// Encode converts canonical linear RGBA to raw texels.
	Encode
)

// String returns "decode" or "encode".
func (d Direction) String() string {
	switch d {
	case Decode:
		return "decode"
	case Encode:
		return "encode"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// EntryPoint names one program variant. There is exactly one entry point
// per staging format and direction.
type EntryPoint struct {
	Format    Format
	Direction Direction
}

// EntryFor returns the entry point serving b in direction dir.
func EntryFor(b sample.Bits, dir Direction) EntryPoint {
	return EntryPoint{Format: Select(b), Direction: dir}
}

// Name returns the program symbol, for example "decode_r8".
func (e EntryPoint) Name() string {
	return e.Direction.String() + "_" + e.Format.String()
}

// EntryPoints lists every entry point of the program.
func EntryPoints() []EntryPoint {
	formats := All()
	out := make([]EntryPoint, 0, 2*len(formats))
	for _, dir := range []Direction{Decode, Encode} {
		for _, f := range formats {
			out = append(out, EntryPoint{Format: f, Direction: dir})
		}
	}
	return out
}
