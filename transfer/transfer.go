// Package transfer provides the electro-optical transfer functions used by
// broadcast and photographic pixel formats.
//
// Every Function carries a pair of pure scalar functions:
//
//   - Encode (OETF): optical, linear-light value -> electrical, encoded value
//   - Decode (EOTF): electrical, encoded value -> optical, linear-light value
//
// Both are defined on the whole real line. Negative inputs are legal: they
// appear as intermediate values of Y'CbCr chroma math and must survive a
// round trip instead of being clamped. Power segments are extended to
// negative input by odd symmetry, f(-x) = -f(x).
//
// Bt2100Hlg is a known stub. It returns its input unchanged and reports
// Implemented() == false; callers that need exact fidelity must refuse it.
package transfer

import "fmt"

// Function identifies a transfer characteristic.
type Function uint8

const (
	// Bt709 is the ITU-R BT.709 camera curve.
	Bt709 Function = iota

	// Bt470M is the ITU-R BT.470 System M curve, a pure 2.2 gamma.
	Bt470M

	// Bt601 is BT.709 with encode and decode roles exchanged: its OETF is
	// the BT.709 EOTF and vice versa.
	Bt601

	// Smpte240 is the SMPTE 240M curve.
	Smpte240

	// Linear is the identity on display-referred values.
	Linear

	// Srgb is IEC 61966-2-1, with a mirrored negative branch.
	Srgb

	// Bt2020_10bit delegates to the BT.709 curve.
	Bt2020_10bit

	// Bt2020_12bit delegates to the BT.709 curve.
	Bt2020_12bit

	// Smpte2084 is the perceptual quantizer (PQ) curve.
	Smpte2084

	// Bt2100Pq is BT.2100 PQ including the reference OOTF: scene-referred
	// linear light is mapped to display light before PQ encoding.
	Bt2100Pq

	// Bt2100Hlg is the BT.2100 hybrid-log-gamma curve. Not implemented: it
	// behaves as identity and Implemented reports false.
	Bt2100Hlg

	// LinearScene is the identity on scene-referred values.
	LinearScene

	// functionCount is the number of transfer functions (for internal use).
	functionCount
)

// curve is one entry of the dispatch table.
type curve struct {
	name        string
	encode      func(float64) float64
	decode      func(float64) float64
	implemented bool
}

// curves is indexed by Function.
var curves = [functionCount]curve{
	Bt709:        {"Bt709", bt709Encode, bt709Decode, true},
	Bt470M:       {"Bt470M", bt470mEncode, bt470mDecode, true},
	Bt601:        {"Bt601", bt709Decode, bt709Encode, true},
	Smpte240:     {"Smpte240", smpte240Encode, smpte240Decode, true},
	Linear:       {"Linear", identity, identity, true},
	Srgb:         {"Srgb", srgbEncode, srgbDecode, true},
	Bt2020_10bit: {"Bt2020_10bit", bt709Encode, bt709Decode, true},
	Bt2020_12bit: {"Bt2020_12bit", bt709Encode, bt709Decode, true},
	Smpte2084:    {"Smpte2084", pqEncode, pqDecode, true},
	Bt2100Pq:     {"Bt2100Pq", bt2100PqEncode, bt2100PqDecode, true},
	Bt2100Hlg:    {"Bt2100Hlg", identity, identity, false},
	LinearScene:  {"LinearScene", identity, identity, true},
}

// All returns every transfer function in declaration order.
func All() []Function {
	out := make([]Function, functionCount)
	for i := range out {
		out[i] = Function(i)
	}
	return out
}

// IsValid returns true if f is a known transfer function.
func (f Function) IsValid() bool {
	return f < functionCount
}

// Implemented reports whether f is a faithful implementation of its
// standard. It is false for Bt2100Hlg, whose curve is an identity stub,
// and for unknown values.
func (f Function) Implemented() bool {
	if !f.IsValid() {
		return false
	}
	return curves[f].implemented
}

// Encode applies the opto-electronic transfer function (linear -> encoded).
// Unknown functions behave as identity.
func (f Function) Encode(o float64) float64 {
	if !f.IsValid() {
		return o
	}
	return curves[f].encode(o)
}

// Decode applies the electro-optical transfer function (encoded -> linear).
// Unknown functions behave as identity.
func (f Function) Decode(e float64) float64 {
	if !f.IsValid() {
		return e
	}
	return curves[f].decode(e)
}

// String returns the name of the transfer function.
func (f Function) String() string {
	if !f.IsValid() {
		return fmt.Sprintf("Function(%d)", uint8(f))
	}
	return curves[f].name
}
