package sample

import (
	"math"

	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// Demux unpacks t into its raw components. Integer fields are normalised by
// their maximum value into [0, 1]; float fields pass through unscaled.
// Components beyond b.Components() are 0.
func Demux(t Texel, b Bits) [4]float64 {
	var out [4]float64
	if !b.IsValid() {
		return out
	}
	info := &bitsTable[b]
	for i, fd := range info.fields {
		raw := (t[fd.Lane] >> fd.Shift) & fd.Mask()
		if info.float {
			out[i] = demuxFloat(raw, fd.Width)
		} else {
			out[i] = float64(raw) / float64(fd.Mask())
		}
	}
	return out
}

// Mux packs components into a texel. Integer fields are scaled, rounded to
// nearest and saturated to the field range; NaN packs as 0. Float fields are
// stored as-is, NaN payloads included.
func Mux(c [4]float64, b Bits) Texel {
	var t Texel
	if !b.IsValid() {
		return t
	}
	info := &bitsTable[b]
	for i, fd := range info.fields {
		var raw uint32
		if info.float {
			raw = muxFloat(c[i], fd.Width)
		} else {
			raw = quantize(c[i], fd.Mask())
		}
		t[fd.Lane] |= (raw & fd.Mask()) << fd.Shift
	}
	return t
}

// Float field layouts: mantissa width and exponent mask.
const (
	halfMantissa   = 10
	halfExponent   = 0x7c00
	singleMantissa = 23
	singleExponent = 0x7f800000
)

// demuxFloat widens a half or single float field. A NaN keeps its sign and
// payload at the top of the float64 mantissa, where muxFloat finds them.
func demuxFloat(raw uint32, width uint8) float64 {
	if width == 16 {
		h := float16.Frombits(uint16(raw))
		if h.IsNaN() {
			return widenNaN(raw>>15, raw&(1<<halfMantissa-1), halfMantissa)
		}
		return float64(h.Float32())
	}
	f := math.Float32frombits(raw)
	if math.IsNaN(float64(f)) {
		return widenNaN(raw>>31, raw&(1<<singleMantissa-1), singleMantissa)
	}
	return float64(f)
}

// widenNaN builds the float64 NaN carrying a narrower NaN's payload. The
// bits are assembled directly; a float conversion would quiet it.
func widenNaN(sign, payload uint32, mantissa uint) float64 {
	return math.Float64frombits(uint64(sign&1)<<63 | 0x7ff<<52 | uint64(payload)<<(52-mantissa))
}

// muxFloat narrows v to a half or single float field.
func muxFloat(v float64, width uint8) uint32 {
	if math.IsNaN(v) {
		if width == 16 {
			return narrowNaN(v, halfMantissa, halfExponent, 15)
		}
		return narrowNaN(v, singleMantissa, singleExponent, 31)
	}
	if width == 16 {
		return uint32(float16.Fromfloat32(float32(v)).Bits())
	}
	return math.Float32bits(float32(v))
}

// narrowNaN is the inverse of widenNaN. A payload lost to narrowing becomes
// the quiet bit so the result stays NaN.
func narrowNaN(v float64, mantissa uint, exponent uint32, signBit uint) uint32 {
	b := math.Float64bits(v)
	payload := uint32(b>>(52-mantissa)) & (1<<mantissa - 1)
	if payload == 0 {
		payload = 1 << (mantissa - 1)
	}
	return uint32(b>>63)<<signBit | exponent | payload
}

// quantize maps v in [0, 1] to [0, limit], rounding to nearest.
func quantize[F constraints.Float](v F, limit uint32) uint32 {
	return uint32(math.Round(float64(Saturate(v)) * float64(limit)))
}

// Saturate clamps v to [0, 1]. NaN saturates to 0.
func Saturate[F constraints.Float](v F) F {
	return clamp(v, 0, 1)
}

func clamp[T constraints.Float](v, lo, hi T) T {
	switch {
	case math.IsNaN(float64(v)):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
