// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package program holds the per-texel conversion program in two
// renditions: a Go kernel used by the software device and the WGSL
// compute shader compiled by the wgpu device. Both run the same pipeline:
//
//	decode: demux -> normalize -> transfer decode (R, G, B only)
//	encode: transfer encode (R, G, B only) -> denormalize -> mux
//
// Alpha is always linear and never passes through a transfer function.
package program

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/gogpu/texel/format"
	"github.com/gogpu/texel/params"
	"github.com/gogpu/texel/sample"
	"github.com/gogpu/texel/staging"
	"github.com/gogpu/texel/transfer"
)

// WGSL is the compute shader source. It declares one entry point per
// staging.EntryPoint, named by EntryPoint.Name.
//
//go:embed shaders/convert.wgsl
var WGSL string

// CanonicalBytes is the storage size of one canonical texel: four
// little-endian float32 values in R, G, B, A order.
const CanonicalBytes = 16

// WorkgroupSize is the shader workgroup width.
const WorkgroupSize = 64

// DecodeTexel converts one raw texel to canonical linear RGBA.
func DecodeTexel(t sample.Texel, d format.Descriptor) [4]float32 {
	v := d.Parts.Normalize(sample.Demux(t, d.Bits))
	if lut := decodeTable(d); lut != nil {
		// Colour slots hold k/255 exactly, so the table index is exact.
		return [4]float32{
			lut[int(v[0]*255+0.5)],
			lut[int(v[1]*255+0.5)],
			lut[int(v[2]*255+0.5)],
			float32(v[3]),
		}
	}
	for ch := 0; ch < 3; ch++ {
		v[ch] = d.Transfer.Decode(v[ch])
	}
	return [4]float32{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}
}

// decodeTable returns the 8-bit transfer table for d, or nil when the
// colour slots after normalization are not plain 8-bit code values.
func decodeTable(d format.Descriptor) *transfer.Table8 {
	switch d.Bits {
	case sample.Int8, sample.Int8x2, sample.Int8x3, sample.Int8x4:
	default:
		return nil
	}
	if d.Parts == sample.Yuv || !d.Parts.IsValid() {
		return nil
	}
	return d.Transfer.DecodeTable8()
}

// EncodeTexel converts canonical linear RGBA to one raw texel.
func EncodeTexel(c [4]float32, d format.Descriptor) sample.Texel {
	v := sample.RGBA{float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3])}
	for ch := 0; ch < 3; ch++ {
		v[ch] = d.Transfer.Encode(v[ch])
	}
	return sample.Mux(d.Parts.Denormalize(v), d.Bits)
}

// LoadCanonical reads canonical texel i.
func LoadCanonical(buf []byte, i int) [4]float32 {
	b := buf[i*CanonicalBytes : i*CanonicalBytes+CanonicalBytes]
	return [4]float32{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
	}
}

// StoreCanonical writes canonical texel i.
func StoreCanonical(buf []byte, i int, c [4]float32) {
	b := buf[i*CanonicalBytes : i*CanonicalBytes+CanonicalBytes]
	for ch, v := range c {
		binary.LittleEndian.PutUint32(b[4*ch:], math.Float32bits(v))
	}
}

// Run executes entry for texels [lo, hi). For decode, in is staged storage
// and out is canonical storage; for encode the roles are reversed. The
// caller guarantees that entry matches block and that both buffers hold
// hi texels. A block naming unknown variants runs nothing.
func Run(entry staging.EntryPoint, block params.Block, in, out []byte, lo, hi int) {
	d, err := block.Descriptor()
	if err != nil {
		return
	}
	f := entry.Format
	switch entry.Direction {
	case staging.Decode:
		for i := lo; i < hi; i++ {
			StoreCanonical(out, i, DecodeTexel(staging.Load(in, f, i), d))
		}
	case staging.Encode:
		for i := lo; i < hi; i++ {
			staging.Store(out, f, i, EncodeTexel(LoadCanonical(in, i), d))
		}
	}
}

// Invocations returns how many shader invocations entry needs for texels.
// Encoding into 8- and 16-bit storage packs whole 32-bit words.
func Invocations(entry staging.EntryPoint, texels int) int {
	if entry.Direction == staging.Encode {
		switch entry.Format {
		case staging.R8Uint:
			return (texels + 3) / 4
		case staging.R16Uint:
			return (texels + 1) / 2
		}
	}
	return texels
}

// Workgroups returns the dispatch grid for n invocations. Grids wider than
// the per-dimension limit spill into y; the shader linearises the id.
func Workgroups(n int) (x, y uint32) {
	const maxDim = 65535
	groups := (n + WorkgroupSize - 1) / WorkgroupSize
	if groups <= maxDim {
		return uint32(groups), 1
	}
	return maxDim, uint32((groups + maxDim - 1) / maxDim)
}

// StagedSize returns the storage size in bytes of texels texels of f,
// rounded up to whole 32-bit words as the shader addresses storage by word.
func StagedSize(f staging.Format, texels int) int {
	n := texels * f.Bytes()
	return (n + 3) &^ 3
}
