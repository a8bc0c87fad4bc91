// Package texel converts between externally supplied pixel encodings and
// one canonical linear floating-point RGBA representation.
//
// # Overview
//
// An external encoding is a Descriptor: a transfer function (sRGB, BT.709,
// PQ, ...), a channel layout (Rgba, Bgrx, Luma, Yuv, ...) and a bit packing
// (Int8x4, Int565, Int1010102, Float16x4, ...). Decoding unpacks each texel,
// normalizes its channels to RGBA and applies the inverse transfer curve to
// the colour channels. Encoding is the exact reverse.
//
// # Quick Start
//
//	import "github.com/gogpu/texel"
//
//	d := texel.Descriptor{
//	    Transfer: transfer.Srgb,
//	    Parts:    sample.Rgba,
//	    Bits:     sample.Int8x4,
//	}
//	img, err := texel.Decode(ctx, raw, texel.Layout{Width: w, Height: h}, d)
//
//	// ... composite in linear light ...
//
//	out, err := texel.Encode(ctx, img, d)
//
// # Devices
//
// Conversion runs per texel on a device from the device registry. The
// software device is always available. Importing device/wgpu registers a
// GPU compute device that takes priority when a Vulkan adapter is present:
//
//	import _ "github.com/gogpu/texel/device/wgpu"
//
// A Converter created with New runs on a specific device and caches the
// conversion plan of every descriptor it sees.
//
// # Errors
//
// Invalid descriptors fail with format.ErrInvalidCombination before any
// device work. Bt2100Hlg is refused with ErrUnsupportedVariant unless the
// converter was created WithIdentityHLG. Device failures wrap
// device.ErrDeviceFailure and are never retried.
package texel

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
