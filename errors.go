package texel

import "errors"

// Conversion errors. Errors from the format and device packages are
// returned wrapped and can be tested with errors.Is as well.
var (
	// ErrUnsupportedVariant is returned for a transfer function whose curve
	// is not implemented (Bt2100Hlg) unless WithIdentityHLG was given.
	ErrUnsupportedVariant = errors.New("texel: unsupported transfer variant")

	// ErrBufferSize is returned when a buffer does not match its layout.
	ErrBufferSize = errors.New("texel: buffer size does not match layout")

	// ErrClosed is returned by a Converter after Close.
	ErrClosed = errors.New("texel: converter closed")
)
