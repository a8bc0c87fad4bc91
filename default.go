package texel

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/texel/device"
)

var (
	defaultMu   sync.Mutex
	defaultConv *Converter
)

// Default returns the package converter, creating it on first use on the
// highest-priority registered device (wgpu when imported and available,
// otherwise software).
func Default() (*Converter, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultConv != nil {
		return defaultConv, nil
	}

	dev, err := device.InitDefault()
	if err != nil {
		return nil, fmt.Errorf("texel: default device: %w", err)
	}
	c, err := New(dev)
	if err != nil {
		dev.Close()
		return nil, err
	}
	// The registry created dev for this converter.
	c.ownsDev = true
	defaultConv = c
	Logger().Info("texel default device", "device", dev.Name())
	return c, nil
}

// Decode converts raw with the default converter. See Converter.Decode.
func Decode(ctx context.Context, raw []byte, layout Layout, d Descriptor) (*Linear, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.Decode(ctx, raw, layout, d)
}

// Encode converts img with the default converter. See Converter.Encode.
func Encode(ctx context.Context, img *Linear, d Descriptor) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c, err := Default()
	if err != nil {
		return nil, err
	}
	return c.Encode(ctx, img, d)
}

// Shutdown closes the default converter and its device. The next call to
// Default creates a new one.
func Shutdown() {
	defaultMu.Lock()
	c := defaultConv
	defaultConv = nil
	defaultMu.Unlock()
	if c != nil {
		c.Close()
	}
}
