package texel

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/texel/device"
	"github.com/gogpu/texel/device/software"
	"github.com/gogpu/texel/format"
	"github.com/gogpu/texel/internal/cache"
	"github.com/gogpu/texel/internal/program"
	"github.com/gogpu/texel/params"
	"github.com/gogpu/texel/staging"
)

// Descriptor identifies an external pixel encoding.
type Descriptor = format.Descriptor

// Layout is the extent of a tightly packed image buffer.
type Layout = format.Layout

// Plan is everything a conversion of one Descriptor needs, resolved once:
// the staging format, both entry points and the parameter block.
type Plan struct {
	Descriptor Descriptor
	Staging    staging.Format
	Decode     staging.EntryPoint
	Encode     staging.EntryPoint
	Params     params.Block
}

// Converter converts between packed pixel encodings and the canonical
// linear representation on one device.
//
// Converter is safe for concurrent use.
type Converter struct {
	dev     device.Device
	ownsDev bool
	opts    options
	plans   *cache.Cache[Descriptor, *Plan]
	closed  atomic.Bool
}

// New creates a converter on dev and initializes it. A nil dev creates a
// private software device, which Close releases; a supplied device stays
// owned by the caller.
func New(dev device.Device, opts ...Option) (*Converter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	owns := false
	if dev == nil {
		dev = software.New(o.workers)
		owns = true
	}
	propagateLogger(dev, Logger())
	if err := dev.Init(); err != nil {
		if owns {
			dev.Close()
		}
		return nil, fmt.Errorf("texel: init %s device: %w", dev.Name(), err)
	}

	return &Converter{
		dev:     dev,
		ownsDev: owns,
		opts:    o,
		plans:   cache.New[Descriptor, *Plan](o.planCacheSize),
	}, nil
}

// Device returns the device the converter runs on.
func (c *Converter) Device() device.Device {
	return c.dev
}

// Plan validates d and returns its conversion plan. Plans are cached.
func (c *Converter) Plan(d Descriptor) (*Plan, error) {
	return c.plans.GetOrCreate(d, func() (*Plan, error) {
		return c.buildPlan(d)
	})
}

func (c *Converter) buildPlan(d Descriptor) (*Plan, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if !d.Transfer.Implemented() && !c.opts.identityHLG {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedVariant, d.Transfer)
	}
	p := &Plan{
		Descriptor: d,
		Staging:    staging.Select(d.Bits),
		Decode:     staging.EntryFor(d.Bits, staging.Decode),
		Encode:     staging.EntryFor(d.Bits, staging.Encode),
		Params:     params.FromDescriptor(d),
	}
	Logger().Debug("texel plan", "format", d, "staging", p.Staging)
	return p, nil
}

// Decode converts raw, a tightly packed buffer of layout texels in d, to
// the canonical representation.
func (c *Converter) Decode(ctx context.Context, raw []byte, layout Layout, d Descriptor) (*Linear, error) {
	plan, err := c.Plan(d)
	if err != nil {
		return nil, err
	}
	if !layout.Fits(d) {
		return nil, fmt.Errorf("%w: layout %dx%d", ErrBufferSize, layout.Width, layout.Height)
	}
	if want := layout.ByteLen(d); len(raw) != want {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d %v, want %d",
			ErrBufferSize, len(raw), layout.Width, layout.Height, d, want)
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}

	img := NewLinear(layout.Width, layout.Height)
	n := layout.Texels()
	if n == 0 {
		return img, nil
	}

	canonical, err := c.run(ctx, plan.Decode, plan, n,
		staging.Widen(raw, d.Bits, plan.Staging),
		device.StorageDescriptor{Staging: plan.Staging, Texels: n},
		device.StorageDescriptor{Canonical: true, Texels: n})
	if err != nil {
		return nil, err
	}
	for i := range n {
		texel := program.LoadCanonical(canonical, i)
		copy(img.Pix[i*4:i*4+4], texel[:])
	}
	return img, nil
}

// Encode converts img to a tightly packed buffer in d.
func (c *Converter) Encode(ctx context.Context, img *Linear, d Descriptor) ([]byte, error) {
	plan, err := c.Plan(d)
	if err != nil {
		return nil, err
	}
	if img == nil || !img.valid() {
		return nil, fmt.Errorf("%w: malformed canonical image", ErrBufferSize)
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}

	n := img.Texels()
	if n == 0 {
		return []byte{}, nil
	}

	canonical := make([]byte, n*program.CanonicalBytes)
	for i := range n {
		program.StoreCanonical(canonical, i, [4]float32(img.Pix[i*4:i*4+4]))
	}
	staged, err := c.run(ctx, plan.Encode, plan, n, canonical,
		device.StorageDescriptor{Canonical: true, Texels: n},
		device.StorageDescriptor{Staging: plan.Staging, Texels: n})
	if err != nil {
		return nil, err
	}
	return staging.Narrow(staged[:n*plan.Staging.Bytes()], d.Bits, plan.Staging), nil
}

// DecodeChannel decodes one colour channel of an 8-bit RGB-family buffer.
// The channel keeps its own slot of the canonical texel; the other colour
// slots are 0 and alpha is 1.
func (c *Converter) DecodeChannel(ctx context.Context, raw []byte, layout Layout, d Descriptor, ch format.Channel) (*Linear, error) {
	plane, offset, err := d.Channel(ch)
	if err != nil {
		return nil, err
	}
	if !layout.Fits(d) {
		return nil, fmt.Errorf("%w: layout %dx%d", ErrBufferSize, layout.Width, layout.Height)
	}
	if want := layout.ByteLen(d); len(raw) != want {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d %v, want %d",
			ErrBufferSize, len(raw), layout.Width, layout.Height, d, want)
	}

	stride := d.Bits.Bytes()
	packed := make([]byte, layout.Texels())
	for i := range packed {
		packed[i] = raw[i*stride+offset]
	}
	return c.Decode(ctx, packed, layout, plane)
}

// run uploads input, invokes entry over n texels and downloads the output.
// Storage is always released; on failure nothing is returned.
func (c *Converter) run(ctx context.Context, entry staging.EntryPoint, plan *Plan, n int,
	input []byte, inDesc, outDesc device.StorageDescriptor,
) ([]byte, error) {
	in, err := c.dev.Allocate(inDesc)
	if err != nil {
		return nil, err
	}
	defer c.dev.Release(in)
	out, err := c.dev.Allocate(outDesc)
	if err != nil {
		return nil, err
	}
	defer c.dev.Release(out)

	if err := c.dev.Upload(in, input); err != nil {
		return nil, err
	}
	err = c.dev.Invoke(ctx, device.Invocation{
		Entry:  entry,
		Params: plan.Params,
		Input:  in,
		Output: out,
		Texels: n,
	})
	if err != nil {
		return nil, err
	}
	Logger().Debug("texel convert", "entry", entry.Name(), "format", plan.Descriptor, "texels", n, "device", c.dev.Name())
	return c.dev.Download(ctx, out)
}

// Close releases the converter. A device created by New is closed as
// well. Close is idempotent.
func (c *Converter) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.plans.Clear()
	if c.ownsDev {
		c.dev.Close()
	}
}

// PlanCacheStats contains plan cache statistics.
type PlanCacheStats = cache.Stats

// PlanStats reports plan cache statistics.
func (c *Converter) PlanStats() PlanCacheStats {
	return c.plans.Stats()
}
