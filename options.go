package texel

// Option configures a Converter during creation.
//
// Example:
//
//	// CPU conversion on four workers
//	c, err := texel.New(nil, texel.WithWorkers(4))
//
//	// Shared GPU device, larger plan cache
//	c, err := texel.New(gpuDevice, texel.WithPlanCacheSize(256))
type Option func(*options)

// options holds optional configuration for Converter creation.
type options struct {
	identityHLG   bool
	planCacheSize int
	workers       int
}

// defaultPlanCacheSize bounds the plan cache unless WithPlanCacheSize is given.
const defaultPlanCacheSize = 64

// defaultOptions returns the default converter options.
func defaultOptions() options {
	return options{
		planCacheSize: defaultPlanCacheSize,
		workers:       0, // GOMAXPROCS
	}
}

// WithIdentityHLG allows Bt2100Hlg descriptors. The HLG curve is not
// implemented; with this option it converts as identity instead of being
// refused with ErrUnsupportedVariant.
func WithIdentityHLG() Option {
	return func(o *options) {
		o.identityHLG = true
	}
}

// WithPlanCacheSize sets how many conversion plans are kept. Zero or a
// negative size keeps every plan.
func WithPlanCacheSize(n int) Option {
	return func(o *options) {
		o.planCacheSize = n
	}
}

// WithWorkers sets the worker count of the software device that New
// creates when no device is given. It has no effect on a supplied device.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
