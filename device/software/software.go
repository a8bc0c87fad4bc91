// Package software provides the CPU reference device.
//
// Storage lives in host memory and the texel program runs as Go code on a
// work-stealing goroutine pool. It produces the same bytes as the wgpu
// device up to float rounding in the transfer curves.
//
// The device registers itself on import:
//
//	import _ "github.com/gogpu/texel/device/software"
package software

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/texel/device"
	"github.com/gogpu/texel/internal/parallel"
	"github.com/gogpu/texel/internal/program"
)

func init() {
	device.Register(device.NameSoftware, func() device.Device {
		return New(0)
	})
}

// chunkTexels is the number of texels one pool task converts.
const chunkTexels = 4096

// Device is the CPU reference device.
type Device struct {
	workers int
	pool    *parallel.WorkerPool
	logger  atomic.Pointer[slog.Logger]

	mu       sync.Mutex
	storages map[*storage]struct{}
}

// storage is host memory owned by a Device.
type storage struct {
	desc device.StorageDescriptor
	data []byte
}

func (s *storage) Descriptor() device.StorageDescriptor { return s.desc }

// New creates a software device with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func New(workers int) *Device {
	d := &Device{
		workers:  workers,
		storages: make(map[*storage]struct{}),
	}
	d.logger.Store(newNopLogger())
	return d
}

// Name returns "software".
func (d *Device) Name() string {
	return device.NameSoftware
}

// SetLogger sets the logger for device diagnostics. Nil restores the
// silent default.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	d.logger.Store(l)
}

func (d *Device) log() *slog.Logger {
	return d.logger.Load()
}

// Init starts the worker pool.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool == nil {
		d.pool = parallel.NewWorkerPool(d.workers)
		d.log().Info("software device initialized", "workers", d.pool.Workers())
	}
	return nil
}

// Allocate creates zeroed host storage for desc.
func (d *Device) Allocate(desc device.StorageDescriptor) (device.Storage, error) {
	if desc.Texels < 0 {
		return nil, fmt.Errorf("%w: negative extent %d", device.ErrOutOfRange, desc.Texels)
	}
	if !desc.Canonical && !desc.Staging.IsValid() {
		return nil, fmt.Errorf("%w: cannot allocate %v", device.ErrStagingMismatch, desc)
	}

	size := desc.Texels * program.CanonicalBytes
	if !desc.Canonical {
		size = program.StagedSize(desc.Staging, desc.Texels)
	}
	s := &storage{desc: desc, data: make([]byte, size)}

	d.mu.Lock()
	d.storages[s] = struct{}{}
	d.mu.Unlock()
	return s, nil
}

// lookup returns s as storage owned by d.
func (d *Device) lookup(s device.Storage) (*storage, error) {
	st, ok := s.(*storage)
	if !ok {
		return nil, fmt.Errorf("%w: %T", device.ErrUnknownStorage, s)
	}
	d.mu.Lock()
	_, live := d.storages[st]
	d.mu.Unlock()
	if !live {
		return nil, fmt.Errorf("%w: %v", device.ErrUnknownStorage, st.desc)
	}
	return st, nil
}

// Upload copies data into s and zeroes the remainder.
func (d *Device) Upload(s device.Storage, data []byte) error {
	st, err := d.lookup(s)
	if err != nil {
		return err
	}
	if len(data) > len(st.data) {
		return fmt.Errorf("%w: %d bytes into %v (%d bytes)", device.ErrOutOfRange, len(data), st.desc, len(st.data))
	}
	n := copy(st.data, data)
	clear(st.data[n:])
	return nil
}

// Invoke runs the program over inv.Texels texels.
func (d *Device) Invoke(ctx context.Context, inv device.Invocation) error {
	if err := device.CheckInvocation(inv); err != nil {
		return err
	}
	in, err := d.lookup(inv.Input)
	if err != nil {
		return err
	}
	out, err := d.lookup(inv.Output)
	if err != nil {
		return err
	}

	d.mu.Lock()
	pool := d.pool
	d.mu.Unlock()
	if pool == nil {
		return fmt.Errorf("%w: software device not initialized", device.ErrDeviceFailure)
	}

	d.log().Debug("software invoke", "entry", inv.Entry.Name(), "texels", inv.Texels)
	err = pool.ForRange(ctx, inv.Texels, chunkTexels, func(lo, hi int) {
		program.Run(inv.Entry, inv.Params, in.data, out.data, lo, hi)
	})
	if errors.Is(err, parallel.ErrClosed) {
		return fmt.Errorf("%w: %w", device.ErrDeviceFailure, err)
	}
	return err
}

// Download returns a copy of the contents of s.
func (d *Device) Download(ctx context.Context, s device.Storage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := d.lookup(s)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), st.data...), nil
}

// Release frees s.
func (d *Device) Release(s device.Storage) {
	st, ok := s.(*storage)
	if !ok {
		return
	}
	d.mu.Lock()
	delete(d.storages, st)
	d.mu.Unlock()
}

// Close stops the worker pool and drops all storage.
func (d *Device) Close() {
	d.mu.Lock()
	pool := d.pool
	d.pool = nil
	clear(d.storages)
	d.mu.Unlock()

	if pool != nil {
		pool.Close()
		d.log().Info("software device closed")
	}
}

var _ device.Device = (*Device)(nil)
