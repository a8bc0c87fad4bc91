// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/texel/device"
	"github.com/gogpu/texel/format"
	"github.com/gogpu/texel/params"
	"github.com/gogpu/texel/sample"
	"github.com/gogpu/texel/staging"
	"github.com/gogpu/texel/transfer"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newNoopTexelDevice(t *testing.T) *Device {
	t.Helper()
	dev, queue, cleanup := createNoopDevice(t)
	d := New(dev, queue)
	t.Cleanup(func() {
		d.Close()
		cleanup()
	})
	return d
}

func TestName(t *testing.T) {
	d := newNoopTexelDevice(t)
	if d.Name() != "wgpu" {
		t.Errorf("Name() = %q, want %q", d.Name(), "wgpu")
	}
}

func TestStorageSize(t *testing.T) {
	tests := []struct {
		desc device.StorageDescriptor
		want uint64
	}{
		{device.StorageDescriptor{Canonical: true, Texels: 3}, 48},
		{device.StorageDescriptor{Canonical: true, Texels: 0}, 4},
		{device.StorageDescriptor{Staging: staging.R8Uint, Texels: 5}, 8},
		{device.StorageDescriptor{Staging: staging.R16Uint, Texels: 3}, 8},
		{device.StorageDescriptor{Staging: staging.R32Uint, Texels: 3}, 12},
		{device.StorageDescriptor{Staging: staging.Rgba16Uint, Texels: 1}, 8},
		{device.StorageDescriptor{Staging: staging.Rgba32Uint, Texels: 2}, 32},
		{device.StorageDescriptor{Staging: staging.R8Uint, Texels: 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.desc.String(), func(t *testing.T) {
			if got := storageSize(tt.desc); got != tt.want {
				t.Errorf("storageSize(%v) = %d, want %d", tt.desc, got, tt.want)
			}
		})
	}
}

func TestAllocateUploadRelease(t *testing.T) {
	d := newNoopTexelDevice(t)

	s, err := d.Allocate(device.StorageDescriptor{Staging: staging.R8Uint, Texels: 6})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if got := s.Descriptor(); got.Staging != staging.R8Uint || got.Texels != 6 {
		t.Errorf("Descriptor() = %v", got)
	}
	if err := d.Upload(s, []byte{1, 2, 3}); err != nil {
		t.Errorf("Upload failed: %v", err)
	}
	if err := d.Upload(s, make([]byte, 9)); !errors.Is(err, device.ErrOutOfRange) {
		t.Errorf("oversized Upload error = %v, want ErrOutOfRange", err)
	}

	d.Release(s)
	if err := d.Upload(s, []byte{1}); !errors.Is(err, device.ErrUnknownStorage) {
		t.Errorf("Upload after Release error = %v, want ErrUnknownStorage", err)
	}
	// Releasing twice is a no-op.
	d.Release(s)
}

func TestAllocateRejects(t *testing.T) {
	d := newNoopTexelDevice(t)

	if _, err := d.Allocate(device.StorageDescriptor{Staging: staging.Undefined, Texels: 1}); !errors.Is(err, device.ErrStagingMismatch) {
		t.Errorf("Undefined staging error = %v, want ErrStagingMismatch", err)
	}
	if _, err := d.Allocate(device.StorageDescriptor{Canonical: true, Texels: -1}); !errors.Is(err, device.ErrOutOfRange) {
		t.Errorf("negative extent error = %v, want ErrOutOfRange", err)
	}
}

func TestAllocateAfterClose(t *testing.T) {
	dev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	d := New(dev, queue)
	d.Close()
	if _, err := d.Allocate(device.StorageDescriptor{Canonical: true, Texels: 1}); !errors.Is(err, device.ErrDeviceFailure) {
		t.Errorf("Allocate after Close error = %v, want ErrDeviceFailure", err)
	}
	if err := d.Init(); !errors.Is(err, device.ErrNotAvailable) {
		t.Errorf("Init after Close error = %v, want ErrNotAvailable", err)
	}
	// Close is idempotent.
	d.Close()
}

func decodeInvocation(t *testing.T, d *Device, bits sample.Bits, texels int) device.Invocation {
	t.Helper()
	f := staging.Select(bits)
	in, err := d.Allocate(device.StorageDescriptor{Staging: f, Texels: texels})
	if err != nil {
		t.Fatalf("Allocate staged: %v", err)
	}
	out, err := d.Allocate(device.StorageDescriptor{Canonical: true, Texels: texels})
	if err != nil {
		t.Fatalf("Allocate canonical: %v", err)
	}
	desc := format.Descriptor{Transfer: transfer.Srgb, Parts: sample.Rgba, Bits: bits}
	return device.Invocation{
		Entry:  staging.EntryFor(bits, staging.Decode),
		Params: params.FromDescriptor(desc),
		Input:  in,
		Output: out,
		Texels: texels,
	}
}

func TestInvokeStagingMismatch(t *testing.T) {
	d := newNoopTexelDevice(t)

	inv := decodeInvocation(t, d, sample.Int8x4, 4)
	inv.Entry = staging.EntryFor(sample.Int8, staging.Decode)
	err := d.Invoke(context.Background(), inv)
	if !errors.Is(err, device.ErrStagingMismatch) {
		t.Errorf("Invoke error = %v, want ErrStagingMismatch", err)
	}
}

func TestInvokeBeforeInit(t *testing.T) {
	d := newNoopTexelDevice(t)

	inv := decodeInvocation(t, d, sample.Int8x4, 4)
	if err := d.Invoke(context.Background(), inv); !errors.Is(err, device.ErrDeviceFailure) {
		t.Errorf("Invoke error = %v, want ErrDeviceFailure", err)
	}
}

func TestInvokeCancelled(t *testing.T) {
	d := newNoopTexelDevice(t)

	inv := decodeInvocation(t, d, sample.Int8x4, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Invoke(ctx, inv); !errors.Is(err, context.Canceled) {
		t.Errorf("Invoke error = %v, want context.Canceled", err)
	}
	if _, err := d.Download(ctx, inv.Output); !errors.Is(err, context.Canceled) {
		t.Errorf("Download error = %v, want context.Canceled", err)
	}
}

type foreignStorage struct{ desc device.StorageDescriptor }

func (f foreignStorage) Descriptor() device.StorageDescriptor { return f.desc }

func TestForeignStorage(t *testing.T) {
	d := newNoopTexelDevice(t)
	other := newNoopTexelDevice(t)

	inv := decodeInvocation(t, other, sample.Int8x4, 2)
	if err := d.Invoke(context.Background(), inv); !errors.Is(err, device.ErrUnknownStorage) {
		t.Errorf("Invoke with another device's storage error = %v, want ErrUnknownStorage", err)
	}

	fake := foreignStorage{device.StorageDescriptor{Canonical: true, Texels: 2}}
	if err := d.Upload(fake, nil); !errors.Is(err, device.ErrUnknownStorage) {
		t.Errorf("Upload foreign storage error = %v, want ErrUnknownStorage", err)
	}
	if _, err := d.Download(context.Background(), fake); !errors.Is(err, device.ErrUnknownStorage) {
		t.Errorf("Download foreign storage error = %v, want ErrUnknownStorage", err)
	}
	d.Release(fake)
}

// plainProvider is a gpucontext.DeviceProvider without HAL access.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device   { return nil }
func (plainProvider) Queue() gpucontext.Queue     { return nil }
func (plainProvider) Adapter() gpucontext.Adapter { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

type halProvider struct {
	plainProvider
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestNewFromProvider(t *testing.T) {
	if _, err := NewFromProvider(plainProvider{}); !errors.Is(err, device.ErrNotAvailable) {
		t.Errorf("plain provider error = %v, want ErrNotAvailable", err)
	}
	if _, err := NewFromProvider(halProvider{}); !errors.Is(err, device.ErrNotAvailable) {
		t.Errorf("nil HAL provider error = %v, want ErrNotAvailable", err)
	}

	dev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	d, err := NewFromProvider(halProvider{device: dev, queue: queue})
	if err != nil {
		t.Fatalf("NewFromProvider failed: %v", err)
	}
	if !d.externalDevice {
		t.Error("provider device should be marked external")
	}
	if d.device != dev || d.queue != queue {
		t.Error("provider handles not stored")
	}
	d.Close()
}

func TestCompileSPIRVRejectsInvalid(t *testing.T) {
	if _, err := compileSPIRV("this is not wgsl"); err == nil {
		t.Error("compileSPIRV accepted invalid source")
	}
}
