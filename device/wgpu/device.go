// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texel/device"
	"github.com/gogpu/texel/internal/program"
	"github.com/gogpu/texel/staging"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func init() {
	device.Register(device.NameWGPU, func() device.Device {
		d, err := Open()
		if err != nil {
			return nil
		}
		return d
	})
}

// fenceTimeout bounds the wait for one submitted conversion.
const fenceTimeout = 5 * time.Second

// Device runs the texel program as a compute shader through wgpu/hal.
//
// The program is compiled once at Init. Compute pipelines are created per
// entry point on first use and kept until Close.
type Device struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[staging.EntryPoint]hal.ComputePipeline

	storages map[*buffer]struct{}
	logger   atomic.Pointer[slog.Logger]

	ready          bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

// buffer is device storage backed by a hal.Buffer.
type buffer struct {
	desc device.StorageDescriptor
	buf  hal.Buffer
	size uint64
}

func (b *buffer) Descriptor() device.StorageDescriptor { return b.desc }

// New wraps an existing HAL device and queue. The caller keeps ownership:
// Close releases the program resources but not the device.
func New(dev hal.Device, queue hal.Queue) *Device {
	d := &Device{
		device:         dev,
		queue:          queue,
		externalDevice: true,
	}
	d.init()
	return d
}

// NewFromProvider wraps the HAL device of a shared GPU context (e.g.,
// gogpu). The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", device.ErrNotAvailable)
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", device.ErrNotAvailable)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", device.ErrNotAvailable)
	}
	return New(dev, queue), nil
}

// Open creates a device on the first hardware Vulkan adapter, preferring
// discrete and integrated GPUs over software rasterizers.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", device.ErrNotAvailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", device.ErrNotAvailable, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", device.ErrNotAvailable)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", device.ErrNotAvailable, err)
	}

	d := &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		adapter:  selected.Info.Name,
	}
	d.init()
	return d, nil
}

func (d *Device) init() {
	d.pipelines = make(map[staging.EntryPoint]hal.ComputePipeline)
	d.storages = make(map[*buffer]struct{})
	d.logger.Store(newNopLogger())
}

// Name returns "wgpu".
func (d *Device) Name() string {
	return device.NameWGPU
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

// Init compiles the texel program and creates the shared bind group and
// pipeline layouts. Calling Init again is a no-op.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ready {
		return nil
	}
	if d.device == nil {
		return fmt.Errorf("%w: device closed", device.ErrNotAvailable)
	}
	if err := d.createLayouts(); err != nil {
		d.destroyProgram()
		return fmt.Errorf("%w: %w", device.ErrDeviceFailure, err)
	}
	d.ready = true
	d.log().Info("wgpu device initialized", "adapter", d.adapter, "shared", d.externalDevice)
	return nil
}

func (d *Device) createLayouts() error {
	code, err := programSPIRV()
	if err != nil {
		return err
	}
	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "texel_program",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	d.shader = shader

	bindLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "texel_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	d.bindLayout = bindLayout

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "texel_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{d.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	d.pipeLayout = pipeLayout
	return nil
}

// pipeline returns the compute pipeline for entry, creating it on first
// use. d.mu must be held.
func (d *Device) pipeline(entry staging.EntryPoint) (hal.ComputePipeline, error) {
	if p, ok := d.pipelines[entry]; ok {
		return p, nil
	}
	p, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "texel_" + entry.Name(), Layout: d.pipeLayout,
		Compute: hal.ComputeState{Module: d.shader, EntryPoint: entry.Name()},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline %s: %w", entry.Name(), err)
	}
	d.pipelines[entry] = p
	d.log().Debug("wgpu pipeline created", "entry", entry.Name())
	return p, nil
}

// destroyProgram releases pipelines, layouts and the shader module.
// d.mu must be held.
func (d *Device) destroyProgram() {
	if d.device == nil {
		return
	}
	for entry, p := range d.pipelines {
		d.device.DestroyComputePipeline(p)
		delete(d.pipelines, entry)
	}
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	if d.bindLayout != nil {
		d.device.DestroyBindGroupLayout(d.bindLayout)
		d.bindLayout = nil
	}
	if d.shader != nil {
		d.device.DestroyShaderModule(d.shader)
		d.shader = nil
	}
}

// storageSize returns the buffer size for desc. Buffers are never empty.
func storageSize(desc device.StorageDescriptor) uint64 {
	size := desc.Texels * program.CanonicalBytes
	if !desc.Canonical {
		size = program.StagedSize(desc.Staging, desc.Texels)
	}
	return uint64(max(size, 4)) //nolint:gosec // size is non-negative
}

// Allocate creates a zero-filled storage buffer for desc.
func (d *Device) Allocate(desc device.StorageDescriptor) (device.Storage, error) {
	if desc.Texels < 0 {
		return nil, fmt.Errorf("%w: negative extent %d", device.ErrOutOfRange, desc.Texels)
	}
	if !desc.Canonical && !desc.Staging.IsValid() {
		return nil, fmt.Errorf("%w: cannot allocate %v", device.ErrStagingMismatch, desc)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return nil, fmt.Errorf("%w: device closed", device.ErrDeviceFailure)
	}
	size := storageSize(desc)
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "texel_" + desc.String(),
		Size:  size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create buffer %v: %w", device.ErrDeviceFailure, desc, err)
	}
	b := &buffer{desc: desc, buf: buf, size: size}
	d.storages[b] = struct{}{}
	return b, nil
}

// lookup returns s as a live buffer of d. d.mu must be held.
func (d *Device) lookup(s device.Storage) (*buffer, error) {
	b, ok := s.(*buffer)
	if !ok {
		return nil, fmt.Errorf("%w: %T", device.ErrUnknownStorage, s)
	}
	if _, live := d.storages[b]; !live {
		return nil, fmt.Errorf("%w: %v", device.ErrUnknownStorage, b.desc)
	}
	return b, nil
}

// Upload writes data to the start of s and zeroes the remainder.
func (d *Device) Upload(s device.Storage, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.lookup(s)
	if err != nil {
		return err
	}
	if uint64(len(data)) > b.size {
		return fmt.Errorf("%w: %d bytes into %v (%d bytes)", device.ErrOutOfRange, len(data), b.desc, b.size)
	}
	contents := make([]byte, b.size)
	copy(contents, data)
	d.queue.WriteBuffer(b.buf, 0, contents)
	return nil
}

// Invoke records one compute pass for inv, submits it and waits for the
// queue to finish it.
func (d *Device) Invoke(ctx context.Context, inv device.Invocation) error {
	if err := device.CheckInvocation(inv); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	in, err := d.lookup(inv.Input)
	if err != nil {
		return err
	}
	out, err := d.lookup(inv.Output)
	if err != nil {
		return err
	}
	if !d.ready {
		return fmt.Errorf("%w: wgpu device not initialized", device.ErrDeviceFailure)
	}
	if inv.Texels == 0 {
		return nil
	}

	staged, canonical := in, out
	if inv.Entry.Direction == staging.Encode {
		staged, canonical = out, in
	}
	if err := d.dispatch(inv, staged, canonical); err != nil {
		return fmt.Errorf("%w: %s: %w", device.ErrDeviceFailure, inv.Entry.Name(), err)
	}
	return nil
}

// dispatch binds the parameter block and both buffers and runs inv.
// d.mu must be held.
func (d *Device) dispatch(inv device.Invocation, staged, canonical *buffer) error {
	pipeline, err := d.pipeline(inv.Entry)
	if err != nil {
		return err
	}

	paramBytes := inv.Params.Bytes()
	paramBuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "texel_params",
		Size:  uint64(len(paramBytes)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create params buffer: %w", err)
	}
	defer d.device.DestroyBuffer(paramBuf)
	d.queue.WriteBuffer(paramBuf, 0, paramBytes)

	stagedSize := uint64(max(program.StagedSize(inv.Entry.Format, inv.Texels), 4)) //nolint:gosec // texels checked
	canonicalSize := uint64(inv.Texels * program.CanonicalBytes)                   //nolint:gosec // texels checked
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "texel_bind_group",
		Layout: d.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramBuf.NativeHandle(), Offset: 0, Size: uint64(len(paramBytes))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: staged.buf.NativeHandle(), Offset: 0, Size: stagedSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: canonical.buf.NativeHandle(), Offset: 0, Size: canonicalSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(bg)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "texel_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("texel_" + inv.Entry.Name()); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	x, y := program.Workgroups(program.Invocations(inv.Entry, inv.Texels))
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "texel_pass"})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(x, y, 1)
	pass.End()
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	d.log().Debug("wgpu invoke", "entry", inv.Entry.Name(), "texels", inv.Texels, "groups_x", x, "groups_y", y)
	return d.submit(cmdBuf)
}

// submit runs cmdBuf and blocks until the queue signals its fence.
func (d *Device) submit(cmdBuf hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)
	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return fmt.Errorf("wait for GPU: timed out after %v", fenceTimeout)
	}
	return nil
}

// Download copies s into a mappable staging buffer and reads it back.
func (d *Device) Download(ctx context.Context, s device.Storage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.lookup(s)
	if err != nil {
		return nil, err
	}
	data, err := d.readback(b)
	if err != nil {
		return nil, fmt.Errorf("%w: download %v: %w", device.ErrDeviceFailure, b.desc, err)
	}
	return data, nil
}

// readback returns the contents of b. d.mu must be held.
func (d *Device) readback(b *buffer) ([]byte, error) {
	stagingBuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "texel_readback",
		Size:  b.size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(stagingBuf)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "texel_readback_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("texel_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(b.buf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: b.size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	if err := d.submit(cmdBuf); err != nil {
		return nil, err
	}

	data := make([]byte, b.size)
	if err := d.queue.ReadBuffer(stagingBuf, 0, data); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return data, nil
}

// Release destroys the buffer behind s.
func (d *Device) Release(s device.Storage) {
	b, ok := s.(*buffer)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, live := d.storages[b]; !live {
		return
	}
	delete(d.storages, b)
	if d.device != nil {
		d.device.DestroyBuffer(b.buf)
	}
}

// Close destroys all storage and program resources. A device created by
// Open is destroyed as well; a shared device is left to its owner.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return
	}
	for b := range d.storages {
		d.device.DestroyBuffer(b.buf)
	}
	clear(d.storages)
	d.destroyProgram()

	if !d.externalDevice {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
	d.ready = false
	d.log().Info("wgpu device closed")
}

var _ device.Device = (*Device)(nil)
