// Package device defines the compute device the texel program runs on and
// a registry of device implementations.
//
// A conversion is one allocate/upload/invoke/download sequence. Devices
// bind exactly one staged storage resource per invocation; the staging
// format of that storage must match the entry point being invoked.
// Mismatches are reported as ErrStagingMismatch and never corrected.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/texel/params"
	"github.com/gogpu/texel/staging"
)

// Common device errors.
var (
	// ErrNotAvailable is returned when a requested device is not available.
	ErrNotAvailable = errors.New("device: not available")

	// ErrDeviceFailure wraps every failure reported by the underlying device
	// or command queue. It is fatal for the conversion and is not retried.
	ErrDeviceFailure = errors.New("device: failure")

	// ErrStagingMismatch is returned when storage, entry point and
	// parameters disagree on the staging format.
	ErrStagingMismatch = errors.New("device: staging format mismatch")

	// ErrUnknownStorage is returned for storage that was not allocated by
	// the device it is passed to, or that was already released.
	ErrUnknownStorage = errors.New("device: unknown storage")

	// ErrOutOfRange is returned when uploaded data or an invocation exceeds
	// the storage it is bound to.
	ErrOutOfRange = errors.New("device: data exceeds storage")
)

// StorageDescriptor describes a storage resource. Canonical storage holds
// four float32 values per texel; staged storage holds texels of Staging.
type StorageDescriptor struct {
	Staging   staging.Format
	Canonical bool
	Texels    int
}

// String returns a short description for logs and errors.
func (d StorageDescriptor) String() string {
	if d.Canonical {
		return fmt.Sprintf("canonical[%d]", d.Texels)
	}
	return fmt.Sprintf("%v[%d]", d.Staging, d.Texels)
}

// Storage is a device-owned buffer.
type Storage interface {
	Descriptor() StorageDescriptor
}

// Invocation binds storage and a parameter block to one entry point.
type Invocation struct {
	Entry  staging.EntryPoint
	Params params.Block
	Input  Storage
	Output Storage
	Texels int
}

// Device runs the texel program.
type Device interface {
	// Name returns the device identifier (e.g., "software", "wgpu").
	Name() string

	// Init prepares the device. It must be called before any other method.
	Init() error

	// Allocate creates storage for desc.
	Allocate(desc StorageDescriptor) (Storage, error)

	// Upload replaces the contents of s. Short data leaves the tail zeroed.
	Upload(s Storage, data []byte) error

	// Invoke runs inv and returns once every invocation has completed.
	Invoke(ctx context.Context, inv Invocation) error

	// Download returns a copy of the contents of s.
	Download(ctx context.Context, s Storage) ([]byte, error)

	// Release frees s. Releasing unknown storage is a no-op.
	Release(s Storage)

	// Close releases all device resources.
	// The device should not be used after Close is called.
	Close()
}

// CheckInvocation verifies that inv is internally consistent: the parameter
// block selects the entry point's staging format and the bound storage has
// the shape the entry point reads and writes.
func CheckInvocation(inv Invocation) error {
	if !inv.Entry.Format.IsValid() {
		return fmt.Errorf("%w: entry point %s", ErrStagingMismatch, inv.Entry.Name())
	}
	if inv.Input == nil || inv.Output == nil {
		return fmt.Errorf("%w: nil storage", ErrUnknownStorage)
	}

	d, err := inv.Params.Descriptor()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStagingMismatch, inv.Entry.Name(), err)
	}
	bits := d.Bits
	if sel := staging.Select(bits); sel != inv.Entry.Format {
		return fmt.Errorf("%w: %v selects %v, entry point is %s",
			ErrStagingMismatch, bits, sel, inv.Entry.Name())
	}

	staged, canonical := inv.Input.Descriptor(), inv.Output.Descriptor()
	if inv.Entry.Direction == staging.Encode {
		staged, canonical = canonical, staged
	}
	if staged.Canonical || staged.Staging != inv.Entry.Format {
		return fmt.Errorf("%w: %s bound to %v", ErrStagingMismatch, inv.Entry.Name(), staged)
	}
	if !canonical.Canonical {
		return fmt.Errorf("%w: %s expects canonical storage, got %v", ErrStagingMismatch, inv.Entry.Name(), canonical)
	}
	if inv.Texels < 0 || inv.Texels > staged.Texels || inv.Texels > canonical.Texels {
		return fmt.Errorf("%w: %d texels exceed storage %v/%v", ErrOutOfRange, inv.Texels, staged, canonical)
	}
	return nil
}
