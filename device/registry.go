package device

import (
	"sync"
)

// Device names.
const (
	// NameWGPU is the HAL compute device.
	NameWGPU = "wgpu"

	// NameSoftware is the CPU reference device.
	NameSoftware = "software"
)

// Factory creates a new device instance. It returns nil when the device
// cannot be created on this machine.
type Factory func() Device

// registry holds registered devices.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for device selection (first available wins).
	priority = []string{NameWGPU, NameSoftware}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in device packages.
// If a device with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a device from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns a list of registered device names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a device with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get returns a device instance by name.
// Returns nil if the device is not registered or cannot be created.
func Get(name string) Device {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available device based on priority.
// Priority order: wgpu > software
// Returns nil if no devices are registered.
func Default() Device {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range priority {
		if factory, ok := factories[name]; ok {
			if d := factory(); d != nil {
				return d
			}
		}
	}

	// Fallback: return first available
	for _, factory := range factories {
		if d := factory(); d != nil {
			return d
		}
	}

	return nil
}

// MustDefault returns the default device or panics.
func MustDefault() Device {
	d := Default()
	if d == nil {
		panic("device: no device available")
	}
	return d
}

// InitDefault creates and initializes the default device.
func InitDefault() (Device, error) {
	d := Default()
	if d == nil {
		return nil, ErrNotAvailable
	}

	if err := d.Init(); err != nil {
		d.Close()
		return nil, err
	}

	return d, nil
}
