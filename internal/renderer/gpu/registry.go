package gpu

import (
	"fmt"
	"slices"
	"sync"
)

// Driver opens a device.
type Driver func(opts Options) (Device, error)

// NoneDriver is the reserved name that never yields a device.
const NoneDriver = "none"

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available under name.
// It panics if name is empty, reserved or already registered.
func Register(name string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if name == "" || name == NoneDriver {
		panic("gpu: invalid driver name " + fmt.Sprintf("%q", name))
	}
	if d == nil {
		panic("gpu: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("gpu: Register called twice for driver " + name)
	}
	drivers[name] = d
}

// Drivers returns the sorted names of registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open opens a device with the named driver.
// Every failure matches ErrNoDevice.
func Open(name string, opts Options) (Device, error) {
	if name == NoneDriver {
		return nil, fmt.Errorf("%w: disabled by configuration", ErrNoDevice)
	}

	driversMu.RLock()
	d, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown driver %q", ErrNoDevice, name)
	}

	dev, err := d(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoDevice, name, err)
	}
	return dev, nil
}
