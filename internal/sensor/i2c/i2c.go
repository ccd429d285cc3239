// internal/sensor/i2c/i2c.go
package i2c

import (
	"errors"
	"fmt"
	"io"
	"sync"

	pi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Device is one I2C slave on a periph.io bus.
// This adapter is transport-only: it writes and reads raw bytes.
type Device struct {
	mu   sync.Mutex
	dev  *pi2c.Dev
	bus  io.Closer // nil when the bus is owned by the caller
	addr uint16
}

// Config is minimal bus config.
type Config struct {
	Path    string // bus name, e.g. /dev/i2c-1 or I2C1
	Address uint16 // 7-bit slave address
}

// Open initializes the host drivers, acquires the named bus and binds
// it to the slave address.
func Open(cfg Config) (*Device, error) {
	if cfg.Path == "" {
		return nil, errors.New("i2c: device path required")
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("i2c: host init: %w", err)
	}

	b, err := i2creg.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %s: %w", cfg.Path, err)
	}

	d := New(b, cfg.Address)
	d.bus = b
	return d, nil
}

// New binds an already open bus to a slave address. Close does not
// close the bus.
func New(b pi2c.Bus, addr uint16) *Device {
	return &Device{dev: &pi2c.Dev{Bus: b, Addr: addr}, addr: addr}
}

// Address returns the bound slave address.
func (d *Device) Address() uint16 { return d.addr }

// Transact writes w, then reads exactly len(r) bytes into r, as one
// bus transaction.
func (d *Device) Transact(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dev == nil {
		return errors.New("i2c: device closed")
	}
	if err := d.dev.Tx(w, r); err != nil {
		return fmt.Errorf("i2c: tx 0x%02x: %w", d.addr, err)
	}
	return nil
}

// Close releases the bus handle.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dev == nil {
		return nil
	}
	d.dev = nil
	if d.bus == nil {
		return nil
	}
	return d.bus.Close()
}
