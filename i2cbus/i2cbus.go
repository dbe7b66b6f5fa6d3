//go:build !tinygo

// Package i2cbus exposes a Linux I2C adapter as a tinygo.org/x/drivers.I2C
// bus so the expander driver runs unchanged on a host.
package i2cbus

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/io/i2c"
	"golang.org/x/exp/io/i2c/driver"
)

// Bus opens one device per address on first use.
type Bus struct {
	o driver.Opener

	mu      sync.Mutex
	devices map[uint16]*i2c.Device
}

// Open returns a bus backed by the devfs node, e.g. /dev/i2c-1.
func Open(dev string) *Bus {
	return New(&i2c.Devfs{Dev: dev})
}

// New returns a bus backed by o.
func New(o driver.Opener) *Bus {
	return &Bus{
		o:       o,
		devices: make(map[uint16]*i2c.Device),
	}
}

// Tx writes w then reads into r as two transfers. Devices that need a
// repeated start between them are not supported.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	d, err := b.device(addr)
	if err != nil {
		return err
	}
	if len(w) > 0 {
		if err := d.Write(w); err != nil {
			return fmt.Errorf("i2c write %#02x: %w", addr, err)
		}
	}
	if len(r) > 0 {
		if err := d.Read(r); err != nil {
			return fmt.Errorf("i2c read %#02x: %w", addr, err)
		}
	}
	return nil
}

func (b *Bus) device(addr uint16) (*i2c.Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if d, ok := b.devices[addr]; ok {
		return d, nil
	}
	d, err := i2c.Open(b.o, int(addr))
	if err != nil {
		return nil, fmt.Errorf("i2c open %#02x: %w", addr, err)
	}
	b.devices[addr] = d
	return d, nil
}

// Close closes every opened device.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for addr, d := range b.devices {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(b.devices, addr)
	}
	return errors.Join(errs...)
}
