// Package expander drives multiplexer pins through a PCF8574 I2C GPIO
// expander.
//
// Each PCF8574 line is quasi-bidirectional: "high" enables a weak pull-up and
// "low" sinks current, which is enough to drive 74HC405x/74HC4067 logic inputs.
package expander

import (
	"fmt"

	"tinygo.org/x/drivers"

	"analog-mux/pin"
)

const DefaultAddress = 0x20

// Device is one PCF8574 on an I2C bus.
type Device struct {
	bus  drivers.I2C
	addr uint16
	// last state written to the chip
	state uint8
}

// New returns a driver for the expander at addr. Zero selects DefaultAddress.
func New(bus drivers.I2C, addr uint16) *Device {
	if addr == 0 {
		addr = DefaultAddress
	}
	return &Device{
		bus:   bus,
		addr:  addr,
		state: 0xFF,
	}
}

// SetPin drives line n (0-7).
func (d *Device) SetPin(n uint8, high bool) error {
	if n > 7 {
		return fmt.Errorf("pcf8574 %#02x: no pin %d", d.addr, n)
	}
	state := d.state &^ (1 << n)
	if high {
		state |= 1 << n
	}
	return d.SetAll(state)
}

// SetAll writes all eight lines at once, bit n driving line n.
func (d *Device) SetAll(state uint8) error {
	if err := d.bus.Tx(d.addr, []byte{state}, nil); err != nil {
		return fmt.Errorf("pcf8574 %#02x: %w", d.addr, err)
	}
	d.state = state
	return nil
}

// Read returns the level of every line, bit n for line n.
func (d *Device) Read() (uint8, error) {
	var buf [1]byte
	if err := d.bus.Tx(d.addr, nil, buf[:]); err != nil {
		return 0, fmt.Errorf("pcf8574 %#02x: %w", d.addr, err)
	}
	return buf[0], nil
}

// State returns the last state successfully written.
func (d *Device) State() uint8 {
	return d.state
}

// Pin returns line n as a pin.Output.
func (d *Device) Pin(n uint8) pin.Output {
	return pin.Func(func(high bool) error {
		return d.SetPin(n, high)
	})
}
