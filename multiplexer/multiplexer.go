// Package multiplexer drives 8-channel (74HC4051) and 16-channel (74HC4067)
// analog multiplexers through their binary select lines and active-low
// enable line.
package multiplexer

import (
	"errors"
	"fmt"
)

// Multiplexer keeps track of the selected channel and enable state of one
// analog multiplexer chip.
//
// ActiveChannel and Enabled are a write-through cache of the last commanded
// state. They are never read back from hardware; when a pin write fails the
// cache still holds the commanded value and the error is returned to the
// caller.
//
// A Multiplexer is not safe for concurrent use.
type Multiplexer struct {
	pins          Pins
	numChannels   uint8
	activeChannel uint8
	enabled       bool
}

// New takes ownership of pins, enables the chip and selects channel 0.
// Prior pin levels are never trusted.
func New(pins Pins) (*Multiplexer, error) {
	if pins == nil {
		return nil, ErrNilPin
	}
	sel, en := pins.lines()
	if en == nil {
		return nil, fmt.Errorf("EN: %w", ErrNilPin)
	}
	for i, p := range sel {
		if p == nil {
			return nil, fmt.Errorf("%s: %w", selectName(i), ErrNilPin)
		}
	}

	m := &Multiplexer{
		pins:        pins,
		numChannels: pins.NumChannels(),
	}
	err := errors.Join(m.Enable(), m.SetChannel(0))
	if err != nil {
		return nil, fmt.Errorf("initialize multiplexer: %w", err)
	}
	return m, nil
}

// SetChannel selects channel, 0 up to NumChannels()-1.
func (m *Multiplexer) SetChannel(channel uint8) error {
	if channel >= m.numChannels {
		return fmt.Errorf("%w: %d (have %d channels)", ErrChannelOutOfRange, channel, m.numChannels)
	}
	err := m.pins.SetChannel(channel)
	m.activeChannel = channel
	return err
}

// Enable brings EN low.
func (m *Multiplexer) Enable() error {
	err := m.pins.Enable()
	m.enabled = true
	return err
}

// Disable brings EN high, disconnecting every channel from the common pin.
func (m *Multiplexer) Disable() error {
	err := m.pins.Disable()
	m.enabled = false
	return err
}

func (m *Multiplexer) NumChannels() uint8   { return m.numChannels }
func (m *Multiplexer) ActiveChannel() uint8 { return m.activeChannel }
func (m *Multiplexer) Enabled() bool        { return m.enabled }

func (m *Multiplexer) String() string {
	state := "disabled"
	if m.enabled {
		state = "enabled"
	}
	return fmt.Sprintf("%d-channel multiplexer, channel %d, %s", m.numChannels, m.activeChannel, state)
}
