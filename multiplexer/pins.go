package multiplexer

import (
	"errors"
	"fmt"

	"analog-mux/pin"
)

// Pins drives the select and enable lines of one multiplexer topology.
// The only implementations are Pins16 and Pins8.
type Pins interface {
	// SetChannel drives select pin i to bit i of channel. The enable pin is
	// left alone.
	SetChannel(channel uint8) error
	// Enable brings EN low.
	Enable() error
	// Disable brings EN high.
	Disable() error
	NumChannels() uint8

	lines() (sel []pin.Output, en pin.Output)
}

// Pins16 wires a 16-channel multiplexer such as the 74HC4067.
// Some datasheets label S0-S3 as A-D and EN as INH.
type Pins16 struct {
	S0, S1, S2, S3 pin.Output
	EN             pin.Output
}

func (p *Pins16) SetChannel(channel uint8) error {
	return setChannel(channel, p.S0, p.S1, p.S2, p.S3)
}

func (p *Pins16) Enable() error  { return drive("EN", p.EN, false) }
func (p *Pins16) Disable() error { return drive("EN", p.EN, true) }

func (p *Pins16) NumChannels() uint8 { return 16 }

func (p *Pins16) lines() ([]pin.Output, pin.Output) {
	if p == nil {
		return nil, nil
	}
	return []pin.Output{p.S0, p.S1, p.S2, p.S3}, p.EN
}

// Pins8 wires an 8-channel multiplexer such as the 74HC4051.
type Pins8 struct {
	S0, S1, S2 pin.Output
	EN         pin.Output
}

func (p *Pins8) SetChannel(channel uint8) error {
	return setChannel(channel, p.S0, p.S1, p.S2)
}

func (p *Pins8) Enable() error  { return drive("EN", p.EN, false) }
func (p *Pins8) Disable() error { return drive("EN", p.EN, true) }

func (p *Pins8) NumChannels() uint8 { return 8 }

func (p *Pins8) lines() ([]pin.Output, pin.Output) {
	if p == nil {
		return nil, nil
	}
	return []pin.Output{p.S0, p.S1, p.S2}, p.EN
}

// setChannel writes every select pin even if an earlier write failed, so the
// remaining lines still reach the requested pattern.
func setChannel(channel uint8, sel ...pin.Output) error {
	var errs []error
	for i, p := range sel {
		if err := drive(selectName(i), p, channel&(1<<i) != 0); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func drive(name string, p pin.Output, high bool) error {
	if err := pin.Set(p, high); err != nil {
		return &PinError{Pin: name, High: high, Err: err}
	}
	return nil
}

func selectName(i int) string {
	return fmt.Sprintf("S%d", i)
}
