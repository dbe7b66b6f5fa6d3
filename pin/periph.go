//go:build !tinygo

package pin

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

type periphPin struct {
	p gpio.PinOut
}

// Periph wraps a periph.io output pin.
func Periph(p gpio.PinOut) Output {
	return &periphPin{p: p}
}

func (p *periphPin) High() error { return p.out(gpio.High) }
func (p *periphPin) Low() error  { return p.out(gpio.Low) }

func (p *periphPin) out(l gpio.Level) error {
	if err := p.p.Out(l); err != nil {
		return fmt.Errorf("%s: %w", p.p, err)
	}
	return nil
}

func (p *periphPin) String() string {
	return p.p.String()
}
