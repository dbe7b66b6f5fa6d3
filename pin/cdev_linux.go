//go:build linux && !tinygo

package pin

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "analog-mux"

// Cdev is an output line requested from the Linux GPIO character device.
type Cdev struct {
	l *gpiocdev.Line
}

// OpenCdev requests offset on chip (e.g. "gpiochip0") as an output, initially low.
func OpenCdev(chip string, offset int) (*Cdev, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("request %s:%d: %w", chip, offset, err)
	}
	return &Cdev{l: l}, nil
}

func (c *Cdev) High() error { return c.set(1) }
func (c *Cdev) Low() error  { return c.set(0) }

func (c *Cdev) set(v int) error {
	if err := c.l.SetValue(v); err != nil {
		return fmt.Errorf("line %d: %w", c.l.Offset(), err)
	}
	return nil
}

// Close releases the line.
func (c *Cdev) Close() error {
	return c.l.Close()
}
