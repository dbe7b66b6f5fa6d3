package multiplexer

import (
	"errors"
	"fmt"
)

var (
	// ErrChannelOutOfRange is returned for a channel >= NumChannels.
	ErrChannelOutOfRange = errors.New("channel out of range")
	// ErrNilPin is returned when a topology is built with a missing pin.
	ErrNilPin = errors.New("nil pin")
)

// PinError reports a failed write to one select or enable line.
type PinError struct {
	Pin  string
	High bool
	Err  error
}

func (e *PinError) Error() string {
	level := "low"
	if e.High {
		level = "high"
	}
	return fmt.Sprintf("drive %s %s: %v", e.Pin, level, e.Err)
}

func (e *PinError) Unwrap() error {
	return e.Err
}
