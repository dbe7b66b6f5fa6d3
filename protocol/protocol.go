package protocol

import (
	"errors"
	"fmt"
)

type EventType uint8

const (
	// host -> device
	EVENT_TYPE_PIN EventType = iota + 1
	EVENT_TYPE_SAMPLE

	// device -> host
	EVENT_TYPE_ACK
	EVENT_TYPE_NACK
	EVENT_TYPE_VALUE
)

const (
	SIGNATURE uint8 = 0x69

	// EventLength is the size of every frame on the wire.
	EventLength = 6
)

var (
	ErrShortFrame   = errors.New("short frame")
	ErrBadSignature = errors.New("bad signature")
	ErrUnknownType  = errors.New("unknown event type")
)

// Event is one frame: signature, signature, type, pin, value (big endian).
//
// PIN carries the level in Value (0 or 1). SAMPLE names the analog pin to
// read. ACK and NACK echo the pin of the request they answer. VALUE carries
// the sample.
type Event struct {
	Type  EventType
	Pin   uint8
	Value uint16
}

func Marshal(e Event) []byte {
	return []byte{SIGNATURE, SIGNATURE, uint8(e.Type), e.Pin, uint8(e.Value >> 8), uint8(e.Value)}
}

func Unmarshal(data []byte) (Event, error) {
	if len(data) < EventLength {
		return Event{}, ErrShortFrame
	}
	if !IsEventAtStart(data) {
		return Event{}, ErrBadSignature
	}
	t := EventType(data[2])
	if t < EVENT_TYPE_PIN || t > EVENT_TYPE_VALUE {
		return Event{}, fmt.Errorf("%w: %d", ErrUnknownType, data[2])
	}
	return Event{
		Type:  t,
		Pin:   data[3],
		Value: uint16(data[4])<<8 | uint16(data[5]),
	}, nil
}

func NewPinEvent(pin uint8, high bool) *Event {
	e := &Event{Type: EVENT_TYPE_PIN, Pin: pin}
	if high {
		e.Value = 1
	}
	return e
}

func NewSampleEvent(pin uint8) *Event {
	return &Event{Type: EVENT_TYPE_SAMPLE, Pin: pin}
}

func (t EventType) String() string {
	switch t {
	case EVENT_TYPE_PIN:
		return "Pin"
	case EVENT_TYPE_SAMPLE:
		return "Sample"
	case EVENT_TYPE_ACK:
		return "Ack"
	case EVENT_TYPE_NACK:
		return "Nack"
	case EVENT_TYPE_VALUE:
		return "Value"
	default:
		return "Unknown"
	}
}

func (e *Event) String() string {
	switch e.Type {
	case EVENT_TYPE_PIN:
		level := "low"
		if e.Value != 0 {
			level = "high"
		}
		return fmt.Sprintf("Pin    %d %s", e.Pin, level)
	case EVENT_TYPE_VALUE:
		return fmt.Sprintf("Value  %d", e.Value)
	default:
		return fmt.Sprintf("%-6s %d", e.Type, e.Pin)
	}
}

func IsEventAtStart(data []byte) bool {
	if len(data) < 2 || data[0] != SIGNATURE || data[1] != SIGNATURE {
		return false
	}
	return true
}
