//go:build tinygo

// muxbridge is firmware that lets a host drive multiplexer pins and sample
// the common analog line over USB serial. See the remote package for the
// host side.
package main

import (
	"machine"
	"time"

	"analog-mux/protocol"
)

var (
	outputs = make(map[uint8]machine.Pin)
	adcs    = make(map[uint8]machine.ADC)
)

func main() {
	time.Sleep(time.Second * 2)
	machine.InitADC()

	serial := machine.Serial

	// Buffer to store incoming serial data
	buffer := make([]byte, 0, protocol.EventLength)

	for {
		updated := false

		for serial.Buffered() > 0 {
			b, err := serial.ReadByte()
			if err != nil {
				println("Error reading serial:", err)
				break
			}
			if len(buffer) < 2 && b != protocol.SIGNATURE {
				buffer = buffer[:0]
				continue
			}
			buffer = append(buffer, b)
			if len(buffer) < protocol.EventLength {
				continue
			}

			event, err := protocol.Unmarshal(buffer)
			if err != nil {
				println("Invalid event received:", err.Error())
				buffer = append(buffer[:0], buffer[1:]...)
				continue
			}
			buffer = buffer[:0]

			reply := handleEvent(event)
			if _, err := serial.Write(protocol.Marshal(reply)); err != nil {
				println("ERROR: ", err)
			}
			updated = true
		}

		if !updated {
			time.Sleep(time.Millisecond)
		}
	}
}

// handleEvent executes one request and returns the reply frame.
func handleEvent(e protocol.Event) protocol.Event {
	nack := protocol.Event{Type: protocol.EVENT_TYPE_NACK, Pin: e.Pin}
	if machine.Pin(e.Pin) == machine.NoPin {
		return nack
	}

	switch e.Type {
	case protocol.EVENT_TYPE_PIN:
		p, ok := outputs[e.Pin]
		if !ok {
			p = machine.Pin(e.Pin)
			p.Configure(machine.PinConfig{Mode: machine.PinOutput})
			outputs[e.Pin] = p
		}
		p.Set(e.Value != 0)
		return protocol.Event{Type: protocol.EVENT_TYPE_ACK, Pin: e.Pin}
	case protocol.EVENT_TYPE_SAMPLE:
		a, ok := adcs[e.Pin]
		if !ok {
			a = machine.ADC{Pin: machine.Pin(e.Pin)}
			a.Configure(machine.ADCConfig{})
			adcs[e.Pin] = a
		}
		return protocol.Event{Type: protocol.EVENT_TYPE_VALUE, Pin: e.Pin, Value: a.Get()}
	default:
		println("Unexpected event:", e.String())
		return nack
	}
}
