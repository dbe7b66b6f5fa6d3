//go:build !tinygo

// Package remote drives multiplexer pins and samples the common analog line
// on a microcontroller running the muxbridge firmware, over a serial link.
package remote

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"

	"analog-mux/pin"
	"analog-mux/protocol"
)

var (
	ErrNack    = errors.New("device rejected request")
	ErrTimeout = errors.New("no reply from device")
)

// Link is a request/response channel to the bridge firmware. One request is
// outstanding at a time.
type Link struct {
	rw     io.ReadWriter
	closer io.Closer
	log    *slog.Logger

	mu    sync.Mutex
	buf   []byte
	stale bool
}

// Open opens portName and waits at most timeout for each reply.
func Open(portName string, baudRate int, timeout time.Duration, log *slog.Logger) (*Link, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", portName, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("reset %s: %w", portName, err)
	}
	l := NewLink(port, log)
	l.closer = port
	return l, nil
}

// NewLink speaks the frame protocol over rw. A Read returning no bytes and no
// error is treated as a timeout, matching go.bug.st/serial ports.
func NewLink(rw io.ReadWriter, log *slog.Logger) *Link {
	if log == nil {
		log = slog.Default()
	}
	return &Link{
		rw:  rw,
		log: log,
		buf: make([]byte, 0, protocol.EventLength),
	}
}

// SetPin drives a pin on the device.
func (l *Link) SetPin(n uint8, high bool) error {
	reply, err := l.request(*protocol.NewPinEvent(n, high))
	if err != nil {
		return fmt.Errorf("pin %d: %w", n, err)
	}
	if reply.Type == protocol.EVENT_TYPE_NACK {
		return fmt.Errorf("pin %d: %w", n, ErrNack)
	}
	return nil
}

// Pin returns device pin n as a pin.Output.
func (l *Link) Pin(n uint8) pin.Output {
	return pin.Func(func(high bool) error {
		return l.SetPin(n, high)
	})
}

// Sample reads the analog pin on the device.
func (l *Link) Sample(analogPin uint8) (uint16, error) {
	reply, err := l.request(*protocol.NewSampleEvent(analogPin))
	if err != nil {
		return 0, fmt.Errorf("sample %d: %w", analogPin, err)
	}
	if reply.Type == protocol.EVENT_TYPE_NACK {
		return 0, fmt.Errorf("sample %d: %w", analogPin, ErrNack)
	}
	return reply.Value, nil
}

func (l *Link) request(req protocol.Event) (protocol.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stale {
		l.drain()
	}

	l.log.Debug("sending event", "event", req.String())
	if _, err := l.rw.Write(protocol.Marshal(req)); err != nil {
		return protocol.Event{}, err
	}
	for {
		reply, err := l.readEvent()
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				l.stale = true
			}
			return protocol.Event{}, err
		}
		if !answers(req, reply) {
			l.log.Warn("skipping reply to another request", "request", req.String(), "reply", reply.String())
			continue
		}
		l.log.Debug("received event", "event", reply.String())
		return reply, nil
	}
}

// answers reports whether reply is the device's response to req. The device
// echoes the request's pin in every reply.
func answers(req, reply protocol.Event) bool {
	if reply.Pin != req.Pin {
		return false
	}
	switch reply.Type {
	case protocol.EVENT_TYPE_NACK:
		return true
	case protocol.EVENT_TYPE_ACK:
		return req.Type == protocol.EVENT_TYPE_PIN
	case protocol.EVENT_TYPE_VALUE:
		return req.Type == protocol.EVENT_TYPE_SAMPLE
	default:
		return false
	}
}

// drain throws away replies that arrived after their request timed out, so
// they cannot be taken for the answer to the next request.
func (l *Link) drain() {
	l.buf = l.buf[:0]
	if r, ok := l.rw.(interface{ ResetInputBuffer() error }); ok {
		if err := r.ResetInputBuffer(); err != nil {
			l.log.Warn("resetting input buffer", "err", err)
		}
	}
	var b [protocol.EventLength]byte
	dropped := 0
	for {
		n, err := l.rw.Read(b[:])
		if err != nil || n == 0 {
			break
		}
		dropped += n
	}
	if dropped > 0 {
		l.log.Debug("dropped late bytes", "bytes", dropped)
	}
	l.stale = false
}

// readEvent skips bytes until a valid frame is buffered.
func (l *Link) readEvent() (protocol.Event, error) {
	var b [1]byte
	for {
		for len(l.buf) < protocol.EventLength {
			n, err := l.rw.Read(b[:])
			if err != nil {
				return protocol.Event{}, err
			}
			if n == 0 {
				l.buf = l.buf[:0]
				return protocol.Event{}, ErrTimeout
			}
			l.buf = append(l.buf, b[0])
		}
		e, err := protocol.Unmarshal(l.buf)
		if err != nil {
			l.log.Warn("dropping byte", "byte", l.buf[0], "err", err)
			l.buf = append(l.buf[:0], l.buf[1:]...)
			continue
		}
		l.buf = l.buf[:0]
		return e, nil
	}
}

// Close closes the serial port if Link opened it.
func (l *Link) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
