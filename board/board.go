//go:build !tinygo

// Package board builds a multiplexer from a config file, resolving its pins
// on the configured GPIO backend.
package board

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"analog-mux/config"
	"analog-mux/expander"
	"analog-mux/i2cbus"
	"analog-mux/multiplexer"
	"analog-mux/pin"
	"analog-mux/remote"
	"analog-mux/scanner"
)

var ErrNoSampler = errors.New("backend cannot sample the analog line")

// Board is an opened multiplexer and the resources behind its pins.
type Board struct {
	Mux *multiplexer.Multiplexer

	sampler scanner.Sampler
	closers []io.Closer
}

// Open resolves every pin named in cfg and initializes the multiplexer.
func Open(cfg *config.Config, log *slog.Logger) (*Board, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mc := cfg.Multiplexer
	b := &Board{}

	names := append(append([]string(nil), mc.Select...), mc.Enable)
	var (
		pins []pin.Output
		err  error
	)
	switch mc.Backend {
	case config.BackendPeriph:
		if _, err = host.Init(); err != nil {
			return nil, fmt.Errorf("periph host init: %w", err)
		}
		pins, err = periphPins(names)
	case config.BackendCdev:
		pins, err = b.cdevPins(mc.Chip, names)
	case config.BackendExpander:
		pins, err = b.expanderPins(mc.I2CDevice, mc.I2CAddress, names)
	case config.BackendSerial:
		pins, err = b.serialPins(cfg, names, log)
	default:
		err = fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, mc.Backend)
	}
	if err != nil {
		b.Close()
		return nil, err
	}

	mp, err := NewPins(mc.Channels, pins[:len(pins)-1], pins[len(pins)-1])
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Mux, err = multiplexer.New(mp)
	if err != nil {
		b.Close()
		return nil, err
	}
	log.Info("multiplexer ready", "backend", mc.Backend, "channels", mc.Channels)
	return b, nil
}

// NewPins picks the topology matching channels.
func NewPins(channels int, sel []pin.Output, en pin.Output) (multiplexer.Pins, error) {
	switch {
	case channels == 16 && len(sel) == 4:
		return &multiplexer.Pins16{S0: sel[0], S1: sel[1], S2: sel[2], S3: sel[3], EN: en}, nil
	case channels == 8 && len(sel) == 3:
		return &multiplexer.Pins8{S0: sel[0], S1: sel[1], S2: sel[2], EN: en}, nil
	default:
		return nil, fmt.Errorf("%w: no %d-channel topology with %d select pins", config.ErrInvalid, channels, len(sel))
	}
}

// Sampler reads the common analog line, when the backend can.
func (b *Board) Sampler() (scanner.Sampler, error) {
	if b.sampler == nil {
		return nil, ErrNoSampler
	}
	return b.sampler, nil
}

// Close releases backend resources. Pin levels are left as they are.
func (b *Board) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func periphPins(names []string) ([]pin.Output, error) {
	pins := make([]pin.Output, 0, len(names))
	for _, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("no GPIO named %q", name)
		}
		pins = append(pins, pin.Periph(p))
	}
	return pins, nil
}

func (b *Board) cdevPins(chip string, names []string) ([]pin.Output, error) {
	offsets, err := numbers(names, 1<<16)
	if err != nil {
		return nil, err
	}
	pins := make([]pin.Output, 0, len(offsets))
	for _, off := range offsets {
		c, err := pin.OpenCdev(chip, off)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, c)
		pins = append(pins, c)
	}
	return pins, nil
}

func (b *Board) expanderPins(dev string, addr uint16, names []string) ([]pin.Output, error) {
	lines, err := numbers(names, 8)
	if err != nil {
		return nil, err
	}
	bus := i2cbus.Open(dev)
	b.closers = append(b.closers, bus)
	d := expander.New(bus, addr)

	pins := make([]pin.Output, 0, len(lines))
	for _, n := range lines {
		pins = append(pins, d.Pin(uint8(n)))
	}
	return pins, nil
}

func (b *Board) serialPins(cfg *config.Config, names []string, log *slog.Logger) ([]pin.Output, error) {
	ids, err := numbers(names, 256)
	if err != nil {
		return nil, err
	}
	sc := cfg.Serial
	link, err := remote.Open(sc.PortName, sc.BaudRate, sc.ReadTimeout, log)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, link)

	analog := cfg.Scan.AnalogPin
	b.sampler = scanner.SamplerFunc(func() (uint16, error) {
		return link.Sample(analog)
	})

	pins := make([]pin.Output, 0, len(ids))
	for _, n := range ids {
		pins = append(pins, link.Pin(uint8(n)))
	}
	return pins, nil
}

// numbers parses pin names as distinct integers in [0, limit).
func numbers(names []string, limit int) ([]int, error) {
	out := make([]int, 0, len(names))
	seen := make(map[int]string, len(names))
	for _, name := range names {
		n, err := strconv.Atoi(name)
		if err != nil || n < 0 || n >= limit {
			return nil, fmt.Errorf("%w: pin %q must be a number below %d", config.ErrInvalid, name, limit)
		}
		if prev, ok := seen[n]; ok {
			return nil, fmt.Errorf("%w: pins %q and %q are the same line", config.ErrInvalid, prev, name)
		}
		seen[n] = name
		out = append(out, n)
	}
	return out, nil
}
