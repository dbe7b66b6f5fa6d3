// Package scanner walks every multiplexer channel and samples the common
// analog line on each.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"analog-mux/channels"
	"analog-mux/multiplexer"
)

// Sampler reads the multiplexer's common analog line.
type Sampler interface {
	Sample() (uint16, error)
}

type SamplerFunc func() (uint16, error)

func (f SamplerFunc) Sample() (uint16, error) { return f() }

// Scanner owns the multiplexer for the duration of a scan.
type Scanner struct {
	mux     *multiplexer.Multiplexer
	sampler Sampler
	settle  time.Duration
	log     *slog.Logger
	values  *channels.Values
}

// New returns a scanner that waits settle after each channel change before
// sampling.
func New(m *multiplexer.Multiplexer, s Sampler, settle time.Duration, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{
		mux:     m,
		sampler: s,
		settle:  settle,
		log:     log,
		values:  channels.New(m.NumChannels()),
	}
}

// ReadAll selects and samples every channel once. The returned Values are
// reused by later passes.
func (s *Scanner) ReadAll(ctx context.Context) (*channels.Values, error) {
	for ch := uint8(0); ch < s.mux.NumChannels(); ch++ {
		if err := s.mux.SetChannel(ch); err != nil {
			return nil, fmt.Errorf("select channel %d: %w", ch, err)
		}
		if err := sleep(ctx, s.settle); err != nil {
			return nil, err
		}
		v, err := s.sampler.Sample()
		if err != nil {
			return nil, fmt.Errorf("sample channel %d: %w", ch, err)
		}
		s.values.Update(ch, v)
	}
	s.log.Debug("scanned channels", "channels", s.mux.NumChannels())
	return s.values, nil
}

// Run scans every period until ctx is done, handing each completed pass to fn.
// A failed pass is logged and the next one is attempted.
func (s *Scanner) Run(ctx context.Context, period time.Duration, fn func(*channels.Values)) error {
	if period <= 0 {
		return fmt.Errorf("scan period must be positive, got %s", period)
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		values, err := s.ReadAll(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			s.log.Warn("scan failed", "err", err)
		default:
			fn(values)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
