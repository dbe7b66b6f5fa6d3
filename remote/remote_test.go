package remote

import (
	"bytes"
	"errors"
	"testing"

	"analog-mux/multiplexer"
	"analog-mux/protocol"
)

// fakeBridge answers frames the way the firmware does.
type fakeBridge struct {
	levels  map[uint8]bool
	samples map[uint8]uint16
	bad     map[uint8]bool
	noise   []byte
	mute    bool
	hold    bool   // hold back the next reply until the request after it
	held    []byte // reply waiting behind hold
	out     bytes.Buffer
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		levels:  make(map[uint8]bool),
		samples: make(map[uint8]uint16),
		bad:     make(map[uint8]bool),
	}
}

func (b *fakeBridge) Write(p []byte) (int, error) {
	req, err := protocol.Unmarshal(p)
	if err != nil {
		return 0, err
	}
	if b.mute {
		return len(p), nil
	}
	b.out.Write(b.noise)
	b.noise = nil

	reply := protocol.Event{Type: protocol.EVENT_TYPE_ACK, Pin: req.Pin}
	switch {
	case b.bad[req.Pin]:
		reply.Type = protocol.EVENT_TYPE_NACK
	case req.Type == protocol.EVENT_TYPE_PIN:
		b.levels[req.Pin] = req.Value != 0
	case req.Type == protocol.EVENT_TYPE_SAMPLE:
		reply.Type = protocol.EVENT_TYPE_VALUE
		reply.Value = b.samples[req.Pin]
	}
	if b.hold {
		b.hold = false
		b.held = protocol.Marshal(reply)
		return len(p), nil
	}
	b.out.Write(b.held)
	b.held = nil
	b.out.Write(protocol.Marshal(reply))
	return len(p), nil
}

func (b *fakeBridge) Read(p []byte) (int, error) {
	if b.out.Len() == 0 {
		return 0, nil
	}
	return b.out.Read(p)
}

func TestSetPin(t *testing.T) {
	b := newFakeBridge()
	l := NewLink(b, nil)

	if err := l.SetPin(4, true); err != nil {
		t.Fatal(err)
	}
	if !b.levels[4] {
		t.Error("pin 4 not high")
	}
	if err := l.Pin(4).Low(); err != nil {
		t.Fatal(err)
	}
	if b.levels[4] {
		t.Error("pin 4 not low")
	}
}

func TestSetPinErrors(t *testing.T) {
	b := newFakeBridge()
	l := NewLink(b, nil)

	b.bad[9] = true
	if err := l.SetPin(9, true); !errors.Is(err, ErrNack) {
		t.Errorf("SetPin(9) = %v, want ErrNack", err)
	}

	b.mute = true
	if err := l.SetPin(1, true); !errors.Is(err, ErrTimeout) {
		t.Errorf("SetPin(1) = %v, want ErrTimeout", err)
	}
}

func TestSample(t *testing.T) {
	b := newFakeBridge()
	b.samples[26] = 3071
	l := NewLink(b, nil)

	got, err := l.Sample(26)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3071 {
		t.Errorf("Sample(26) = %d, want 3071", got)
	}
}

func TestResync(t *testing.T) {
	b := newFakeBridge()
	b.samples[26] = 42
	b.noise = []byte{0x00, 0x69, 0x13, 0x69}
	l := NewLink(b, nil)

	got, err := l.Sample(26)
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("Sample(26) = %d after noise, want 42", got)
	}
}

func TestDrivesMultiplexer(t *testing.T) {
	b := newFakeBridge()
	l := NewLink(b, nil)

	m, err := multiplexer.New(&multiplexer.Pins16{
		S0: l.Pin(2),
		S1: l.Pin(3),
		S2: l.Pin(4),
		S3: l.Pin(5),
		EN: l.Pin(6),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetChannel(9); err != nil {
		t.Fatal(err)
	}
	want := map[uint8]bool{2: true, 3: false, 4: false, 5: true, 6: false}
	for p, level := range want {
		if b.levels[p] != level {
			t.Errorf("pin %d = %v, want %v", p, b.levels[p], level)
		}
	}

	b.bad[4] = true
	err = m.SetChannel(0)
	var pe *multiplexer.PinError
	if !errors.As(err, &pe) || pe.Pin != "S2" {
		t.Errorf("SetChannel(0) = %v, want PinError on S2", err)
	}
	if !errors.Is(err, ErrNack) {
		t.Errorf("SetChannel(0) = %v, want ErrNack", err)
	}
}

func TestLateReplies(t *testing.T) {
	t.Run("sample for another pin", func(t *testing.T) {
		b := newFakeBridge()
		b.samples[26] = 100
		b.samples[27] = 200
		l := NewLink(b, nil)

		b.hold = true
		if _, err := l.Sample(26); !errors.Is(err, ErrTimeout) {
			t.Fatalf("Sample(26) = %v, want ErrTimeout", err)
		}
		got, err := l.Sample(27)
		if err != nil {
			t.Fatal(err)
		}
		if got != 200 {
			t.Errorf("Sample(27) = %d, want 200", got)
		}
	})

	t.Run("ack for another pin", func(t *testing.T) {
		b := newFakeBridge()
		l := NewLink(b, nil)

		b.hold = true
		if err := l.SetPin(2, true); !errors.Is(err, ErrTimeout) {
			t.Fatalf("SetPin(2) = %v, want ErrTimeout", err)
		}
		b.bad[3] = true
		if err := l.SetPin(3, true); !errors.Is(err, ErrNack) {
			t.Errorf("SetPin(3) = %v, want ErrNack", err)
		}
	})

	t.Run("sample for the same pin", func(t *testing.T) {
		b := newFakeBridge()
		b.samples[26] = 100
		l := NewLink(b, nil)

		b.mute = true
		if _, err := l.Sample(26); !errors.Is(err, ErrTimeout) {
			t.Fatalf("Sample(26) = %v, want ErrTimeout", err)
		}
		b.mute = false
		b.out.Write(protocol.Marshal(protocol.Event{Type: protocol.EVENT_TYPE_VALUE, Pin: 26, Value: 100}))
		b.samples[26] = 200

		got, err := l.Sample(26)
		if err != nil {
			t.Fatal(err)
		}
		if got != 200 {
			t.Errorf("Sample(26) = %d after timeout, want 200", got)
		}
	})
}

func TestAnswers(t *testing.T) {
	pinReq := *protocol.NewPinEvent(4, true)
	sampleReq := *protocol.NewSampleEvent(26)

	tests := []struct {
		name  string
		req   protocol.Event
		reply protocol.Event
		want  bool
	}{
		{"ack", pinReq, protocol.Event{Type: protocol.EVENT_TYPE_ACK, Pin: 4}, true},
		{"nack", pinReq, protocol.Event{Type: protocol.EVENT_TYPE_NACK, Pin: 4}, true},
		{"ack other pin", pinReq, protocol.Event{Type: protocol.EVENT_TYPE_ACK, Pin: 5}, false},
		{"value for pin request", pinReq, protocol.Event{Type: protocol.EVENT_TYPE_VALUE, Pin: 4}, false},
		{"value", sampleReq, protocol.Event{Type: protocol.EVENT_TYPE_VALUE, Pin: 26, Value: 7}, true},
		{"ack for sample request", sampleReq, protocol.Event{Type: protocol.EVENT_TYPE_ACK, Pin: 26}, false},
		{"echoed request", sampleReq, sampleReq, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answers(tt.req, tt.reply); got != tt.want {
				t.Errorf("answers(%s, %s) = %v, want %v", tt.req.String(), tt.reply.String(), got, tt.want)
			}
		})
	}
}
