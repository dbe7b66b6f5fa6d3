// Package channels stores one analog sample per multiplexer channel and
// renders them as a table.
package channels

import (
	"fmt"
	"strings"
)

const MaxChannels = 16

const rowWidth = 8

// Values holds the latest sample of each channel. Channels past the
// multiplexer's count stay zero.
type Values struct {
	n       uint8
	samples [MaxChannels]uint16
}

// New returns storage for n channels, n at most MaxChannels.
func New(n uint8) *Values {
	if n > MaxChannels {
		panic(fmt.Sprintf("channels: %d channels, max %d", n, MaxChannels))
	}
	return &Values{n: n}
}

func (v *Values) Len() uint8 {
	return v.n
}

func (v *Values) ByIndex(i uint8) uint16 {
	v.check(i)
	return v.samples[i]
}

func (v *Values) Update(i uint8, val uint16) {
	v.check(i)
	v.samples[i] = val
}

// Slice returns a copy of the samples in channel order.
func (v *Values) Slice() []uint16 {
	return append([]uint16(nil), v.samples[:v.n]...)
}

func (v *Values) check(i uint8) {
	if i >= v.n {
		panic(fmt.Sprintf("channels: invalid channel %d", i))
	}
}

// String renders a header row of channel names above each row of eight samples.
func (v *Values) String() string {
	var sb strings.Builder
	sb.WriteString("Multiplexer Channel Values:\n")
	for start := uint8(0); start < v.n; start += rowWidth {
		end := start + rowWidth
		if end > v.n {
			end = v.n
		}
		sb.WriteString("\n")
		for i := start; i < end; i++ {
			fmt.Fprintf(&sb, "ch%d\t", i)
		}
		sb.WriteString("\n")
		for i := start; i < end; i++ {
			fmt.Fprintf(&sb, "%d\t", v.samples[i])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
