//go:build tinygo

// Package screen shows multiplexer channel samples as a bar graph on an
// SH1106 OLED.
package screen

import (
	"image/color"
	"machine"
	"strconv"

	"tinygo.org/x/drivers/sh1106"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"

	"analog-mux/channels"
)

const (
	ADDR   = 0x3C
	WIDTH  = 128
	HEIGHT = 64

	TEXT_HEIGHT = 12
	BAR_TOP     = TEXT_HEIGHT + 2
)

var onColor = color.RGBA{255, 255, 255, 255}

type Screen struct {
	display *sh1106.Device
}

func New(bus *machine.I2C) *Screen {
	disp := sh1106.NewI2C(bus)
	disp.Configure(sh1106.Config{
		Width:    WIDTH,
		Height:   HEIGHT,
		VccState: sh1106.SWITCHCAPVCC,
		Address:  ADDR,
	})
	disp.ClearBuffer()
	println("Display initialized")
	return &Screen{display: &disp}
}

func (s *Screen) Clear() {
	s.display.ClearBuffer()
	s.display.Display()
}

// Draw labels the active channel and draws one bar per channel, scaled so a
// full-scale 16-bit sample fills the area below the label.
func (s *Screen) Draw(values *channels.Values, active uint8) {
	s.display.ClearBuffer()

	label := "ch" + strconv.Itoa(int(active)) + " " + strconv.Itoa(int(values.ByIndex(active)))
	tinyfont.WriteLine(s.display, &freemono.Regular9pt7b, 0, TEXT_HEIGHT-2, label, onColor)

	n := int16(values.Len())
	if n == 0 {
		s.display.Display()
		return
	}
	barWidth := int16(WIDTH) / n
	maxHeight := int32(HEIGHT - BAR_TOP)
	for ch := int16(0); ch < n; ch++ {
		h := int16(int32(values.ByIndex(uint8(ch))) * maxHeight / 0xFFFF)
		s.bar(ch*barWidth, barWidth-1, h, uint8(ch) == active)
	}

	s.display.Display()
}

// bar fills width x height pixels upward from the bottom edge. The active
// channel also gets an outline up to the top of the bar area.
func (s *Screen) bar(x, width, height int16, outline bool) {
	bottom := int16(HEIGHT - 1)
	for dx := int16(0); dx < width; dx++ {
		for y := bottom; y > bottom-height; y-- {
			s.display.SetPixel(x+dx, y, onColor)
		}
	}
	if !outline {
		return
	}
	for y := int16(BAR_TOP); y <= bottom; y++ {
		s.display.SetPixel(x, y, onColor)
		s.display.SetPixel(x+width-1, y, onColor)
	}
	for dx := int16(0); dx < width; dx++ {
		s.display.SetPixel(x+dx, BAR_TOP, onColor)
	}
}
