//go:build tinygo

// muxreadall samples every channel of a 74HC4067 wired to a Raspberry Pi Pico
// every 100ms, prints the table over serial and draws it on an SH1106.
//
// Wiring:
//
//	GPIO26 (ADC0)        common pin (Z / SIG)
//	GPIO10-GPIO13        S0-S3
//	GPIO14               EN (or tie EN to GND)
//	GPIO0/GPIO1 (I2C0)   SH1106 SDA/SCL
//
// For a 74HC4051 swap the Pins16 literal below for a Pins8 without S3.
package main

import (
	"machine"
	"time"

	"analog-mux/channels"
	"analog-mux/multiplexer"
	"analog-mux/pin"
	screenlib "analog-mux/screen"
)

const (
	period = 100 * time.Millisecond
	// 74HC4067 switching takes well under a microsecond; give the ADC's
	// sample capacitor time to follow.
	settle = 10 * time.Microsecond
)

func output(p machine.Pin) pin.Output {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return pin.Func(func(high bool) error {
		p.Set(high)
		return nil
	})
}

func main() {
	time.Sleep(time.Second * 2)

	machine.InitADC()
	analog := machine.ADC{Pin: machine.ADC0}
	analog.Configure(machine.ADCConfig{})

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	mux, err := multiplexer.New(&multiplexer.Pins16{
		S0: output(machine.GPIO10),
		S1: output(machine.GPIO11),
		S2: output(machine.GPIO12),
		S3: output(machine.GPIO13),
		EN: output(machine.GPIO14),
	})
	if err != nil {
		panic(err)
	}

	// Configure I2C
	var screen *screenlib.Screen
	i2c := machine.I2C0
	err = i2c.Configure(machine.I2CConfig{
		SDA:       machine.GPIO0,
		SCL:       machine.GPIO1,
		Frequency: 400000,
	})
	if err != nil {
		println("Failed to configure I2C bus, running without display")
	} else {
		screen = screenlib.New(i2c)
	}

	values := channels.New(mux.NumChannels())
	ledState := false
	for {
		start := time.Now()
		for ch := uint8(0); ch < mux.NumChannels(); ch++ {
			mux.SetChannel(ch)
			time.Sleep(settle)
			values.Update(ch, analog.Get())
		}
		println(values.String())

		if screen != nil {
			screen.Draw(values, brightest(values))
		}

		ledState = !ledState
		led.Set(ledState)

		time.Sleep(period - time.Since(start))
	}
}

// brightest returns the channel with the highest sample.
func brightest(v *channels.Values) uint8 {
	var best uint8
	for ch := uint8(1); ch < v.Len(); ch++ {
		if v.ByIndex(ch) > v.ByIndex(best) {
			best = ch
		}
	}
	return best
}
