// Package pin defines the digital output capability the multiplexer drives,
// plus adapters for the GPIO stacks it runs on.
package pin

// Output is a digital output line. Either call may fail with a
// hardware-specific error.
type Output interface {
	High() error
	Low() error
}

// Set drives o high or low.
func Set(o Output, high bool) error {
	if high {
		return o.High()
	}
	return o.Low()
}

// Func adapts a level-setting function to Output. Useful for pins that
// cannot fail, such as TinyGo's machine.Pin.
type Func func(high bool) error

func (f Func) High() error { return f(true) }
func (f Func) Low() error  { return f(false) }
