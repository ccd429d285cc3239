// internal/indicator/gpio.go
package indicator

import (
	"errors"
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// outPin is the part of gpio.PinIO the LED needs.
type outPin interface {
	Out(l gpio.Level) error
}

// GPIO drives an LED on a host GPIO line through periph.io.
type GPIO struct {
	Pin int

	open func(pin int) (outPin, error)
	pin  outPin
}

func NewGPIO(pin int) *GPIO {
	return &GPIO{Pin: pin, open: openHostPin}
}

// openHostPin resolves a pin by its number, e.g. 17 for GPIO17.
func openHostPin(n int) (outPin, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	p := gpioreg.ByName(strconv.Itoa(n))
	if p == nil {
		return nil, errors.New("no such pin")
	}
	return p, nil
}

// Init claims the pin as an output, driven low.
func (g *GPIO) Init() error {
	open := g.open
	if open == nil {
		open = openHostPin
	}
	p, err := open(g.Pin)
	if err != nil {
		return fmt.Errorf("gpio %d: %w", g.Pin, err)
	}
	g.pin = p
	return g.Set(false)
}

func (g *GPIO) Set(on bool) error {
	if g.pin == nil {
		return fmt.Errorf("gpio %d: not initialized", g.Pin)
	}
	if err := g.pin.Out(gpio.Level(on)); err != nil {
		return fmt.Errorf("gpio %d: out: %w", g.Pin, err)
	}
	return nil
}

// Cleanup switches the LED off and releases the pin.
func (g *GPIO) Cleanup() error {
	if g.pin == nil {
		return nil
	}
	err := g.Set(false)
	g.pin = nil
	return err
}
