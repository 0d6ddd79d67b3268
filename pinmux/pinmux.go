// Package pinmux routes the data and clock pins of the GSPI peripheral.
//
// Pins that can carry the peripheral's signals are distinct types. A driver
// is instantiated over one DataPin and one ClockPin type, so a pin without an
// alternate-function mapping for the requested role cannot be named at all.
//
//	GPIO#  SPI FUNC  QFN Pin#  PINMUX Mode
//	14     CLK       5         7
//	16     MOSI      7         7
//	31     CLK       45        7
//	32     MOSI      52        8
package pinmux

import "fmt"

// Pin is a physical package pin number.
type Pin uint8

// Mode is an alternate-function code written to the pin's mux register.
type Mode uint8

const (
	ModeGPIO Mode = 0
	Mode7    Mode = 7
	Mode8    Mode = 8
)

// Role is the signal a pin carries for the peripheral.
type Role uint8

const (
	Data Role = iota
	Clock
)

func (r Role) String() string {
	switch r {
	case Data:
		return "data"
	case Clock:
		return "clock"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Muxer writes a pin's alternate-function selection.
type Muxer interface {
	SetPinMode(p Pin, m Mode) error
}

// DataPin is a pin that can be routed to the peripheral's data output.
type DataPin interface {
	Pin() Pin
	DataMode() Mode
}

// ClockPin is a pin that can be routed to the peripheral's clock output.
type ClockPin interface {
	Pin() Pin
	ClockMode() Mode
}

type Pin05 struct{}

func (Pin05) Pin() Pin        { return 5 }
func (Pin05) ClockMode() Mode { return Mode7 }

type Pin07 struct{}

func (Pin07) Pin() Pin       { return 7 }
func (Pin07) DataMode() Mode { return Mode7 }

type Pin45 struct{}

func (Pin45) Pin() Pin        { return 45 }
func (Pin45) ClockMode() Mode { return Mode7 }

type Pin52 struct{}

func (Pin52) Pin() Pin       { return 52 }
func (Pin52) DataMode() Mode { return Mode8 }

var (
	_ DataPin  = Pin07{}
	_ DataPin  = Pin52{}
	_ ClockPin = Pin05{}
	_ ClockPin = Pin45{}
)

// Enable routes both pins to the peripheral.
func Enable[D DataPin, C ClockPin](m Muxer) error {
	var d D
	var c C
	if err := m.SetPinMode(d.Pin(), d.DataMode()); err != nil {
		return err
	}
	return m.SetPinMode(c.Pin(), c.ClockMode())
}

// Disable reverts both pins to plain digital I/O so the lines are free between
// transfers.
func Disable[D DataPin, C ClockPin](m Muxer) error {
	var d D
	var c C
	if err := m.SetPinMode(d.Pin(), ModeGPIO); err != nil {
		return err
	}
	return m.SetPinMode(c.Pin(), ModeGPIO)
}

// UnmappedPinError is returned by Lookup for a pin with no mapping in the
// requested role.
type UnmappedPinError struct {
	Role Role
	Pin  Pin
}

func (e *UnmappedPinError) Error() string {
	switch e.Role {
	case Data:
		return fmt.Sprintf("pinmux: pin %d cannot carry SPI data; use pin 7 or 52", e.Pin)
	case Clock:
		return fmt.Sprintf("pinmux: pin %d cannot carry SPI clock; use pin 5 or 45", e.Pin)
	}
	return fmt.Sprintf("pinmux: pin %d has no %s mapping", e.Pin, e.Role)
}

// Lookup resolves the alternate-function mode for a pin id known only at
// runtime, e.g. one read from a configuration file.
func Lookup(r Role, p Pin) (Mode, error) {
	switch r {
	case Data:
		switch p {
		case Pin07{}.Pin():
			return Pin07{}.DataMode(), nil
		case Pin52{}.Pin():
			return Pin52{}.DataMode(), nil
		}
	case Clock:
		switch p {
		case Pin05{}.Pin():
			return Pin05{}.ClockMode(), nil
		case Pin45{}.Pin():
			return Pin45{}.ClockMode(), nil
		}
	}
	return ModeGPIO, &UnmappedPinError{Role: r, Pin: p}
}
