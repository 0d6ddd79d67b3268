// Package regs is the register-access boundary of the SPI peripheral.
//
// Drivers talk to a Bus instead of touching peripheral registers, so the same
// driver runs on a simulated peripheral in tests, on a Linux spidev port via
// periph.io, or on a TinyGo machine.SPI.
package regs

import (
	"fmt"

	"github.com/coreman2200/ledspi/pinmux"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Config is written to the peripheral's configuration registers.
type Config struct {
	// ClockHz is the peripheral's input clock.
	ClockHz physic.Frequency
	// BitRate is the requested serial clock.
	BitRate physic.Frequency
	Master  bool
	Mode    spi.Mode
	// SoftwareCS leaves the chip select line to software.
	SoftwareCS bool
	WordBits   int
}

func (c Config) String() string {
	role := "slave"
	if c.Master {
		role = "master"
	}
	return fmt.Sprintf("%s %s %d-bit @ %s (clk %s)", role, c.Mode, c.WordBits, c.BitRate, c.ClockHz)
}

// Bus is the opaque vendor register layer.
type Bus interface {
	pinmux.Muxer

	// EnableClock gates the peripheral clock on.
	EnableClock() error
	// ClockFrequency reads the peripheral's input clock.
	ClockFrequency() physic.Frequency
	// Reset performs a peripheral soft reset.
	Reset() error
	Configure(c Config) error
	// Enable turns the peripheral on. It is the last step of bring-up.
	Enable() error
	// WriteData puts one word in the transmit register. It does not wait for
	// the word to be shifted out.
	WriteData(b byte) error
	// TxEmpty reads the transmit-empty status flag.
	TxEmpty() (bool, error)
}
