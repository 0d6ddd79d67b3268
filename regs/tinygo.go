package regs

import (
	"github.com/coreman2200/ledspi/pinmux"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// TinyGo drives a TinyGo SPI bus such as machine.SPI0. The bus transfers each
// word synchronously, so the transmit register always reads empty.
type TinyGo struct {
	Bus   drivers.SPI
	Clock physic.Frequency

	// Mux routes pins on boards where the application owns the pin mux. Nil
	// means the pins were routed by the bus's own Configure.
	Mux func(p pinmux.Pin, m pinmux.Mode) error
	// Setup applies a Config to the bus, typically by calling
	// machine.SPI.Configure with the bit rate and mode.
	Setup func(c Config) error
}

func (t *TinyGo) SetPinMode(p pinmux.Pin, m pinmux.Mode) error {
	if t.Mux == nil {
		return nil
	}
	return t.Mux(p, m)
}

func (t *TinyGo) EnableClock() error { return nil }

func (t *TinyGo) ClockFrequency() physic.Frequency { return t.Clock }

func (t *TinyGo) Reset() error { return nil }

func (t *TinyGo) Configure(c Config) error {
	if t.Setup == nil {
		return nil
	}
	return t.Setup(c)
}

func (t *TinyGo) Enable() error { return nil }

func (t *TinyGo) WriteData(b byte) error {
	_, err := t.Bus.Transfer(b)
	return err
}

func (t *TinyGo) TxEmpty() (bool, error) { return true, nil }

var _ Bus = &TinyGo{}
