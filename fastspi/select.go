package fastspi

import (
	"fmt"

	"github.com/coreman2200/ledspi/pinmux"
	"periph.io/x/conn/v3/gpio"
)

// Selectable is an external chip select.
type Selectable interface {
	Select() error
	Release() error
}

// PinSelect drives a GPIO as chip select. The line is active low unless
// ActiveHigh is set.
type PinSelect struct {
	Pin        gpio.PinOut
	ActiveHigh bool
}

// Select drives the line to its active level.
func (p *PinSelect) Select() error {
	return p.Pin.Out(gpio.Level(p.ActiveHigh))
}

// Release drives the line to its idle level.
func (p *PinSelect) Release() error {
	return p.Pin.Out(gpio.Level(!p.ActiveHigh))
}

// SetSelect replaces the external chip select. It must not be called while a
// bracket is open.
func (o *Output[D, C]) SetSelect(s Selectable) {
	o.sel = s
}

// Select opens a transaction: the external select first, then the pins are
// routed back to the peripheral.
func (o *Output[D, C]) Select() error {
	if !o.initialized {
		return ErrNotInitialized
	}
	if o.sel != nil {
		if err := o.sel.Select(); err != nil {
			return fmt.Errorf("fastspi: select: %w", err)
		}
	}
	if err := pinmux.Enable[D, C](o.bus); err != nil {
		if o.sel != nil {
			_ = o.sel.Release()
		}
		return fmt.Errorf("fastspi: enable pins: %w", err)
	}
	return nil
}

// Release closes a transaction: the pins revert to digital I/O, then the
// external select is released.
func (o *Output[D, C]) Release() error {
	err := pinmux.Disable[D, C](o.bus)
	if err != nil {
		err = fmt.Errorf("fastspi: disable pins: %w", err)
	}
	if o.sel != nil {
		if rerr := o.sel.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("fastspi: release: %w", rerr)
		}
	}
	return err
}

// finish drains a successful block and always releases the bracket. The
// first error wins.
func (o *Output[D, C]) finish(err error) error {
	if err == nil {
		err = o.WaitFully()
	}
	if rerr := o.Release(); err == nil {
		err = rerr
	}
	return err
}
