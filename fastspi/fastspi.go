// Package fastspi streams clocked addressable-LED data through a hardware SPI
// peripheral.
//
// An Output is bound at compile time to one data pin and one clock pin, and
// to a fixed clock divider at construction. Every strip update is written
// inside a single chip-select bracket:
//
//	out, err := fastspi.New[pinmux.Pin07, pinmux.Pin05](bus, &fastspi.Opts{Divider: 4})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := out.Init(); err != nil {
//		log.Fatal(err)
//	}
//	err = out.WritePixels(0, fastspi.Nop{}, pixels)
//
// Output has no internal locking. Callers serialize access to one bus.
package fastspi

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/ledspi/pinmux"
	"github.com/coreman2200/ledspi/regs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	// DefaultDrainTimeout bounds Wait when Opts.DrainTimeout is zero.
	DefaultDrainTimeout = 10 * time.Millisecond
	// DefaultStartMarker precedes each pixel when FlagStartBit is set and
	// Opts.StartMarker is nil.
	DefaultStartMarker byte = 0xFF
	// WordBits is the fixed transfer word width.
	WordBits = 8
)

// Opts is the fixed configuration of an Output.
type Opts struct {
	// Divider is applied to the peripheral clock to obtain the bit rate.
	Divider uint32
	// Select is an optional external chip select.
	Select Selectable
	// StartMarker is the framing byte written before each pixel when
	// FlagStartBit is requested. Nil selects DefaultStartMarker. The marker is
	// a whole word, so it only suits protocols whose framing unit is a byte.
	StartMarker *byte
	// DrainTimeout bounds each drain wait.
	DrainTimeout time.Duration
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

func (o *Opts) logger() zerolog.Logger {
	if o == nil || o.Logger == nil {
		return log.Logger
	}
	return *o.Logger
}

// SPI is the operation set of an Output, independent of its pin types.
type SPI interface {
	RawWriter
	Init() error
	BitRate() physic.Frequency
	SetSelect(s Selectable)
	Select() error
	Release() error
	WriteByte(b byte) error
	WriteWord(w uint16) error
	Wait() error
	WaitFully() error
	WriteBytesValue(value byte, n int) error
	WriteBytes(data []byte) error
	WriteBytesAdjusted(data []byte, adj Adjuster) error
	WritePixels(flags Flags, adj Adjuster, src PixelSource) error
}

// Output drives the peripheral behind bus with data on pin D and clock on
// pin C.
type Output[D pinmux.DataPin, C pinmux.ClockPin] struct {
	bus     regs.Bus
	sel     Selectable
	divider uint32
	marker  byte
	timeout time.Duration
	log     zerolog.Logger

	bitRate     physic.Frequency
	initialized bool
}

// New returns an Output for bus. Init must be called before the first
// transfer.
func New[D pinmux.DataPin, C pinmux.ClockPin](bus regs.Bus, opts *Opts) (*Output[D, C], error) {
	if bus == nil {
		return nil, errors.New("fastspi: nil bus")
	}
	if opts == nil || opts.Divider == 0 {
		return nil, &ConfigurationError{Field: "divider", Reason: "must be at least 1"}
	}
	o := &Output[D, C]{
		bus:     bus,
		sel:     opts.Select,
		divider: opts.Divider,
		marker:  DefaultStartMarker,
		timeout: opts.DrainTimeout,
		log:     opts.logger(),
	}
	if opts.StartMarker != nil {
		o.marker = *opts.StartMarker
	}
	if o.timeout <= 0 {
		o.timeout = DefaultDrainTimeout
	}
	return o, nil
}

// Open is New for pins known only at runtime. An unmapped pin is reported
// before any register is touched.
func Open(bus regs.Bus, data, clock pinmux.Pin, opts *Opts) (SPI, error) {
	l := opts.logger()
	if _, err := pinmux.Lookup(pinmux.Data, data); err != nil {
		l.Error().Err(err).Uint8("data", uint8(data)).Msg("unmapped SPI pin")
		return nil, &ConfigurationError{Field: "data pin", Value: int64(data), Err: err}
	}
	if _, err := pinmux.Lookup(pinmux.Clock, clock); err != nil {
		l.Error().Err(err).Uint8("clock", uint8(clock)).Msg("unmapped SPI pin")
		return nil, &ConfigurationError{Field: "clock pin", Value: int64(clock), Err: err}
	}
	switch data {
	case pinmux.Pin07{}.Pin():
		return openClock[pinmux.Pin07](bus, clock, opts)
	default:
		return openClock[pinmux.Pin52](bus, clock, opts)
	}
}

func openClock[D pinmux.DataPin](bus regs.Bus, clock pinmux.Pin, opts *Opts) (SPI, error) {
	if clock == (pinmux.Pin05{}).Pin() {
		return New[D, pinmux.Pin05](bus, opts)
	}
	return New[D, pinmux.Pin45](bus, opts)
}

// BitRate computes the serial clock the peripheral runs at for divider. It
// divides whole hertz, truncating like the hardware's integer divider.
func BitRate(clock physic.Frequency, divider uint32) physic.Frequency {
	if divider == 0 {
		return 0
	}
	hz := uint64(clock / physic.Hertz)
	return physic.Frequency(hz/uint64(divider)) * physic.Hertz
}

// Init brings the peripheral up. It must run exactly once before any
// transfer; the peripheral stays configured for the life of the process.
func (o *Output[D, C]) Init() error {
	if o.initialized {
		return ErrInitialized
	}
	if err := o.bus.EnableClock(); err != nil {
		return fmt.Errorf("fastspi: enable clock: %w", err)
	}
	clk := o.bus.ClockFrequency()
	o.bitRate = BitRate(clk, o.divider)
	if o.bitRate == 0 {
		return &ConfigurationError{Field: "divider", Value: int64(o.divider), Reason: "exceeds peripheral clock " + clk.String()}
	}
	if err := pinmux.Enable[D, C](o.bus); err != nil {
		return fmt.Errorf("fastspi: enable pins: %w", err)
	}
	if err := o.bus.Reset(); err != nil {
		return fmt.Errorf("fastspi: reset: %w", err)
	}
	cfg := regs.Config{
		ClockHz:    clk,
		BitRate:    o.bitRate,
		Master:     true,
		Mode:       spi.Mode0,
		SoftwareCS: true,
		WordBits:   WordBits,
	}
	if err := o.bus.Configure(cfg); err != nil {
		return fmt.Errorf("fastspi: configure: %w", err)
	}
	if err := o.bus.Enable(); err != nil {
		return fmt.Errorf("fastspi: enable: %w", err)
	}
	o.initialized = true
	var d D
	var c C
	o.log.Debug().
		Uint8("data", uint8(d.Pin())).
		Uint8("clock", uint8(c.Pin())).
		Uint32("divider", o.divider).
		Str("rate", o.bitRate.String()).
		Msg("spi output initialized")
	return nil
}

// BitRate returns the rate computed by Init.
func (o *Output[D, C]) BitRate() physic.Frequency {
	return o.bitRate
}

func (o *Output[D, C]) String() string {
	var d D
	var c C
	return fmt.Sprintf("fastspi.Output{data:%d clock:%d div:%d}", d.Pin(), c.Pin(), o.divider)
}

var _ SPI = &Output[pinmux.Pin07, pinmux.Pin05]{}
