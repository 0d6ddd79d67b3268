package regs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coreman2200/ledspi/pinmux"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DefaultMaxTx is used when the connection does not report a transfer limit.
const DefaultMaxTx = 4096

// Periph exposes a periph.io SPI port as a peripheral register file.
//
// Words written to the data register are queued and sent in one transaction
// when the status flag is polled, or when the queue reaches the connection's
// transfer limit. On spidev the kernel owns the pin mux, so pin mode changes
// are only remembered.
type Periph struct {
	mu    sync.Mutex
	port  spi.Port
	clock physic.Frequency

	c       spi.Conn
	maxTx   int
	buf     []byte
	pins    map[pinmux.Pin]pinmux.Mode
	clocked bool
	enabled bool
	err     error
}

// NewPeriph wraps p. clock is reported as the peripheral input clock; the bit
// rate derived from it is what gets passed to Connect.
func NewPeriph(p spi.Port, clock physic.Frequency) *Periph {
	return &Periph{port: p, clock: clock, pins: map[pinmux.Pin]pinmux.Mode{}}
}

func (p *Periph) String() string {
	return fmt.Sprintf("regs.Periph{%s}", p.port)
}

func (p *Periph) SetPinMode(pin pinmux.Pin, m pinmux.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pins[pin] = m
	return nil
}

// PinMode returns the last mode set for pin.
func (p *Periph) PinMode(pin pinmux.Pin) pinmux.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pins[pin]
}

func (p *Periph) EnableClock() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clocked = true
	return nil
}

func (p *Periph) ClockFrequency() physic.Frequency {
	return p.clock
}

func (p *Periph) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = p.buf[:0]
	p.enabled = false
	p.err = nil
	return nil
}

// Configure connects the port. periph ports accept a single Connect, so the
// peripheral can only be configured once.
func (p *Periph) Configure(c Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.clocked {
		return errors.New("regs: configure before clock enable")
	}
	if !c.Master {
		return errors.New("regs: periph ports only support master mode")
	}
	if p.c != nil {
		return errors.New("regs: port already configured")
	}
	mode := c.Mode
	if c.SoftwareCS {
		mode |= spi.NoCS
	}
	sc, err := p.port.Connect(c.BitRate, mode, c.WordBits)
	if err != nil {
		return fmt.Errorf("regs: connect %s: %w", c, err)
	}
	p.c = sc
	p.maxTx = DefaultMaxTx
	if l, ok := sc.(conn.Limits); ok && l.MaxTxSize() > 0 {
		p.maxTx = l.MaxTxSize()
	}
	return nil
}

func (p *Periph) Enable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c == nil {
		return errors.New("regs: enable before configure")
	}
	p.enabled = true
	return nil
}

func (p *Periph) WriteData(b byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return errors.New("regs: write to disabled peripheral")
	}
	p.buf = append(p.buf, b)
	if len(p.buf) >= p.maxTx {
		return p.flush()
	}
	return nil
}

// TxEmpty flushes queued words and reports the register empty once they are
// on the wire.
func (p *Periph) TxEmpty() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.flush(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Periph) flush() error {
	if p.err != nil {
		return p.err
	}
	if len(p.buf) == 0 {
		return nil
	}
	if err := p.c.Tx(p.buf, nil); err != nil {
		p.err = fmt.Errorf("regs: tx %d bytes: %w", len(p.buf), err)
		return p.err
	}
	p.buf = p.buf[:0]
	return nil
}

var _ Bus = &Periph{}
