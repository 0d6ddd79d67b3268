package regs

import (
	"errors"
	"sync"

	"github.com/coreman2200/ledspi/pinmux"
	"periph.io/x/conn/v3/physic"
)

// DefaultSimClock is the peripheral clock reported by Sim when none is set.
const DefaultSimClock = 80 * physic.MegaHertz

// Event is one register access recorded by Sim.
type Event struct {
	Op   string
	Pin  pinmux.Pin
	Mode pinmux.Mode
	Data byte
}

// Sim is an in-memory peripheral. It records every register access and keeps
// written words pending until the status flag is polled.
type Sim struct {
	mu sync.Mutex

	// Clock is the peripheral clock; DefaultSimClock when zero.
	Clock physic.Frequency
	// Latency is the number of TxEmpty polls a pending word takes to drain.
	Latency int
	// Stuck keeps the transmit register full forever.
	Stuck bool

	Events  []Event
	Data    []byte
	Pins    map[pinmux.Pin]pinmux.Mode
	Config  Config
	Enabled bool
	Clocked bool
	Resets  int

	pending int
	polls   int
}

var errNotClocked = errors.New("regs: peripheral clock is gated")

func (s *Sim) record(e Event) {
	s.Events = append(s.Events, e)
}

func (s *Sim) SetPinMode(p pinmux.Pin, m pinmux.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Pins == nil {
		s.Pins = map[pinmux.Pin]pinmux.Mode{}
	}
	s.Pins[p] = m
	s.record(Event{Op: "pin", Pin: p, Mode: m})
	return nil
}

func (s *Sim) EnableClock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clocked = true
	s.record(Event{Op: "clock"})
	return nil
}

func (s *Sim) ClockFrequency() physic.Frequency {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Clock == 0 {
		return DefaultSimClock
	}
	return s.Clock
}

func (s *Sim) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Clocked {
		return errNotClocked
	}
	s.Resets++
	s.Enabled = false
	s.Config = Config{}
	s.pending = 0
	s.record(Event{Op: "reset"})
	return nil
}

func (s *Sim) Configure(c Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Clocked {
		return errNotClocked
	}
	s.Config = c
	s.record(Event{Op: "configure"})
	return nil
}

func (s *Sim) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Clocked {
		return errNotClocked
	}
	s.Enabled = true
	s.record(Event{Op: "enable"})
	return nil
}

// WriteData records b. Words written while the peripheral is disabled are
// still recorded so tests can catch the mistake.
func (s *Sim) WriteData(b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data = append(s.Data, b)
	s.pending++
	s.polls = 0
	s.record(Event{Op: "data", Data: b})
	return nil
}

func (s *Sim) TxEmpty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Stuck {
		return false, nil
	}
	if s.pending == 0 {
		return true, nil
	}
	s.polls++
	if s.polls <= s.Latency {
		return false, nil
	}
	s.pending = 0
	s.polls = 0
	s.record(Event{Op: "drained"})
	return true, nil
}

// Note appends a marker event, letting collaborators such as chip selects
// record their place in the register stream.
func (s *Sim) Note(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Event{Op: op})
}

// Ops returns the operation names of all recorded events.
func (s *Sim) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Events))
	for i, e := range s.Events {
		out[i] = e.Op
	}
	return out
}

var _ Bus = &Sim{}
