package pinmux_test

import (
	"errors"
	"testing"

	. "github.com/coreman2200/ledspi/pinmux"
	"github.com/stretchr/testify/assert"
)

type muxCall struct {
	Pin  Pin
	Mode Mode
}

type recordMux struct {
	calls []muxCall
	err   error
}

func (m *recordMux) SetPinMode(p Pin, mode Mode) error {
	m.calls = append(m.calls, muxCall{p, mode})
	return m.err
}

var TestLookupResolvesKnownPins = []struct {
	Role   Role
	Pin    Pin
	Expect Mode
	Err    bool
}{
	{Data, 7, Mode7, false},
	{Data, 52, Mode8, false},
	{Clock, 5, Mode7, false},
	{Clock, 45, Mode7, false},
	{Data, 5, ModeGPIO, true},
	{Clock, 7, ModeGPIO, true},
	{Data, 14, ModeGPIO, true},
	{Role(9), 7, ModeGPIO, true},
}

func TestLookup(t *testing.T) {
	for _, v := range TestLookupResolvesKnownPins {
		t.Run(v.Role.String(), func(t *testing.T) {
			m, err := Lookup(v.Role, v.Pin)
			assert.Equal(t, v.Expect, m)
			if !v.Err {
				assert.NoError(t, err)
				return
			}
			var upe *UnmappedPinError
			if assert.True(t, errors.As(err, &upe)) {
				assert.Equal(t, v.Pin, upe.Pin)
				assert.Equal(t, v.Role, upe.Role)
			}
		})
	}
}

func TestEnableDisable(t *testing.T) {
	m := &recordMux{}
	assert.NoError(t, Enable[Pin52, Pin45](m))
	assert.NoError(t, Disable[Pin52, Pin45](m))
	assert.Equal(t, []muxCall{
		{52, Mode8}, {45, Mode7},
		{52, ModeGPIO}, {45, ModeGPIO},
	}, m.calls)
}

func TestEnable_err(t *testing.T) {
	m := &recordMux{err: errors.New("mux fault")}
	assert.EqualError(t, Enable[Pin07, Pin05](m), "mux fault")
	assert.Len(t, m.calls, 1, "clock pin must not be touched after the data pin failed")
}

func TestUnmappedPinError(t *testing.T) {
	assert.EqualError(t, &UnmappedPinError{Role: Data, Pin: 3}, "pinmux: pin 3 cannot carry SPI data; use pin 7 or 52")
	assert.EqualError(t, &UnmappedPinError{Role: Clock, Pin: 3}, "pinmux: pin 3 cannot carry SPI clock; use pin 5 or 45")
}
