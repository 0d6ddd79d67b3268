package regs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/coreman2200/ledspi/pinmux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

func masterConfig() Config {
	return Config{
		ClockHz:    40 * physic.MegaHertz,
		BitRate:    10 * physic.MegaHertz,
		Master:     true,
		Mode:       spi.Mode0,
		SoftwareCS: true,
		WordBits:   8,
	}
}

func TestSim_Latency(t *testing.T) {
	s := &Sim{Latency: 2}
	require.NoError(t, s.EnableClock())
	require.NoError(t, s.WriteData(0xAA))

	for i := 0; i < 2; i++ {
		empty, err := s.TxEmpty()
		require.NoError(t, err)
		assert.False(t, empty, "poll %d", i)
	}
	empty, err := s.TxEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
	assert.Equal(t, []string{"clock", "data", "drained"}, s.Ops())
}

func TestSim_Stuck(t *testing.T) {
	s := &Sim{Stuck: true}
	for i := 0; i < 10; i++ {
		empty, err := s.TxEmpty()
		assert.NoError(t, err)
		assert.False(t, empty)
	}
}

func TestSim_NotClocked(t *testing.T) {
	s := &Sim{}
	assert.Error(t, s.Reset())
	assert.Error(t, s.Configure(masterConfig()))
	assert.Error(t, s.Enable())
	assert.Equal(t, DefaultSimClock, s.ClockFrequency())
}

func TestPeriph_FlushOnDrain(t *testing.T) {
	buf := bytes.Buffer{}
	p := NewPeriph(spitest.NewRecordRaw(&buf), 40*physic.MegaHertz)

	require.NoError(t, p.EnableClock())
	require.NoError(t, p.Reset())
	require.NoError(t, p.Configure(masterConfig()))
	require.NoError(t, p.Enable())

	for _, b := range []byte{0x01, 0x02, 0x03} {
		require.NoError(t, p.WriteData(b))
	}
	assert.Zero(t, buf.Len(), "words must stay queued until drained")

	empty, err := p.TxEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf.Bytes())
	assert.Equal(t, 40*physic.MegaHertz, p.ClockFrequency())
}

func TestPeriph_Playback(t *testing.T) {
	s := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				{W: []byte{0xFF, 0xFF}},
				{W: []byte{0x00}},
			},
		},
	}
	p := NewPeriph(s, 40*physic.MegaHertz)
	require.NoError(t, p.EnableClock())
	require.NoError(t, p.Configure(masterConfig()))
	require.NoError(t, p.Enable())

	require.NoError(t, p.WriteData(0xFF))
	require.NoError(t, p.WriteData(0xFF))
	_, err := p.TxEmpty()
	require.NoError(t, err)
	require.NoError(t, p.WriteData(0x00))
	_, err = p.TxEmpty()
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestPeriph_TxError(t *testing.T) {
	s := &spitest.Playback{Playback: conntest.Playback{DontPanic: true}}
	p := NewPeriph(s, 40*physic.MegaHertz)
	require.NoError(t, p.EnableClock())
	require.NoError(t, p.Configure(masterConfig()))
	require.NoError(t, p.Enable())
	require.NoError(t, p.WriteData(0x42))

	empty, err := p.TxEmpty()
	assert.False(t, empty)
	assert.Error(t, err)

	// The fault sticks until the next reset.
	_, err2 := p.TxEmpty()
	assert.Equal(t, err, err2)
	require.NoError(t, p.Reset())
	empty, err = p.TxEmpty()
	assert.True(t, empty)
	assert.NoError(t, err)
}

func TestPeriph_Order(t *testing.T) {
	p := NewPeriph(spitest.NewRecordRaw(&bytes.Buffer{}), 40*physic.MegaHertz)
	assert.Error(t, p.Configure(masterConfig()), "clock must be enabled first")
	assert.Error(t, p.Enable(), "configure must come before enable")
	assert.Error(t, p.WriteData(0), "peripheral is disabled")

	require.NoError(t, p.EnableClock())
	c := masterConfig()
	c.Master = false
	assert.Error(t, p.Configure(c))
	require.NoError(t, p.Configure(masterConfig()))
	assert.Error(t, p.Configure(masterConfig()), "periph ports connect once")
}

func TestPeriph_PinMode(t *testing.T) {
	p := NewPeriph(spitest.NewRecordRaw(&bytes.Buffer{}), 40*physic.MegaHertz)
	require.NoError(t, p.SetPinMode(7, pinmux.Mode7))
	assert.Equal(t, pinmux.Mode7, p.PinMode(7))
	require.NoError(t, p.SetPinMode(7, pinmux.ModeGPIO))
	assert.Equal(t, pinmux.ModeGPIO, p.PinMode(7))
}

type fakeTinyGoSPI struct {
	sent []byte
	err  error
}

func (f *fakeTinyGoSPI) Tx(w, r []byte) error {
	f.sent = append(f.sent, w...)
	return f.err
}

func (f *fakeTinyGoSPI) Transfer(b byte) (byte, error) {
	f.sent = append(f.sent, b)
	return 0, f.err
}

func TestTinyGo(t *testing.T) {
	bus := &fakeTinyGoSPI{}
	var got Config
	var muxed []pinmux.Pin
	tg := &TinyGo{
		Bus:   bus,
		Clock: 48 * physic.MegaHertz,
		Mux: func(p pinmux.Pin, m pinmux.Mode) error {
			muxed = append(muxed, p)
			return nil
		},
		Setup: func(c Config) error {
			got = c
			return nil
		},
	}
	require.NoError(t, tg.SetPinMode(52, pinmux.Mode8))
	require.NoError(t, tg.Configure(masterConfig()))
	require.NoError(t, tg.WriteData(0x5A))
	empty, err := tg.TxEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
	assert.Equal(t, []byte{0x5A}, bus.sent)
	assert.Equal(t, masterConfig(), got)
	assert.Equal(t, []pinmux.Pin{52}, muxed)

	bus.err = errors.New("bus fault")
	assert.EqualError(t, tg.WriteData(0x00), "bus fault")
}
