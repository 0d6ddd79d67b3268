package spi

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coreman2200/ledspi/fastspi"
	"github.com/coreman2200/ledspi/internal/config"
	"github.com/coreman2200/ledspi/model"
	"github.com/coreman2200/ledspi/regs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"
)

func testConfig(chip string) *config.Config {
	c := config.Default()
	c.Chipset = chip
	c.Brightness = 1
	c.Dither = false
	return c
}

func TestBusRenderer_WS2801(t *testing.T) {
	sim := &regs.Sim{}
	s := model.NewStrip(2, model.RGBA(255, 0, 0, 255))
	r, err := NewBusRenderer(sim, testConfig("ws2801"), s)
	require.NoError(t, err)
	assert.True(t, r.Spi)
	sim.Data = nil

	require.NoError(t, r.Render())
	assert.Equal(t, []byte{200, 0, 0, 200, 0, 0}, sim.Data)

	sim.Data = nil
	require.NoError(t, r.Clear())
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, sim.Data)
}

func TestBusRenderer_ColorOrder(t *testing.T) {
	sim := &regs.Sim{}
	c := testConfig("ws2801")
	c.ColorOrder = "GRB"
	r, err := NewBusRenderer(sim, c, model.NewStrip(1, model.RGBA(255, 0, 0, 255)))
	require.NoError(t, err)
	sim.Data = nil
	require.NoError(t, r.Render())
	assert.Equal(t, []byte{0, 200, 0}, sim.Data)
}

func TestBusRenderer_ConfigErrors(t *testing.T) {
	s := model.NewStrip(1, model.NewColor(0))

	_, err := NewBusRenderer(&regs.Sim{}, testConfig("apa102"), s)
	assert.Error(t, err)

	c := testConfig("ws2801")
	c.ColorOrder = "XYZ"
	_, err = NewBusRenderer(&regs.Sim{}, c, s)
	assert.Error(t, err)

	c = testConfig("ws2801")
	c.SPI.DataPin = 14
	_, err = NewBusRenderer(&regs.Sim{}, c, s)
	var ce *fastspi.ConfigurationError
	assert.True(t, errors.As(err, &ce))

	c = testConfig("ws2801")
	c.SPI.CS = "NO_SUCH_PIN"
	_, err = NewBusRenderer(&regs.Sim{}, c, s)
	assert.Error(t, err)
}

func TestRenderer_Periph(t *testing.T) {
	buf := bytes.Buffer{}
	c := testConfig("lpd8806")
	r, err := NewRenderer(spitest.NewRecordRaw(&buf), c, model.NewStrip(1, model.RGBA(0, 0, 0, 255)))
	require.NoError(t, err)
	require.NoError(t, r.Render())
	assert.Equal(t, []byte{0x80, 0x80, 0x80, 0x00}, buf.Bytes())
}

func TestRenderer_NRZ(t *testing.T) {
	buf := bytes.Buffer{}
	r, err := NewRenderer(spitest.NewRecordRaw(&buf), testConfig("ws2812"), model.NewStrip(4, model.RGBA(10, 20, 30, 255)))
	require.NoError(t, err)
	require.NoError(t, r.Render())
	assert.NotZero(t, buf.Len())
}

func TestLooper_Run(t *testing.T) {
	sim := &regs.Sim{}
	s := model.NewStrip(3, model.NewColor(0))
	s.Effect = model.Rainbow(time.Second)
	r, err := NewBusRenderer(sim, testConfig("ws2801"), s)
	require.NoError(t, err)
	sim.Data = nil

	l := NewLooper(r, 200)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, l.Run(ctx))

	assert.Positive(t, l.Frames())
	assert.Len(t, sim.Data, 9*l.Frames())
	assert.Zero(t, l.Timeouts())
}

func TestLooper_DropsTimedOutFrames(t *testing.T) {
	sim := &regs.Sim{}
	c := testConfig("ws2801")
	c.SPI.DrainMs = 1
	r, err := NewBusRenderer(sim, c, model.NewStrip(1, model.RGBA(1, 1, 1, 255)))
	require.NoError(t, err)
	sim.Stuck = true

	l := NewLooper(r, 100)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	require.NoError(t, l.Run(ctx))
	assert.Zero(t, l.Frames())
	assert.Positive(t, l.Timeouts())
}

func TestNewLooper_DefaultFPS(t *testing.T) {
	assert.Equal(t, DefaultFPS, NewLooper(nil, 0).FPS)
}
