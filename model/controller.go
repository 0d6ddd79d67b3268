package model

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/coreman2200/ledspi/fastspi"
)

// Order lists which RGB channel (0=R, 1=G, 2=B) goes on the wire first,
// second and third.
type Order [3]uint8

var (
	RGB = Order{0, 1, 2}
	RBG = Order{0, 2, 1}
	GRB = Order{1, 0, 2}
	GBR = Order{1, 2, 0}
	BRG = Order{2, 0, 1}
	BGR = Order{2, 1, 0}
)

func (o Order) String() string {
	const names = "RGB"
	return string([]byte{names[o[0]], names[o[1]], names[o[2]]})
}

// ParseOrder parses names such as "GRB".
func ParseOrder(s string) (Order, error) {
	for _, o := range []Order{RGB, RBG, GRB, GBR, BRG, BGR} {
		if strings.EqualFold(s, o.String()) {
			return o, nil
		}
	}
	return Order{}, fmt.Errorf("model: unknown color order %q", s)
}

// ditherBits is the number of virtual bits gained by temporal dithering; the
// dither pattern repeats every 1<<ditherBits frames.
const ditherBits = 3

// Controller feeds a frame of pixels to an SPI output, applying color order,
// global brightness and binary temporal dithering.
type Controller struct {
	pixels []color.NRGBA
	order  Order
	scale  uint8
	pos    int
	d, e   [3]uint8
}

// NewController prepares one frame. frame drives the dither pattern and
// should increase by one per frame shown; dithering is off when dither is
// false.
func NewController(pixels []color.NRGBA, order Order, brightness uint8, dither bool, frame uint8) *Controller {
	c := &Controller{pixels: pixels, order: order, scale: brightness}
	if dither {
		c.initDithering(frame)
	}
	return c
}

func (c *Controller) initDithering(frame uint8) {
	r := frame & (1<<ditherBits - 1)
	var q uint8
	if r&0x01 != 0 {
		q |= 0x80
	}
	if r&0x02 != 0 {
		q |= 0x40
	}
	if r&0x04 != 0 {
		q |= 0x20
	}
	q += 1 << (7 - ditherBits)
	for i := range c.e {
		if c.scale == 0 {
			c.e[i], c.d[i] = 0, 0
			continue
		}
		e := uint8(256/int(c.scale) + 1)
		c.d[i] = scale8(q, e)
		if c.d[i] > 0 {
			c.d[i]--
		}
		c.e[i] = e - 1
	}
}

func scale8(i, s uint8) uint8 {
	return uint8((uint16(i) * (1 + uint16(s))) >> 8)
}

func qadd8(i, j uint8) uint8 {
	if t := uint16(i) + uint16(j); t < 0xFF {
		return uint8(t)
	}
	return 0xFF
}

func channel(p color.NRGBA, ch uint8) uint8 {
	switch ch {
	case 0:
		return p.R
	case 1:
		return p.G
	default:
		return p.B
	}
}

func (c *Controller) load(slot int) uint8 {
	v := channel(c.pixels[c.pos], c.order[slot])
	return scale8(qadd8(v, c.d[slot]), c.scale)
}

func (c *Controller) Len() int            { return len(c.pixels) }
func (c *Controller) Has(n int) bool      { return len(c.pixels)-c.pos >= n }
func (c *Controller) LoadAndScale0() byte { return c.load(0) }
func (c *Controller) LoadAndScale1() byte { return c.load(1) }
func (c *Controller) LoadAndScale2() byte { return c.load(2) }
func (c *Controller) AdvanceData()        { c.pos++ }

// StepDithering alternates the dither offset between pixels.
func (c *Controller) StepDithering() {
	for i := range c.d {
		c.d[i] = c.e[i] - c.d[i]
	}
}

var _ fastspi.PixelSource = &Controller{}
