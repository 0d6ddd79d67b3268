package model

import (
	"image/color"
	"math"
)

// MaxBrightness caps the per-LED alpha applied by ToRGB.
const MaxBrightness uint8 = 200

// Bit offsets of the channels packed in a ColorVal (0xAAGGRRBB).
const (
	AlphaOffset uint8 = 0x18
	GreenOffset uint8 = 0x10
	RedOffset   uint8 = 0x08
	BlueOffset  uint8 = 0x0
)

const DefaultColor uint32 = 0xFF9911CC

// ColorVal is a packed color whose alpha is the LED's own brightness.
type ColorVal struct {
	val uint32
}

func NewColor(c uint32) ColorVal {
	return ColorVal{val: c}
}

// RGBA builds a ColorVal from separate channels.
func RGBA(r, g, b, a uint8) ColorVal {
	var c ColorVal
	c.SetR(r)
	c.SetG(g)
	c.SetB(b)
	c.SetA(a)
	return c
}

func (c ColorVal) Color() uint32 {
	return c.val
}

// ToRGB applies the alpha, capped at MaxBrightness, to the color channels.
func (c ColorVal) ToRGB() color.NRGBA {
	a := uint16(c.GetA())
	if a > uint16(MaxBrightness) {
		a = uint16(MaxBrightness)
	}
	return color.NRGBA{
		R: uint8(uint16(c.GetR()) * a / 255),
		G: uint8(uint16(c.GetG()) * a / 255),
		B: uint8(uint16(c.GetB()) * a / 255),
		A: 255,
	}
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	val := uint32(n) << off
	mask := uint32(0xFF) << off
	return (c &^ mask) | val
}

func getcolor(c uint32, off uint8) uint8 {
	return uint8(c >> off)
}

func (c *ColorVal) SetR(r uint8) { c.val = setcolor(c.val, r, RedOffset) }
func (c *ColorVal) SetG(g uint8) { c.val = setcolor(c.val, g, GreenOffset) }
func (c *ColorVal) SetB(b uint8) { c.val = setcolor(c.val, b, BlueOffset) }
func (c *ColorVal) SetA(a uint8) { c.val = setcolor(c.val, a, AlphaOffset) }

func (c ColorVal) GetR() uint8 { return getcolor(c.val, RedOffset) }
func (c ColorVal) GetG() uint8 { return getcolor(c.val, GreenOffset) }
func (c ColorVal) GetB() uint8 { return getcolor(c.val, BlueOffset) }
func (c ColorVal) GetA() uint8 { return getcolor(c.val, AlphaOffset) }

// Wheel maps h in [0,1) onto a fully saturated hue.
func Wheel(h float64) ColorVal {
	h = (h - math.Floor(h)) * 6
	switch {
	case h < 1.:
		return RGBA(255, uint8(255*h), 0, 255)
	case h < 2.:
		return RGBA(uint8(255*(2-h)), 255, 0, 255)
	case h < 3.:
		return RGBA(0, 255, uint8(255*(h-2)), 255)
	case h < 4.:
		return RGBA(0, uint8(255*(4-h)), 255, 255)
	case h < 5.:
		return RGBA(uint8(255*(h-4)), 0, 255, 255)
	default:
		return RGBA(255, 0, uint8(255*(6-h)), 255)
	}
}

// FadeTo caps the alpha of each LED along a descending ramp that starts at a.
func FadeTo(a uint8, cs ...*Led) {
	if len(cs) == 0 {
		return
	}
	step := int(a) / len(cs)
	for i, v := range cs {
		limit := int(a) - step*i
		if int(v.Color.GetA()) > limit {
			v.Color.SetA(uint8(limit))
		}
	}
}
