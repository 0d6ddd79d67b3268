package model

import (
	"image"
	"image/color"
	"math"
	"time"
)

type Led struct {
	index     int
	Color     ColorVal
	baseColor ColorVal
}

func (l *Led) Index() int {
	return l.index
}

func (l *Led) SetColor(cv ColorVal) {
	l.Color = cv
}

// ScaleColor scales the LED's alpha by s in [0,1]; other values are ignored.
func (l *Led) ScaleColor(s float64) {
	if s > 1.0 || s < 0.0 {
		return
	}
	l.Color.SetA(uint8(float64(l.Color.GetA()) * s))
}

// Effect animates a strip; t is the time since the animation started.
type Effect func(s *Strip, t time.Duration)

// Strip is a chain of LEDs in wiring order. A reversed strip is wired from
// its far end.
type Strip struct {
	Reverse bool
	Effect  Effect

	leds      []*Led
	baseColor ColorVal
}

func NewStrip(n int, base ColorVal) *Strip {
	s := &Strip{baseColor: base, leds: make([]*Led, n)}
	for i := range s.leds {
		s.leds[i] = &Led{index: i, Color: base, baseColor: base}
	}
	return s
}

func (s *Strip) Len() int {
	return len(s.leds)
}

// Leds returns the LEDs in the order their data goes on the wire.
func (s *Strip) Leds() []*Led {
	out := make([]*Led, len(s.leds))
	copy(out, s.leds)
	if s.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func (s *Strip) Led(i int) *Led {
	return s.leds[i]
}

func (s *Strip) SetColor(cv ColorVal) {
	for _, v := range s.leds {
		v.SetColor(cv)
	}
}

func (s *Strip) ScaleColor(ss float64) {
	for _, v := range s.leds {
		v.ScaleColor(ss)
	}
}

// Clear turns every LED off.
func (s *Strip) Clear() {
	s.SetColor(NewColor(0))
}

// Update runs the strip's effect, if any.
func (s *Strip) Update(t time.Duration) {
	if s.Effect != nil {
		s.Effect(s, t)
	}
}

// Pixels returns the wire-ordered colors after per-LED brightness.
func (s *Strip) Pixels() []color.NRGBA {
	ls := s.Leds()
	out := make([]color.NRGBA, len(ls))
	for i, v := range ls {
		out[i] = v.Color.ToRGB()
	}
	return out
}

// Image renders the strip as a single row, as expected by display drawers.
func (s *Strip) Image() *image.NRGBA {
	px := s.Pixels()
	im := image.NewNRGBA(image.Rect(0, 0, len(px), 1))
	for x, c := range px {
		im.SetNRGBA(x, 0, c)
	}
	return im
}

// Rainbow scrolls the hue wheel along the strip, one turn per period.
func Rainbow(period time.Duration) Effect {
	return func(s *Strip, t time.Duration) {
		n := float64(len(s.leds))
		phase := float64(t%period) / float64(period)
		for i, v := range s.leds {
			v.SetColor(Wheel(phase + float64(i)/n))
		}
	}
}

// Pulse breathes the base color's alpha, with a phase offset along the strip.
func Pulse(period time.Duration) Effect {
	return func(s *Strip, t time.Duration) {
		rad := 2 * math.Pi * float64(t%period) / float64(period)
		n := float64(len(s.leds))
		for i, v := range s.leds {
			c := v.baseColor
			a := (1 + math.Cos(rad+2*math.Pi*float64(i)/n)) / 2
			c.SetA(uint8(float64(c.GetA()) * a))
			v.SetColor(c)
		}
	}
}

// Solid holds every LED at c.
func Solid(c ColorVal) Effect {
	return func(s *Strip, t time.Duration) {
		s.SetColor(c)
	}
}
