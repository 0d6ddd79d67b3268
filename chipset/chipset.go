// Package chipset encodes the wire protocols of clocked LED driver chips on
// top of a fastspi output.
package chipset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coreman2200/ledspi/fastspi"
)

// Chipset shows one frame of pixels on a strip.
type Chipset interface {
	Name() string
	Show(out fastspi.SPI, src fastspi.PixelSource) error
}

var registry = map[string]Chipset{}

func register(c Chipset) {
	registry[c.Name()] = c
}

func init() {
	register(WS2801{})
	register(LPD8806{})
	register(SM16716{})
}

// ByName returns the chipset registered under name, ignoring case.
func ByName(name string) (Chipset, error) {
	if c, ok := registry[strings.ToLower(name)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("chipset: unknown chipset %q (have %s)", name, strings.Join(Names(), ", "))
}

// Names lists the registered chipsets.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WS2801 takes raw channel bytes with no framing; a pause in the clock
// latches the data.
type WS2801 struct{}

func (WS2801) Name() string { return "ws2801" }

func (WS2801) Show(out fastspi.SPI, src fastspi.PixelSource) error {
	return out.WritePixels(0, fastspi.Nop{}, src)
}

// LPD8806 carries 7 bits per channel with the high bit set, and latches on a
// run of zero bytes after the last pixel.
type LPD8806 struct{}

func (LPD8806) Name() string { return "lpd8806" }

func (l LPD8806) Show(out fastspi.SPI, src fastspi.PixelSource) error {
	return out.WritePixels(0, l, src)
}

// Adjust halves b into 7 bits, rounding mid-range values up so that 1..253
// never collapse onto their neighbor below.
func (LPD8806) Adjust(b byte) byte {
	v := (b >> 1) | 0x80
	if b != 0 && b < 254 {
		v++
	}
	return v
}

// PostBlock writes one latch byte per 64 channel bytes, rounded up.
func (LPD8806) PostBlock(w fastspi.RawWriter, n int) error {
	return w.WriteBytesValueRaw(0, LPD8806LatchBytes(n))
}

// LPD8806LatchBytes is the number of zero bytes that latch n pixels.
func LPD8806LatchBytes(n int) int {
	return (n*3 + 63) >> 6
}

// SM16716 expects a run of at least 50 zero bits, then for every pixel a
// single 1 start bit followed by 24 color bits. The peripheral moves whole
// bytes, so the frame is packed into a bit stream and sent as one
// transaction.
type SM16716 struct{}

const (
	// SM16716HeaderBits is the minimum zero run that starts a frame.
	SM16716HeaderBits = 50
	// SM16716PixelBits is one start bit plus three 8-bit channels.
	SM16716PixelBits = 25
)

func (SM16716) Name() string { return "sm16716" }

func (SM16716) Show(out fastspi.SPI, src fastspi.PixelSource) error {
	return out.WriteBytes(SM16716Frame(src))
}

// SM16716Frame packs src into a frame. The header is lengthened at the front
// so that the last pixel ends on a byte boundary and no stray clocks follow
// it.
func SM16716Frame(src fastspi.PixelSource) []byte {
	bits := SM16716HeaderBits + src.Len()*SM16716PixelBits
	pad := (8 - bits%8) % 8
	buf := make([]byte, (bits+pad)/8)
	pos := pad + SM16716HeaderBits
	for src.Has(1) && pos < len(buf)*8 {
		buf[pos/8] |= 0x80 >> (pos % 8)
		pos++
		for _, v := range [3]byte{src.LoadAndScale0(), src.LoadAndScale1(), src.LoadAndScale2()} {
			putBits(buf, pos, v)
			pos += 8
		}
		src.AdvanceData()
		src.StepDithering()
	}
	return buf
}

// putBits writes v MSB first starting at bit pos of buf.
func putBits(buf []byte, pos int, v byte) {
	i, sh := pos/8, pos%8
	buf[i] |= v >> sh
	if sh != 0 {
		buf[i+1] |= v << (8 - sh)
	}
}

var _ fastspi.Adjuster = LPD8806{}
