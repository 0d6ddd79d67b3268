package spi

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/coreman2200/ledspi/chipset"
	"github.com/coreman2200/ledspi/fastspi"
	"github.com/coreman2200/ledspi/internal/config"
	"github.com/coreman2200/ledspi/model"
	"github.com/coreman2200/ledspi/pinmux"
	"github.com/coreman2200/ledspi/regs"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

// NRZFreq is the bus rate used for clockless ws2812 strips.
const NRZFreq = 2500 * physic.KiloHertz

// Renderer shows a strip each frame through one backend: a clocked chipset
// over the hardware SPI output, a clockless NRZ encoder, or the console.
type Renderer struct {
	Structure *model.Strip
	Spi       bool

	out    fastspi.SPI
	chip   chipset.Chipset
	drawer display.Drawer
	order  model.Order
	scale  uint8
	dither bool
	frame  uint8
	closer func() error
}

// OpenRenderer opens the configured SPI port. When no port is available the
// strip is printed at the console instead.
func OpenRenderer(cfg *config.Config, s *model.Strip) (*Renderer, error) {
	if cfg.SPI.Dev == "sim" {
		return NewConsoleRenderer(s), nil
	}
	p, err := spireg.Open(cfg.SPI.Dev)
	if err != nil {
		log.Warn().Err(err).Str("dev", cfg.SPI.Dev).Msg("failed to find a SPI port, printing at the console")
		return NewConsoleRenderer(s), nil
	}
	r, err := NewRenderer(p, cfg, s)
	if err != nil {
		p.Close()
		return nil, err
	}
	r.closer = p.Close
	return r, nil
}

// NewConsoleRenderer prints the strip as a row of colored cells.
func NewConsoleRenderer(s *model.Strip) *Renderer {
	return &Renderer{Structure: s, drawer: screen.New(s.Len())}
}

// NewRenderer renders over an already opened periph port.
func NewRenderer(p spi.Port, cfg *config.Config, s *model.Strip) (*Renderer, error) {
	if strings.EqualFold(cfg.Chipset, "ws2812") {
		d, err := nrzled.NewSPI(p, &nrzled.Opts{
			NumPixels: s.Len(),
			Channels:  3,
			Freq:      NRZFreq,
		})
		if err != nil {
			return nil, fmt.Errorf("spi: nrzled: %w", err)
		}
		return &Renderer{Structure: s, Spi: true, drawer: d}, nil
	}
	bus := regs.NewPeriph(p, physic.Frequency(cfg.SPI.ClockHz)*physic.Hertz)
	return NewBusRenderer(bus, cfg, s)
}

// NewBusRenderer renders a clocked chipset over bus.
func NewBusRenderer(bus regs.Bus, cfg *config.Config, s *model.Strip) (*Renderer, error) {
	chip, err := chipset.ByName(cfg.Chipset)
	if err != nil {
		return nil, err
	}
	order, err := model.ParseOrder(cfg.ColorOrder)
	if err != nil {
		return nil, err
	}
	opts := &fastspi.Opts{
		Divider:      cfg.SPI.Divider,
		DrainTimeout: time.Duration(cfg.SPI.DrainMs) * time.Millisecond,
	}
	if cfg.SPI.CS != "" {
		pin := gpioreg.ByName(cfg.SPI.CS)
		if pin == nil {
			return nil, fmt.Errorf("spi: unknown chip select pin %q", cfg.SPI.CS)
		}
		opts.Select = &fastspi.PinSelect{Pin: pin, ActiveHigh: cfg.SPI.CSActive == "high"}
	}
	out, err := fastspi.Open(bus, pinmux.Pin(cfg.SPI.DataPin), pinmux.Pin(cfg.SPI.ClockPin), opts)
	if err != nil {
		return nil, err
	}
	if err := out.Init(); err != nil {
		return nil, err
	}
	log.Info().
		Str("chipset", chip.Name()).
		Str("order", order.String()).
		Str("rate", out.BitRate().String()).
		Int("pixels", s.Len()).
		Msg("spi output ready")
	return &Renderer{
		Structure: s,
		Spi:       true,
		out:       out,
		chip:      chip,
		order:     order,
		scale:     uint8(math.Round(cfg.Brightness * 255)),
		dither:    cfg.Dither,
	}, nil
}

// Render shows the strip's current colors.
func (r *Renderer) Render() error {
	if r.drawer != nil {
		if err := r.drawer.Draw(r.drawer.Bounds(), r.Structure.Image(), image.Point{}); err != nil {
			return err
		}
		if !r.Spi {
			fmt.Printf("\n")
		}
		return nil
	}
	src := model.NewController(r.Structure.Pixels(), r.order, r.scale, r.dither, r.frame)
	r.frame++
	return r.chip.Show(r.out, src)
}

// Clear blanks the strip and releases the port.
func (r *Renderer) Clear() error {
	r.Structure.Clear()
	err := r.Render()
	if r.drawer != nil {
		err = errors.Join(err, r.drawer.Halt())
	}
	if r.closer != nil {
		err = errors.Join(err, r.closer())
		r.closer = nil
	}
	return err
}
