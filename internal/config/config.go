package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type SPI struct {
	Dev      string `yaml:"dev"`       // periph port name, "" for the first port, "sim" for no hardware
	ClockHz  int64  `yaml:"clock_hz"`  // peripheral input clock, e.g. 80000000
	Divider  uint32 `yaml:"divider"`   // bit rate = clock_hz / divider
	DataPin  uint8  `yaml:"data_pin"`  // 7 or 52
	ClockPin uint8  `yaml:"clock_pin"` // 5 or 45
	CS       string `yaml:"cs"`        // optional GPIO name driven as chip select
	CSActive string `yaml:"cs_active"` // "low" (default) | "high"
	DrainMs  int    `yaml:"drain_ms"`  // drain timeout
}

type Config struct {
	Chipset    string  `yaml:"chipset"` // ws2801 | lpd8806 | sm16716 | ws2812
	NumPixels  int     `yaml:"num_pixels"`
	ColorOrder string  `yaml:"color_order"`
	Brightness float64 `yaml:"brightness"`
	Dither     bool    `yaml:"dither"`
	Reverse    bool    `yaml:"reverse"`
	FPS        int     `yaml:"fps"`
	Effect     string  `yaml:"effect"` // rainbow | pulse | solid

	SPI SPI `yaml:"spi"`
}

// Default returns a configuration for a 60 pixel WS2801 strip on pins 7/5.
func Default() *Config {
	return &Config{
		Chipset:    "ws2801",
		NumPixels:  60,
		ColorOrder: "RGB",
		Brightness: 0.8,
		Dither:     true,
		FPS:        30,
		Effect:     "rainbow",
		SPI: SPI{
			ClockHz:  80000000,
			Divider:  16,
			DataPin:  7,
			ClockPin: 5,
			CSActive: "low",
			DrainMs:  10,
		},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks ranges. Pin mappings are checked when the output opens.
func (c *Config) Validate() error {
	var errs []error
	if c.NumPixels < 0 {
		errs = append(errs, fmt.Errorf("num_pixels must not be negative, got %d", c.NumPixels))
	}
	if c.Brightness < 0 || c.Brightness > 1 {
		errs = append(errs, fmt.Errorf("brightness must be within 0..1, got %g", c.Brightness))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.SPI.Divider == 0 {
		errs = append(errs, errors.New("spi.divider must be at least 1"))
	}
	if c.SPI.ClockHz <= 0 {
		errs = append(errs, fmt.Errorf("spi.clock_hz must be positive, got %d", c.SPI.ClockHz))
	}
	switch c.SPI.CSActive {
	case "", "low", "high":
	default:
		errs = append(errs, fmt.Errorf("spi.cs_active must be low or high, got %q", c.SPI.CSActive))
	}
	return errors.Join(errs...)
}
