package main

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/coreman2200/ledspi/internal/config"
	"github.com/coreman2200/ledspi/model"
	"github.com/coreman2200/ledspi/spi"
)

func main() {
	// ---- Flags (config.yaml overrides where set) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		chip       = flag.String("chipset", "", "chipset: ws2801 | lpd8806 | sm16716 | ws2812")
		pixels     = flag.Int("n", 0, "number of pixels")
		dev        = flag.String("dev", "", "SPI port name, or sim for the console")
		effect     = flag.String("effect", "", "effect: rainbow | pulse | solid")
		fps        = flag.Int("fps", 0, "target frames per second")
		debug      = flag.Bool("debug", false, "log at debug level")
		save       = flag.Bool("save", false, "write the effective config back to -config and exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	if *chip != "" {
		cfg.Chipset = *chip
	}
	if *pixels > 0 {
		cfg.NumPixels = *pixels
	}
	if *dev != "" {
		cfg.SPI.Dev = *dev
	}
	if *effect != "" {
		cfg.Effect = *effect
	}
	if *fps > 0 {
		cfg.FPS = *fps
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	if *save {
		if err := config.Save(*configPath, cfg); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config save failed")
		}
		log.Info().Str("path", *configPath).Msg("config saved")
		return
	}

	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("host init failed")
	}

	base := model.NewColor(model.DefaultColor)
	s := model.NewStrip(cfg.NumPixels, base)
	s.Reverse = cfg.Reverse
	switch strings.ToLower(cfg.Effect) {
	case "pulse":
		s.Effect = model.Pulse(2 * time.Second)
	case "solid":
		s.Effect = model.Solid(base)
	default:
		s.Effect = model.Rainbow(5 * time.Second)
	}

	r, err := spi.OpenRenderer(cfg, s)
	if err != nil {
		log.Fatal().Err(err).Msg("renderer init failed")
	}
	defer func() {
		if err := r.Clear(); err != nil {
			log.Warn().Err(err).Msg("clear failed")
		}
	}()

	log.Info().Str("chipset", cfg.Chipset).Int("pixels", cfg.NumPixels).Int("fps", cfg.FPS).Msg("running; ctrl+c to stop")
	if err := spi.NewLooper(r, cfg.FPS).Start(); err != nil {
		log.Error().Err(err).Msg("render loop stopped")
	}
}
