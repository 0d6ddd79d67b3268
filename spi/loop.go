package spi

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/coreman2200/ledspi/fastspi"
	"github.com/rs/zerolog/log"
)

const DefaultFPS = 30

// Looper updates and renders a strip at a fixed frame rate.
type Looper struct {
	FPS int

	renderer *Renderer
	start    time.Time
	frames   int
	timeouts int
}

func NewLooper(r *Renderer, fps int) *Looper {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Looper{FPS: fps, renderer: r}
}

// Frames returns the number of frames rendered so far.
func (l *Looper) Frames() int {
	return l.frames
}

// Timeouts returns the number of frames dropped on a drain timeout.
func (l *Looper) Timeouts() int {
	return l.timeouts
}

// Start runs the loop until an interrupt signal arrives.
func (l *Looper) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)
	go func() {
		select {
		case sig := <-c:
			log.Info().Str("signal", sig.String()).Msg("aborting")
			cancel()
		case <-ctx.Done():
		}
	}()

	return l.Run(ctx)
}

// Run renders frames until ctx is done. A frame whose drain times out is
// dropped and logged; any other render error stops the loop.
func (l *Looper) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.FPS))
	defer ticker.Stop()

	l.start = time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			l.renderer.Structure.Update(t.Sub(l.start))
			err := l.renderer.Render()
			if errors.Is(err, fastspi.ErrTimeout) {
				l.timeouts++
				log.Warn().Err(err).Int("frame", l.frames).Msg("frame dropped")
				continue
			}
			if err != nil {
				return err
			}
			l.frames++
		}
	}
}
