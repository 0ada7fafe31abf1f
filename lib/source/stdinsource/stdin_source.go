// Package stdinsource reads raw rgb24 frames of a fixed size from a pipe.
package stdinsource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/SnowmanTackler/RtspLibrary/lib/config"
	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/source"
)

type StdinSource struct {
	name      string
	Width     int
	Height    int
	Rate      int
	frameSize int
	reader    io.Reader
	log       *slog.Logger
}

func New(name string, cfg *config.StdinSourceCfg) *StdinSource {
	return NewFromReader(name, cfg, os.Stdin)
}

func NewFromReader(name string, cfg *config.StdinSourceCfg, r io.Reader) *StdinSource {
	f := &StdinSource{
		name:      name,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Rate:      cfg.Rate,
		frameSize: cfg.FrameCfg.CalcBufSize(),
		log:       slog.Default().With(slog.String("module", name)),
	}
	f.reader = bufio.NewReaderSize(r, f.frameSize)
	return f
}

func (f *StdinSource) Name() string {
	return f.name
}

// Run delivers frames until the input ends or ctx is cancelled. A Rate of
// zero reads as fast as the input allows.
func (f *StdinSource) Run(ctx context.Context, h source.FrameHandler) error {
	frame := make([]byte, f.frameSize)
	var frameTime time.Duration
	if f.Rate > 0 {
		frameTime = time.Second / time.Duration(f.Rate)
	}
	ftime := time.Now()

	for {
		if frameTime > 0 {
			past := time.Since(ftime)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(frameTime - past):
			}
			ftime = time.Now()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, err := io.ReadFull(f.reader, frame)
		if errors.Is(err, io.EOF) {
			f.log.Info("input closed")
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not read from stdin: %w", err)
		}

		err = h.OnFrame(frame, encdec.RGBChannels, f.Width, f.Height)
		if err != nil {
			f.log.Warn(fmt.Sprintf("frame rejected: %s", err))
		}
	}
}
