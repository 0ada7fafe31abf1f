// Package source defines how frame producers hand frames to the viewer and
// how they recover when their upstream goes away.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SnowmanTackler/RtspLibrary/lib/metrics"
)

// FrameHandler receives decoded frames. pixels is only valid for the
// duration of the call.
type FrameHandler interface {
	OnFrame(pixels []byte, channels, width, height int) error
}

type FrameHandlerFunc func(pixels []byte, channels, width, height int) error

func (f FrameHandlerFunc) OnFrame(pixels []byte, channels, width, height int) error {
	return f(pixels, channels, width, height)
}

// Source produces frames until its context is cancelled or it gives up.
type Source interface {
	Name() string
	Run(ctx context.Context, h FrameHandler) error
}

// Session is one connection attempt. It reports whether any frame was
// delivered, which resets the backoff.
type Session func(ctx context.Context) (delivered bool, err error)

// Reconnect keeps running session until ctx is cancelled or the backoff runs
// out of retries. It returns ctx.Err() on cancellation and
// ErrRetriesExhausted, wrapping the last session error, otherwise.
func Reconnect(ctx context.Context, name string, b *Backoff, session Session) error {
	log := slog.Default().With(slog.String("module", name))
	reconnects := metrics.SourceReconnects.WithLabelValues(name)

	for {
		delivered, err := session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if delivered {
			b.Reset()
		}
		if err != nil {
			log.Warn(fmt.Sprintf("session ended: %s", err))
		} else {
			log.Info("session ended")
		}

		delay, ok := b.Next()
		if !ok {
			log.Error(fmt.Sprintf("giving up after %d attempts", b.Attempts()))
			if err == nil {
				return ErrRetriesExhausted
			}
			return fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
		}
		log.Info(fmt.Sprintf("reconnecting in %s (attempt %d)", delay, b.Attempts()))
		reconnects.Inc()

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}
