package renderer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/utils"
)

// Listener delivers frames from a source to a Renderer.
type Listener struct {
	renderer *Renderer
	log      *slog.Logger

	mu    sync.Mutex
	timer utils.DeltaTimer
	fps   float64
}

func NewListener(r *Renderer) *Listener {
	return &Listener{
		renderer: r,
		log:      slog.Default().With(slog.String("module", r.cfg.Name+"/listener")),
	}
}

func (l *Listener) OnFrame(pixels []byte, channels, width, height int) error {
	l.mu.Lock()
	fps := utils.Rate(l.timer.Next())
	l.fps = fps
	l.mu.Unlock()

	l.log.Debug(fmt.Sprintf("frame: channels = %d, width = %d, height = %d, fps = %.1f", channels, width, height, fps))

	// SubmitFrame assumes RGB, so catch other channel counts here
	if err := encdec.Validate(pixels, channels, width, height); err != nil {
		l.renderer.reject()
		return err
	}
	return l.renderer.SubmitFrame(pixels, width, height)
}

// FPS is the input rate measured between the two most recent frames.
func (l *Listener) FPS() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fps
}
