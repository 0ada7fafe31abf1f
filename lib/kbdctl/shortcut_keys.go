package kbdctl

import (
	"fmt"
	"log/slog"

	"github.com/SnowmanTackler/RtspLibrary/lib/sink/windowsink"
	"github.com/SnowmanTackler/RtspLibrary/lib/stats"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// SetupShortcutKeys binds Ctrl+Shift+Q to quit and S to log the current
// stats.
func SetupShortcutKeys(ws *windowsink.WindowSink, quit func(), st *stats.Stats) {
	ws.Window.SetKeyCallback(keyCallback(quit, st))
}

func keyCallback(quit func(), st *stats.Stats) glfw.KeyCallback {
	log := slog.Default().With(slog.String("module", "kbdctl"))

	return func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			if key == glfw.KeyQ &&
				mods&glfw.ModControl != 0 &&
				mods&glfw.ModShift != 0 {
				log.Info("told to quit, exiting")
				quit()
			}
		}
		if action == glfw.Press && key == glfw.KeyS && st != nil {
			s := st.Snapshot()
			log.Info(fmt.Sprintf(
				"%s: %d fps drawn, %.1f fps in, %d submitted, %d dropped, %d rejected, %d errors",
				s.State, s.FPS, s.InputFPS, s.FramesSubmitted, s.FramesDropped, s.FramesRejected, s.Errors,
			))
		}
	}
}
