// Package windowsink hosts the renderer in a GLFW window and drives its
// surface lifecycle.
package windowsink

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/SnowmanTackler/RtspLibrary/lib/config"
	"github.com/SnowmanTackler/RtspLibrary/lib/renderer"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowSink struct {
	name   string
	cfg    config.WindowCfg
	Window *glfw.Window

	// AfterDraw runs on the render thread after every presented frame.
	AfterDraw func()

	waker waker
	dirty atomic.Bool
	log     *slog.Logger
}

func New(name string, cfg *config.WindowCfg) *WindowSink {
	return &WindowSink{
		name: name,
		cfg:   *cfg,
		waker: waker{post: glfw.PostEmptyEvent},
		log:   slog.Default().With(slog.String("module", name)),
	}
}

// Start opens the window and makes its GL context current on the calling
// thread, which must stay locked to its OS thread.
func (w *WindowSink) Start() error {
	if w.Window != nil {
		return nil
	}
	w.log.Debug("initializing window")
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}

	resizable := glfw.False
	if w.cfg.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(w.cfg.Width, w.cfg.Height, w.cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("could not create window: %w", err)
	}

	window.MakeContextCurrent()
	if w.cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w.Window = window
	w.waker.open()
	return nil
}

// RequestRender marks the window dirty and wakes the event loop. Safe to
// call from any goroutine.
func (w *WindowSink) RequestRender() {
	w.dirty.Store(true)
	w.waker.wake()
}

// Run drives r until the window is closed or ctx is cancelled. It only
// redraws when a frame arrived or the window needs repainting.
func (w *WindowSink) Run(ctx context.Context, r *renderer.Renderer) error {
	if w.Window == nil {
		return fmt.Errorf("window was not started")
	}
	defer w.close()

	err := r.OnSurfaceCreated()
	if err != nil {
		w.log.Error(fmt.Sprintf("renderer not ready, only clearing: %s", err))
	}
	r.OnSurfaceChanged(w.Window.GetFramebufferSize())

	w.Window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		r.OnSurfaceChanged(width, height)
		w.dirty.Store(true)
	})
	w.Window.SetRefreshCallback(func(_ *glfw.Window) {
		w.dirty.Store(true)
	})

	stop := context.AfterFunc(ctx, w.RequestRender)
	defer stop()

	w.dirty.Store(true)
	for !w.Window.ShouldClose() && ctx.Err() == nil {
		if w.dirty.Swap(false) {
			r.OnDrawFrame()
			w.Window.SwapBuffers()
			if w.AfterDraw != nil {
				w.AfterDraw()
			}
		}
		glfw.WaitEvents()
	}

	r.OnSurfaceDestroyed()
	return nil
}

func (w *WindowSink) close() {
	w.waker.shut(func() {
		w.Window.Destroy()
		w.Window = nil
		glfw.Terminate()
	})
}
