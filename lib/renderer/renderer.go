// Package renderer draws the most recent frame, letterboxed, into the
// window surface.
//
// A producer goroutine calls SubmitFrame at whatever rate frames arrive.
// The render thread, owned by the host driver, calls the surface lifecycle
// methods in order: OnSurfaceCreated, then any number of OnSurfaceChanged
// and OnDrawFrame, then OnSurfaceDestroyed. Only the lifecycle methods touch
// the GPU.
package renderer

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/frameslot"
	"github.com/SnowmanTackler/RtspLibrary/lib/geometry"
	"github.com/SnowmanTackler/RtspLibrary/lib/metrics"
	"github.com/SnowmanTackler/RtspLibrary/lib/rendering"
	"github.com/SnowmanTackler/RtspLibrary/lib/rendering/gpu"
	"github.com/SnowmanTackler/RtspLibrary/lib/rendering/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

const f32 = 4

type State int

const (
	Uninitialized State = iota
	SurfaceReady
	Rendering
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case SurfaceReady:
		return "surface-ready"
	case Rendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Redrawer asks the host driver for another OnDrawFrame. It must be safe to
// call from any goroutine and must not block.
type Redrawer interface {
	RequestRender()
}

type RedrawFunc func()

func (f RedrawFunc) RequestRender() { f() }

type Config struct {
	Name string
	// Background fills the letterbox bars once the pipeline is up.
	Background color.RGBA
	// Unconfigured is shown while, or if, setting up the pipeline fails.
	Unconfigured color.RGBA
	Shader       shaders.ShaderData
	Filter       gpu.Filter
}

func DefaultConfig() Config {
	return Config{
		Name:         "renderer",
		Background:   color.RGBA{A: 0xff},
		Unconfigured: color.RGBA{R: 0xff, A: 0xff},
		Shader:       shaders.ShaderData{GLSLVersion: shaders.DefaultGLSLVersion},
		Filter:       gpu.Nearest,
	}
}

type Renderer struct {
	cfg    Config
	dev    gpu.Device
	redraw Redrawer
	log    *slog.Logger

	// mu guards everything shared with the producer: the slot, the
	// viewport and projection, and the stats read by the API. The draw
	// holds it from drain to draw call so an update never interleaves with
	// a half-finished draw.
	mu         sync.Mutex
	slot       *frameslot.Slot
	viewport   geometry.Size
	projection mgl32.Mat4
	lastFit    geometry.Rect
	hasFit     bool
	state      State
	setupErr   error
	stats      Stats

	// render thread only
	texture  *rendering.Texture
	pipeline *shaders.Pipeline
	vao      uint32
	posVBO   uint32
	texVBO   uint32

	metrics metrics.StreamMetrics
}

type Stats struct {
	State    string                 `json:"state"`
	Slot     frameslot.Stats        `json:"slot"`
	Texture  rendering.TextureStats `json:"texture"`
	Draws    uint64                 `json:"draws"`
	Rejected uint64                 `json:"rejected"`
	Errors   uint64                 `json:"errors"`
	Viewport geometry.Size          `json:"viewport"`
	Frame    geometry.Size          `json:"frame"`
	Fit      geometry.Rect          `json:"fit"`
}

func New(cfg Config, dev gpu.Device, redraw Redrawer) *Renderer {
	if redraw == nil {
		redraw = RedrawFunc(func() {})
	}
	if cfg.Filter == 0 {
		cfg.Filter = gpu.Nearest
	}
	return &Renderer{
		cfg:     cfg,
		dev:     dev,
		redraw:  redraw,
		log:     slog.Default().With(slog.String("module", cfg.Name)),
		slot:    frameslot.New(cfg.Name),
		metrics: metrics.NewStreamMetrics(cfg.Name),
	}
}

// SubmitFrame hands a packed RGB frame to the render thread and asks for a
// redraw. It never waits for the frame to be drawn: a frame that is still
// pending is replaced. pixels is copied, the caller may reuse it.
func (r *Renderer) SubmitFrame(pixels []byte, width, height int) error {
	err := encdec.Validate(pixels, encdec.RGBChannels, width, height)
	if err != nil {
		r.reject()
		return err
	}

	r.mu.Lock()
	r.slot.Submit(pixels, width, height)
	r.mu.Unlock()

	r.redraw.RequestRender()
	return nil
}

func (r *Renderer) reject() {
	r.mu.Lock()
	r.stats.Rejected++
	r.mu.Unlock()
	r.metrics.FramesRejected.Inc()
}

func clearColour(dev gpu.Device, c color.RGBA) {
	dev.ClearColor(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
}

// OnSurfaceCreated builds every GPU resource from scratch. Handles from a
// previous surface are never reused. If the shaders do not build, the
// renderer stays in the Uninitialized state and only clears the surface.
func (r *Renderer) OnSurfaceCreated() error {
	// a new context invalidates whatever we held, so forget it without
	// deleting
	r.texture = nil
	r.pipeline = nil
	r.vao, r.posVBO, r.texVBO = 0, 0, 0

	clearColour(r.dev, r.cfg.Unconfigured)
	r.dev.DisableDepthTest()

	pipeline, err := shaders.Build(r.dev, &r.cfg.Shader)
	if err != nil {
		r.log.Error(fmt.Sprintf("could not set up shader pipeline: %s", err))
		r.countError(err)
		r.mu.Lock()
		r.state = Uninitialized
		r.setupErr = err
		r.mu.Unlock()
		return err
	}

	r.pipeline = pipeline
	r.texture = rendering.NewTexture(r.cfg.Name, r.dev, r.cfg.Filter)
	r.vao = r.dev.GenVertexArray()
	r.posVBO = r.dev.GenBuffer()
	r.texVBO = r.dev.GenBuffer()

	clearColour(r.dev, r.cfg.Background)

	r.mu.Lock()
	r.state = SurfaceReady
	r.setupErr = nil
	r.mu.Unlock()

	r.log.Info("surface ready")
	return nil
}

// OnSurfaceChanged records the new viewport and recomputes the projection.
func (r *Renderer) OnSurfaceChanged(width, height int) {
	r.dev.Viewport(0, 0, int32(width), int32(height))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = geometry.Size{W: width, H: height}
	r.projection = geometry.Ortho(width, height)
	r.log.Debug(fmt.Sprintf("surface changed to %dx%d", width, height))
}

// OnDrawFrame uploads the pending frame, if any, and draws the current
// texture. Errors never escape a frame: they are logged and the previous
// texture keeps being shown.
func (r *Renderer) OnDrawFrame() {
	r.dev.Clear()

	if !r.pipeline.Valid() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error(fmt.Sprintf("recovered from panic while drawing: %v", rec))
			r.stats.Errors++
			metrics.RenderError(r.cfg.Name, "panic")
		}
	}()

	if frame, ok := r.slot.DrainIfPending(); ok {
		err := r.texture.Write(frame.Pixels, frame.Width, frame.Height, gpu.RGB)
		if err != nil {
			r.log.Error(fmt.Sprintf("could not update texture, keeping the previous frame: %s", err))
			r.stats.Errors++
			r.countError(err)
		}
	}
	r.stats.Texture = r.texture.Stats()
	r.stats.Frame = geometry.Size{W: r.texture.Width(), H: r.texture.Height()}

	if r.viewport.Empty() || r.texture.Empty() {
		return
	}

	rect := geometry.Fit(r.stats.Frame, r.viewport)
	r.lastFit = rect
	r.hasFit = true

	r.pipeline.Use()

	r.dev.ActiveTexture(0)
	r.pipeline.SetImageUnit(0)
	r.dev.BindTexture2D(r.texture.EnsureAllocated())

	r.pipeline.SetProjection(&r.projection)

	positions := geometry.QuadPositions(rect)
	texCoords := geometry.QuadTexCoords()

	r.dev.BindVertexArray(r.vao)
	r.bindAttribute(r.texVBO, r.pipeline.AttribTexturePosition, texCoords[:])
	r.bindAttribute(r.posVBO, r.pipeline.AttribPosition, positions[:])

	r.dev.DrawArrays(gpu.TriangleStrip, 0, 4)

	r.dev.ActiveTexture(0)
	r.dev.BindTexture2D(0)
	r.dev.BindVertexArray(0)
	r.dev.UseProgram(0)

	r.state = Rendering
	r.stats.Draws++
	r.metrics.FramesDrawn.Inc()
}

func (r *Renderer) bindAttribute(buffer uint32, location int32, data []float32) {
	r.dev.StreamArrayBuffer(buffer, data)
	r.dev.EnableVertexAttribArray(uint32(location))
	// two floats per vertex, tightly packed
	r.dev.VertexAttribPointer(uint32(location), 2, 2*f32, 0)
}

// OnSurfaceDestroyed releases the texture, program and vertex buffers. It
// must run while the context is still current. Calling it again, or before
// OnSurfaceCreated, does nothing.
func (r *Renderer) OnSurfaceDestroyed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.texture != nil {
		r.texture.Release()
		r.texture = nil
	}
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	if r.posVBO != 0 {
		r.dev.DeleteBuffer(r.posVBO)
		r.posVBO = 0
	}
	if r.texVBO != 0 {
		r.dev.DeleteBuffer(r.texVBO)
		r.texVBO = 0
	}
	if r.vao != 0 {
		r.dev.DeleteVertexArray(r.vao)
		r.vao = 0
	}
	r.hasFit = false
	r.state = Uninitialized
	r.log.Info("surface destroyed")
}

func (r *Renderer) countError(err error) {
	var compileErr *shaders.ShaderCompileError
	var linkErr *shaders.ShaderLinkError
	var allocErr *rendering.ResourceAllocationError
	kind := "other"
	switch {
	case errors.As(err, &compileErr):
		kind = "shader_compile"
	case errors.As(err, &linkErr):
		kind = "shader_link"
	case errors.As(err, &allocErr):
		kind = "resource_allocation"
	}
	metrics.RenderError(r.cfg.Name, kind)
}

func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SetupError is the reason the last OnSurfaceCreated failed, if it did.
func (r *Renderer) SetupError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setupErr
}

// LastFit is the rectangle of the most recent draw call.
func (r *Renderer) LastFit() (geometry.Rect, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFit, r.hasFit
}

func (r *Renderer) Projection() mgl32.Mat4 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projection
}

// Snapshot copies the most recently submitted frame, or returns nil.
func (r *Renderer) Snapshot() *encdec.Frame {
	return r.slot.Snapshot()
}

func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats
	s.State = r.state.String()
	s.Slot = r.slot.Stats()
	s.Viewport = r.viewport
	s.Fit = r.lastFit
	return s
}
