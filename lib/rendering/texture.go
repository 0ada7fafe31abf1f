package rendering

import (
	"fmt"
	"log/slog"

	"github.com/SnowmanTackler/RtspLibrary/lib/metrics"
	"github.com/SnowmanTackler/RtspLibrary/lib/rendering/gpu"
)

// ResourceAllocationError means the GPU refused to (re)specify the texture
// storage.
type ResourceAllocationError struct {
	Width  int
	Height int
	Format gpu.PixelFormat
	Code   gpu.ErrorCode
}

func (e *ResourceAllocationError) Error() string {
	return fmt.Sprintf("could not allocate %dx%d %s texture: %s", e.Width, e.Height, e.Format, e.Code)
}

// Texture owns one 2D texture object. It remembers the size and format of
// the last image it was given so that frames of the same shape only update
// the pixels instead of reallocating the storage.
type Texture struct {
	dev    gpu.Device
	handle uint32
	filter gpu.Filter

	width  int
	height int
	format gpu.PixelFormat
	typ    gpu.PixelType

	log     *slog.Logger
	metrics metrics.TextureMetrics
	stats   TextureStats
}

type TextureStats struct {
	Allocations uint64 `json:"allocations"`
	Updates     uint64 `json:"updates"`
	UploadBytes uint64 `json:"upload_bytes"`
	Failures    uint64 `json:"failures"`
}

func NewTexture(name string, dev gpu.Device, filter gpu.Filter) *Texture {
	return &Texture{
		dev:     dev,
		filter:  filter,
		log:     slog.Default().With(slog.String("module", name)),
		metrics: metrics.NewTextureMetrics(name),
	}
}

// EnsureAllocated creates the texture object on first use and returns it.
func (t *Texture) EnsureAllocated() uint32 {
	if t.handle == 0 {
		t.handle = t.dev.GenTexture()
	}
	return t.handle
}

func (t *Texture) Width() int { return t.width }

func (t *Texture) Height() int { return t.height }

func (t *Texture) Format() gpu.PixelFormat { return t.format }

func (t *Texture) Stats() TextureStats { return t.stats }

// Empty is true until an image has been successfully written.
func (t *Texture) Empty() bool {
	return t.width == 0 || t.height == 0
}

func (t *Texture) shouldRemakeBuffer(width, height int, format gpu.PixelFormat, typ gpu.PixelType) bool {
	return t.width != width || t.height != height || t.format != format || t.typ != typ
}

// maxStaleErrors bounds how many pending error flags Write drains before an
// upload. GL keeps at most one flag per error kind.
const maxStaleErrors = 8

// Write uploads pixels into the texture. The texture is left unbound.
// When the storage has to be respecified and the GPU refuses, the previous
// size and format are kept so the old content can still be drawn.
func (t *Texture) Write(pixels []byte, width, height int, format gpu.PixelFormat) error {
	if format == gpu.Luminance {
		t.log.Warn("luminance textures are potentially unsupported")
	}

	typ := gpu.UnsignedByte
	handle := t.EnsureAllocated()

	// drop errors raised by earlier, unrelated calls
	for range maxStaleErrors {
		if t.dev.GetError() == gpu.NoError {
			break
		}
	}

	t.dev.BindTexture2D(handle)
	defer t.dev.BindTexture2D(0)

	if t.shouldRemakeBuffer(width, height, format, typ) {
		t.dev.SetTextureParameters(t.filter)
		t.dev.TexImage2D(int32(width), int32(height), format, typ, pixels)
		if code := t.dev.GetError(); code != gpu.NoError {
			t.stats.Failures++
			return &ResourceAllocationError{Width: width, Height: height, Format: format, Code: code}
		}
		t.width = width
		t.height = height
		t.format = format
		t.typ = typ
		t.stats.Allocations++
		t.metrics.Allocations.Inc()
		t.log.Debug(fmt.Sprintf("allocated %dx%d %s texture", width, height, format))
	} else {
		// storage of the right size already exists, only refresh the pixels
		t.dev.TexSubImage2D(int32(width), int32(height), format, typ, pixels)
		if code := t.dev.GetError(); code != gpu.NoError {
			t.stats.Failures++
			return fmt.Errorf("could not update %dx%d texture: %s", width, height, code)
		}
		t.stats.Updates++
		t.metrics.Updates.Inc()
	}

	t.stats.UploadBytes += uint64(len(pixels))
	t.metrics.UploadBytes.Add(float64(len(pixels)))
	return nil
}

// Release deletes the texture object. The next EnsureAllocated or Write
// starts over with a fresh one.
func (t *Texture) Release() {
	if t.handle == 0 {
		return
	}
	t.dev.DeleteTexture(t.handle)
	t.handle = 0
	t.width = 0
	t.height = 0
	t.format = 0
	t.typ = 0
}
