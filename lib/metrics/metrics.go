package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtspview_frames_submitted_total",
		Help: "Total number of frames handed to the renderer by the producer",
	}, []string{"name"})
	FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtspview_frames_dropped_total",
		Help: "Total number of frames overwritten before the render thread consumed them",
	}, []string{"name"})
	FramesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtspview_frames_rejected_total",
		Help: "Total number of frames rejected because their size did not match their dimensions",
	}, []string{"name"})
	FramesDrawn = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtspview_frames_drawn_total",
		Help: "Total number of draw calls issued",
	}, []string{"name"})
	TextureAllocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtspview_texture_allocations_total",
		Help: "Total number of full texture (re)specifications",
	}, []string{"name"})
	TextureUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtspview_texture_updates_total",
		Help: "Total number of in-place texture updates",
	}, []string{"name"})
	TextureUploadBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtspview_texture_upload_bytes_total",
		Help: "Total number of pixel bytes sent to the GPU",
	}, []string{"name"})
	RenderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtspview_render_errors_total",
		Help: "Total number of errors caught at the frame boundary, by kind",
	}, []string{"name", "kind"})
	SourceReconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rtspview_source_reconnects_total",
		Help: "Total number of producer reconnection attempts",
	}, []string{"name"})
)

type StreamMetrics struct {
	FramesSubmitted prometheus.Counter
	FramesDropped   prometheus.Counter
	FramesRejected  prometheus.Counter
	FramesDrawn     prometheus.Counter
}

func NewStreamMetrics(name string) StreamMetrics {
	s := StreamMetrics{
		FramesSubmitted: FramesSubmitted.WithLabelValues(name),
		FramesDropped:   FramesDropped.WithLabelValues(name),
		FramesRejected:  FramesRejected.WithLabelValues(name),
		FramesDrawn:     FramesDrawn.WithLabelValues(name),
	}
	s.FramesSubmitted.Add(0)
	s.FramesDropped.Add(0)
	s.FramesRejected.Add(0)
	s.FramesDrawn.Add(0)
	return s
}

type TextureMetrics struct {
	Allocations prometheus.Counter
	Updates     prometheus.Counter
	UploadBytes prometheus.Counter
}

func NewTextureMetrics(name string) TextureMetrics {
	t := TextureMetrics{
		Allocations: TextureAllocations.WithLabelValues(name),
		Updates:     TextureUpdates.WithLabelValues(name),
		UploadBytes: TextureUploadBytes.WithLabelValues(name),
	}
	t.Allocations.Add(0)
	t.Updates.Add(0)
	t.UploadBytes.Add(0)
	return t
}

// RenderError counts one error of the given kind for the named renderer.
func RenderError(name, kind string) {
	RenderErrors.WithLabelValues(name, kind).Inc()
}

// Handler should usually be mounted at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
