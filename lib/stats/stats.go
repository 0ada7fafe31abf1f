package stats

import (
	"sync"
	"time"

	"github.com/SnowmanTackler/RtspLibrary/lib/renderer"
)

// Snapshot is what the API reports.
type Snapshot struct {
	State              string  `json:"state"`
	FPS                uint64  `json:"fps"`
	InputFPS           float64 `json:"input_fps"`
	FramesSubmitted    uint64  `json:"frames_submitted"`
	FramesDropped      uint64  `json:"frames_dropped"`
	FramesRejected     uint64  `json:"frames_rejected"`
	FramesDrawn        uint64  `json:"frames_drawn"`
	TextureAllocations uint64  `json:"texture_allocations"`
	TextureUpdates     uint64  `json:"texture_updates"`
	TextureUpload      uint64  `json:"texture_upload"`
	TextureUploadAvgMb float64 `json:"texture_upload_avg_mb"`
	Errors             uint64  `json:"errors"`
	FrameWidth         int     `json:"frame_width"`
	FrameHeight        int     `json:"frame_height"`
	Uptime             float64 `json:"uptime"`
	WsClients          int     `json:"ws_clients"`
}

type Stats struct {
	mu   sync.Mutex
	snap Snapshot

	frameCounter uint64
	frameTimer   time.Time
	start        time.Time
}

func New() *Stats {
	s := &Stats{}
	s.start = time.Now()
	s.frameTimer = s.start
	return s
}

// Update is called by the render loop after every draw.
func (s *Stats) Update(r renderer.Stats, inputFPS float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frameCounter++
	if time.Since(s.frameTimer) > 1*time.Second {
		s.snap.FPS = s.frameCounter
		s.frameCounter = 0
		s.frameTimer = time.Now()
	}

	s.snap.State = r.State
	s.snap.InputFPS = inputFPS
	s.snap.FramesSubmitted = r.Slot.Submitted
	s.snap.FramesDropped = r.Slot.Dropped
	s.snap.FramesRejected = r.Rejected
	s.snap.FramesDrawn = r.Draws
	s.snap.TextureAllocations = r.Texture.Allocations
	s.snap.TextureUpdates = r.Texture.Updates
	s.snap.TextureUpload = r.Texture.UploadBytes
	s.snap.Errors = r.Errors
	s.snap.FrameWidth = r.Frame.W
	s.snap.FrameHeight = r.Frame.H
}

func (s *Stats) SetWsClients(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.WsClients = n
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snap
	snap.Uptime = float64(time.Since(s.start).Nanoseconds()) / 1e9
	if snap.Uptime > 0 {
		snap.TextureUploadAvgMb = float64(snap.TextureUpload) / (snap.Uptime * 1024 * 1024)
	}
	return snap
}
