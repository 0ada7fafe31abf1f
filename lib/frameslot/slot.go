// Package frameslot hands frames from a producer goroutine to the render
// thread.
package frameslot

import (
	"sync"

	"github.com/SnowmanTackler/RtspLibrary/lib/encdec"
	"github.com/SnowmanTackler/RtspLibrary/lib/metrics"
)

// Slot is a single-slot mailbox: a submit overwrites whatever frame has not
// been drained yet instead of queueing behind it. It is meant for live
// display, where a stale frame is worth nothing and a backlog only adds
// latency.
type Slot struct {
	sync.Mutex

	buf     []byte
	width   int
	height  int
	pending bool

	stats   Stats
	metrics metrics.StreamMetrics
}

type Stats struct {
	Submitted     uint64 `json:"submitted"`
	Drained       uint64 `json:"drained"`
	Dropped       uint64 `json:"dropped"`
	Reallocations uint64 `json:"reallocations"`
}

func New(name string) *Slot {
	return &Slot{metrics: metrics.NewStreamMetrics(name)}
}

// Submit copies pixels into the slot and marks it pending. The internal
// buffer is only reallocated when the frame size changes, and pixels may be
// reused by the caller as soon as Submit returns.
func (s *Slot) Submit(pixels []byte, width, height int) {
	s.Lock()
	defer s.Unlock()

	if s.buf == nil || len(s.buf) != len(pixels) {
		s.buf = make([]byte, len(pixels))
		s.stats.Reallocations++
	}
	copy(s.buf, pixels)
	s.width = width
	s.height = height

	if s.pending {
		s.stats.Dropped++
		s.metrics.FramesDropped.Inc()
	}
	s.pending = true
	s.stats.Submitted++
	s.metrics.FramesSubmitted.Inc()
}

// DrainIfPending returns the pending frame and clears the pending flag.
// The returned frame shares the slot's buffer: it stays valid until the
// next Submit, so callers that need it longer must hold the slot lock or
// Clone it.
func (s *Slot) DrainIfPending() (encdec.Frame, bool) {
	s.Lock()
	defer s.Unlock()

	if !s.pending {
		return encdec.Frame{}, false
	}
	s.pending = false
	s.stats.Drained++
	return encdec.Frame{
		Pixels:   s.buf,
		Width:    s.width,
		Height:   s.height,
		Channels: encdec.RGBChannels,
	}, true
}

// Snapshot copies the most recently submitted frame, whether or not it has
// been drained. It returns nil before the first submit.
func (s *Slot) Snapshot() *encdec.Frame {
	s.Lock()
	defer s.Unlock()

	if s.buf == nil {
		return nil
	}
	f := &encdec.Frame{
		Pixels:   make([]byte, len(s.buf)),
		Width:    s.width,
		Height:   s.height,
		Channels: encdec.RGBChannels,
	}
	copy(f.Pixels, s.buf)
	return f
}

func (s *Slot) Stats() Stats {
	s.Lock()
	defer s.Unlock()
	return s.stats
}
