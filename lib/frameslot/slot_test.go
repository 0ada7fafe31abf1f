package frameslot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameOf(v byte, width, height int) []byte {
	buf := make([]byte, width*height*3)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func TestDrainEmpty(t *testing.T) {
	s := New(t.Name())
	_, ok := s.DrainIfPending()
	assert.False(t, ok)
	assert.Nil(t, s.Snapshot())
}

func TestLatestWins(t *testing.T) {
	s := New(t.Name())
	for i := 1; i <= 5; i++ {
		s.Submit(frameOf(byte(i), 2, 2), 2, 2)
	}

	f, ok := s.DrainIfPending()
	require.True(t, ok)
	assert.Equal(t, frameOf(5, 2, 2), f.Pixels)
	assert.Equal(t, 2, f.Width)
	assert.Equal(t, 2, f.Height)
	assert.Equal(t, 3, f.Channels)

	_, ok = s.DrainIfPending()
	assert.False(t, ok, "second drain without a submit must return nothing")

	stats := s.Stats()
	assert.Equal(t, uint64(5), stats.Submitted)
	assert.Equal(t, uint64(4), stats.Dropped)
	assert.Equal(t, uint64(1), stats.Drained)
}

func TestSubmitCopiesCallerBuffer(t *testing.T) {
	s := New(t.Name())
	buf := frameOf(1, 1, 1)
	s.Submit(buf, 1, 1)
	buf[0] = 99

	f, ok := s.DrainIfPending()
	require.True(t, ok)
	assert.Equal(t, byte(1), f.Pixels[0])
}

func TestBufferReallocatedOnlyOnSizeChange(t *testing.T) {
	s := New(t.Name())
	s.Submit(frameOf(1, 4, 4), 4, 4)
	s.Submit(frameOf(2, 4, 4), 4, 4)
	s.Submit(frameOf(3, 2, 8), 2, 8) // same byte count, different shape
	assert.Equal(t, uint64(1), s.Stats().Reallocations)

	s.Submit(frameOf(4, 8, 8), 8, 8)
	assert.Equal(t, uint64(2), s.Stats().Reallocations)

	f, ok := s.DrainIfPending()
	require.True(t, ok)
	assert.Equal(t, 8, f.Width)
	assert.Len(t, f.Pixels, 8*8*3)
}

func TestSnapshotSurvivesDrain(t *testing.T) {
	s := New(t.Name())
	s.Submit(frameOf(7, 2, 1), 2, 1)
	_, ok := s.DrainIfPending()
	require.True(t, ok)

	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, frameOf(7, 2, 1), snap.Pixels)

	s.Submit(frameOf(8, 2, 1), 2, 1)
	assert.Equal(t, byte(7), snap.Pixels[0], "snapshot must not alias the slot buffer")
}

func TestConcurrentSubmitAndDrain(t *testing.T) {
	s := New(t.Name())
	const n = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			s.Submit(frameOf(byte(i), 3, 3), 3, 3)
		}
	}()

	var drained uint64
	for s.Stats().Submitted < n {
		if _, ok := s.DrainIfPending(); ok {
			drained++
		}
		// a snapshot is taken under the lock, so it never mixes two submits
		if snap := s.Snapshot(); snap != nil {
			for _, b := range snap.Pixels {
				require.Equal(t, snap.Pixels[0], b)
			}
		}
	}
	wg.Wait()

	f, ok := s.DrainIfPending()
	if ok {
		drained++
		assert.Equal(t, byte((n-1)%256), f.Pixels[0])
	}

	stats := s.Stats()
	assert.Equal(t, uint64(n), stats.Submitted)
	assert.Equal(t, drained, stats.Drained)
	assert.Equal(t, stats.Submitted, stats.Drained+stats.Dropped)
}
