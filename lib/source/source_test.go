package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffDoubles(t *testing.T) {
	b := NewBackoff(time.Millisecond, 5*time.Millisecond, 0)
	var got []time.Duration
	for i := 0; i < 5; i++ {
		d, ok := b.Next()
		require.True(t, ok)
		got = append(got, d)
	}
	assert.Equal(t, []time.Duration{
		time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond,
		5 * time.Millisecond, 5 * time.Millisecond,
	}, got)
	assert.Equal(t, 5, b.Attempts())

	b.Reset()
	d, ok := b.Next()
	require.True(t, ok)
	assert.Equal(t, time.Millisecond, d)
}

func TestBackoffMaxRetries(t *testing.T) {
	b := NewBackoff(time.Millisecond, time.Millisecond, 2)
	_, ok := b.Next()
	assert.True(t, ok)
	_, ok = b.Next()
	assert.True(t, ok)
	_, ok = b.Next()
	assert.False(t, ok)
}

func TestNewBackoffDefaults(t *testing.T) {
	b := NewBackoff(0, 0, 0)
	assert.Equal(t, DefaultInitialDelay, b.Initial)
	assert.Equal(t, DefaultInitialDelay, b.Max)
}

func TestReconnectGivesUp(t *testing.T) {
	b := NewBackoff(time.Millisecond, time.Millisecond, 3)
	sessionErr := errors.New("connection refused")
	calls := 0

	err := Reconnect(context.Background(), t.Name(), b, func(ctx context.Context) (bool, error) {
		calls++
		return false, sessionErr
	})
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, sessionErr)
	assert.Equal(t, 4, calls)
}

func TestReconnectResetsAfterDelivery(t *testing.T) {
	b := NewBackoff(time.Millisecond, time.Millisecond, 2)
	calls := 0

	err := Reconnect(context.Background(), t.Name(), b, func(ctx context.Context) (bool, error) {
		calls++
		// without the reset the third session would already be refused
		return calls < 4 && calls%2 == 1, nil
	})
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 5, calls)
}

func TestReconnectStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewBackoff(time.Hour, time.Hour, 0)

	done := make(chan error)
	go func() {
		done <- Reconnect(ctx, t.Name(), b, func(ctx context.Context) (bool, error) {
			return true, nil
		})
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Reconnect did not return after cancel")
	}
}

func TestFrameHandlerFunc(t *testing.T) {
	var got []int
	h := FrameHandlerFunc(func(pixels []byte, channels, width, height int) error {
		got = []int{len(pixels), channels, width, height}
		return nil
	})
	require.NoError(t, h.OnFrame(make([]byte, 12), 3, 2, 2))
	assert.Equal(t, []int{12, 3, 2, 2}, got)
}
