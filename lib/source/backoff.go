package source

import (
	"context"
	"errors"
	"time"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

const (
	DefaultInitialDelay = 500 * time.Millisecond
	DefaultMaxDelay     = 30 * time.Second
)

// Backoff hands out exponentially growing delays, starting at Initial and
// capped at Max. After MaxRetries delays it refuses; zero means retry
// forever.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int

	attempts int
	current  time.Duration
}

func NewBackoff(initial, max time.Duration, maxRetries int) *Backoff {
	if initial <= 0 {
		initial = DefaultInitialDelay
	}
	if max < initial {
		max = initial
	}
	return &Backoff{Initial: initial, Max: max, MaxRetries: maxRetries}
}

func (b *Backoff) Next() (time.Duration, bool) {
	if b.MaxRetries > 0 && b.attempts >= b.MaxRetries {
		return 0, false
	}
	b.attempts++

	if b.current == 0 {
		b.current = b.Initial
	} else {
		b.current *= 2
	}
	if b.current > b.Max {
		b.current = b.Max
	}
	return b.current, true
}

func (b *Backoff) Reset() {
	b.attempts = 0
	b.current = 0
}

func (b *Backoff) Attempts() int {
	return b.attempts
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
