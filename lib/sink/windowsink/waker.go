package windowsink

import "sync"

// waker posts wakeups to the event loop from any goroutine, and never after
// the loop's library has been shut down.
type waker struct {
	mu   sync.RWMutex
	live bool
	post func()
}

func (k *waker) open() {
	k.mu.Lock()
	k.live = true
	k.mu.Unlock()
}

// wake calls post if the waker is open.
func (k *waker) wake() {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.live {
		k.post()
	}
}

// shut closes the waker and runs teardown once no wake is in flight.
func (k *waker) shut(teardown func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.live = false
	teardown()
}
