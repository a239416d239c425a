package notify

import (
	"sync"
	"time"
)

// Window is the minimum gap between notifications of the same category.
const Window = 5 * time.Second

// Throttler suppresses repeat notifications within Window, keyed by
// category. Different categories throttle independently.
type Throttler struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func NewThrottler() *Throttler {
	return &Throttler{
		last: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Allow reports whether a notification for category may fire now, and if
// so records the time. A suppressed call does not extend the window.
func (t *Throttler) Allow(category string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last, ok := t.last[category]; ok && now.Sub(last) < Window {
		return false
	}
	t.last[category] = now
	return true
}

// Reset clears the window for one category so the next failure alerts
// immediately.
func (t *Throttler) Reset(category string) {
	t.mu.Lock()
	delete(t.last, category)
	t.mu.Unlock()
}

func (t *Throttler) ResetAll() {
	t.mu.Lock()
	t.last = make(map[string]time.Time)
	t.mu.Unlock()
}
