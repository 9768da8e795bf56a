package catalog

import (
	"sync"
	"time"

	"go-inventory-stock/internal/model"
)

// Throttle runs at most one call per key per interval. A call arriving inside the
// window is deferred to the end of it, and further calls in the same window fold
// into that deferred one, so the last event is never lost.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[model.ID]time.Time
	pending  map[model.ID]*time.Timer
	now      func() time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		interval: interval,
		last:     make(map[model.ID]time.Time),
		pending:  make(map[model.ID]*time.Timer),
		now:      time.Now,
	}
}

func (t *Throttle) Do(key model.ID, fn func()) {
	t.mu.Lock()
	if _, ok := t.pending[key]; ok {
		t.mu.Unlock()
		return
	}

	now := t.now()
	elapsed := now.Sub(t.last[key])
	if elapsed >= t.interval {
		t.last[key] = now
		t.mu.Unlock()
		fn()
		return
	}

	t.pending[key] = time.AfterFunc(t.interval-elapsed, func() {
		t.mu.Lock()
		delete(t.pending, key)
		t.last[key] = t.now()
		t.mu.Unlock()
		fn()
	})
	t.mu.Unlock()
}

// Stop cancels every deferred call.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, timer := range t.pending {
		timer.Stop()
		delete(t.pending, key)
	}
}
