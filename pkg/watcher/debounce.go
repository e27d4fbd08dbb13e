package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the trailing-edge delay applied to change
// bursts. Editors and atomic-save tools produce several events per save;
// the callback fires once after the burst goes quiet.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces rapid Trigger calls into one callback invocation.
// Safe for concurrent use.
type Debouncer struct {
	d     time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{d: d}
}

// Trigger schedules fn to run after the quiet period. A Trigger while a
// previous one is pending restarts the clock; only the last fn runs.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.d, fn)
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
