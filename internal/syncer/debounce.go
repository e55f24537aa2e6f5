package syncer

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single callback: each
// Trigger cancels the pending timer and arms a fresh one, so the callback
// runs once, one full window after the last trigger.
type Debouncer struct {
	clock Clock
	delay time.Duration

	mu      sync.Mutex
	pending Timer
}

func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger arms the window, replacing any pending one.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
	}
	var t Timer
	t = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// Clear only if no newer trigger replaced this timer meanwhile.
		if d.pending == t {
			d.pending = nil
		}
		d.mu.Unlock()
		fn()
	})
	d.pending = t
}

// Cancel drops the pending callback, if any. It reports whether one was
// pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return false
	}
	stopped := d.pending.Stop()
	d.pending = nil
	return stopped
}
