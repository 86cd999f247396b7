// Package debounce provides a single-slot timer: arming it replaces whatever
// was pending, so only the last call within the delay runs.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Timer struct {
	clock clockwork.Clock
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	pending clockwork.Timer
	fn      func()
}

func New(clock clockwork.Clock, delay time.Duration) *Timer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timer{clock: clock, delay: delay}
}

// Arm schedules fn after the delay, cancelling any pending call. A superseded
// fn never runs, even if its timer already fired and is waiting on the lock.
func (t *Timer) Arm(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
	}
	t.seq++
	seq := t.seq
	t.fn = fn
	t.pending = t.clock.AfterFunc(t.delay, func() {
		t.mu.Lock()
		if seq != t.seq {
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.fn = nil
		t.mu.Unlock()
		fn()
	})
}

// Flush runs the pending call now, on the caller's goroutine. It reports
// whether there was one.
func (t *Timer) Flush() bool {
	t.mu.Lock()
	if t.pending == nil {
		t.mu.Unlock()
		return false
	}
	t.seq++
	t.pending.Stop()
	t.pending = nil
	fn := t.fn
	t.fn = nil
	t.mu.Unlock()
	fn()
	return true
}

// Cancel drops the pending call, if any.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.fn = nil
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Pending reports whether a call is scheduled and not yet started.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
