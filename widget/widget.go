// Package widget implements the header-filter controls of an odds table: a
// multi-select set filter, a min/max range filter and a bankroll input. Each
// keeps local state, pushes a debounced filter value into its grid, and the
// set filter follows filter values changed from outside (state restore).
//
// Widgets never hold their own lock while calling into the grid, because the
// grid emits events that re-enter them.
package widget

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	SetDebounce      = 150 * time.Millisecond
	InputDebounce    = 300 * time.Millisecond
	FrameDelay       = 16 * time.Millisecond
	BulkRowThreshold = 1000
)

// timers tracks one-shot callbacks so Destroy can stop them.
type timers struct {
	mu   sync.Mutex
	next uint64
	m    map[uint64]clockwork.Timer
	done bool
}

func (t *timers) after(clock clockwork.Clock, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	if t.m == nil {
		t.m = make(map[uint64]clockwork.Timer)
	}
	t.next++
	id := t.next
	t.m[id] = clock.AfterFunc(d, func() {
		t.mu.Lock()
		_, live := t.m[id]
		delete(t.m, id)
		stopped := t.done
		t.mu.Unlock()
		if live && !stopped {
			fn()
		}
	})
}

func (t *timers) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	for id, tm := range t.m {
		tm.Stop()
		delete(t.m, id)
	}
}
