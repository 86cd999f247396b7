package widget

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/unkn0wn-root/oddsgrid"
	"github.com/unkn0wn-root/oddsgrid/debounce"
	"github.com/unkn0wn-root/oddsgrid/filter"
	"github.com/unkn0wn-root/oddsgrid/grid"
)

type InputOptions struct {
	Debounce time.Duration // 0 => InputDebounce
	Clock    clockwork.Clock
	Logger   oddsgrid.Logger
}

func (o *InputOptions) defaults() {
	if o.Debounce <= 0 {
		o.Debounce = InputDebounce
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = oddsgrid.NopLogger{}
	}
}

// RangeFilter is a pair of min/max inputs over a numeric column.
type RangeFilter struct {
	g     grid.Grid
	field string
	log   oddsgrid.Logger
	deb   *debounce.Timer

	mu       sync.Mutex
	min, max string
}

func NewRangeFilter(g grid.Grid, field string, opts InputOptions) *RangeFilter {
	opts.defaults()
	return &RangeFilter{
		g:     g,
		field: field,
		log:   opts.Logger,
		deb:   debounce.New(opts.Clock, opts.Debounce),
	}
}

func (r *RangeFilter) Field() string { return r.field }

// SetMin updates the min input and schedules a push.
func (r *RangeFilter) SetMin(text string) {
	r.mu.Lock()
	r.min = text
	r.mu.Unlock()
	r.deb.Arm(r.push)
}

// SetMax updates the max input and schedules a push.
func (r *RangeFilter) SetMax(text string) {
	r.mu.Lock()
	r.max = text
	r.mu.Unlock()
	r.deb.Arm(r.push)
}

// Enter schedules a push of the current inputs.
func (r *RangeFilter) Enter() { r.deb.Arm(r.push) }

// Escape clears both inputs and removes the filter immediately.
func (r *RangeFilter) Escape() {
	r.deb.Cancel()
	r.mu.Lock()
	r.min, r.max = "", ""
	r.mu.Unlock()
	if r.g != nil {
		r.g.SetHeaderFilterValue(r.field, nil)
	}
}

// Value is the filter value the current inputs produce: nil or filter.Range.
func (r *RangeFilter) Value() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filter.NewRange(r.min, r.max)
}

func (r *RangeFilter) Inputs() (min, max string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.min, r.max
}

func (r *RangeFilter) push() {
	if r.g == nil {
		return
	}
	v := r.Value()
	r.log.Debug("range filter", oddsgrid.Fields{"field": r.field, "value": v})
	r.g.SetHeaderFilterValue(r.field, v)
}

// Flush pushes pending input now.
func (r *RangeFilter) Flush() bool { return r.deb.Flush() }

func (r *RangeFilter) Destroy() { r.deb.Cancel() }
