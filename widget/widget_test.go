package widget

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/oddsgrid/grid"
	"github.com/unkn0wn-root/oddsgrid/row"
)

const (
	waitFor = 2 * time.Second
	tick    = time.Millisecond
)

type setCall struct {
	field string
	value any
}

// fakeGrid is a minimal grid.Grid that records what widgets push into it.
type fakeGrid struct {
	mu        sync.Mutex
	data      []row.Row
	rowCount  int // overrides len(data) when > 0
	filters   map[string]any
	order     []string
	sets      []setCall
	redraws   int
	reformats int
	handlers  map[grid.Event]map[int]func()
	nextID    int
}

var _ grid.Grid = (*fakeGrid)(nil)

func newFakeGrid(data []row.Row) *fakeGrid {
	return &fakeGrid{
		data:     data,
		filters:  make(map[string]any),
		handlers: make(map[grid.Event]map[int]func()),
	}
}

func (g *fakeGrid) Data() []row.Row {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]row.Row(nil), g.data...)
}

func (g *fakeGrid) setData(rows []row.Row) {
	g.mu.Lock()
	g.data = rows
	g.mu.Unlock()
}

func (g *fakeGrid) RowCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rowCount > 0 {
		return g.rowCount
	}
	return len(g.data)
}

func (g *fakeGrid) HeaderFilters() []grid.HeaderFilter {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []grid.HeaderFilter
	for _, f := range g.order {
		if v, ok := g.filters[f]; ok {
			out = append(out, grid.HeaderFilter{Field: f, Value: v})
		}
	}
	return out
}

// setExternal changes a filter the way a state restore would.
func (g *fakeGrid) setExternal(field string, v any) {
	g.mu.Lock()
	g.store(field, v)
	g.mu.Unlock()
	g.emit(grid.DataFiltered)
}

func (g *fakeGrid) store(field string, v any) {
	if grid.IsEmptyValue(v) {
		delete(g.filters, field)
		return
	}
	if _, ok := g.filters[field]; !ok {
		g.order = append(g.order, field)
	}
	g.filters[field] = v
}

func (g *fakeGrid) SetHeaderFilterValue(field string, v any) {
	g.mu.Lock()
	g.store(field, v)
	g.sets = append(g.sets, setCall{field, v})
	g.mu.Unlock()
	g.emit(grid.DataFiltered)
}

func (g *fakeGrid) Redraw(bool) {
	g.mu.Lock()
	g.redraws++
	g.mu.Unlock()
}

func (g *fakeGrid) Reformat() {
	g.mu.Lock()
	g.reformats++
	g.mu.Unlock()
}

func (g *fakeGrid) On(ev grid.Event, fn func()) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := g.nextID
	if g.handlers[ev] == nil {
		g.handlers[ev] = make(map[int]func())
	}
	g.handlers[ev][id] = fn
	return func() {
		g.mu.Lock()
		delete(g.handlers[ev], id)
		g.mu.Unlock()
	}
}

func (g *fakeGrid) emit(ev grid.Event) {
	g.mu.Lock()
	var fns []func()
	for _, fn := range g.handlers[ev] {
		fns = append(fns, fn)
	}
	g.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (g *fakeGrid) handlerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, hs := range g.handlers {
		n += len(hs)
	}
	return n
}

func (g *fakeGrid) calls() []setCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]setCall(nil), g.sets...)
}

func (g *fakeGrid) counts() (redraws, reformats int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.redraws, g.reformats
}

func (g *fakeGrid) filter(field string) (any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.filters[field]
	return v, ok
}

// advanceUntil steps the fake clock until cond holds; timer callbacks run on
// their own goroutines so a single Advance is not enough to observe them.
func advanceUntil(t *testing.T, clock clockwork.FakeClock, step time.Duration, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		clock.Advance(step)
		return cond()
	}, waitFor, tick)
}

func bookRows() []row.Row {
	return []row.Row{
		{"Game Book": "FD", "Game Line": 10.0},
		{"Game Book": "DK", "Game Line": -3.5},
		{"Game Book": "MGM", "Game Line": 2.0},
		{"Game Book": "DK", "Game Line": 2.0},
		{"Game Book": nil, "Game Line": nil},
		{"Game Book": "", "Game Line": "null"},
		{"Game Book": "undefined"},
	}
}
