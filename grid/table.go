package grid

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/unkn0wn-root/oddsgrid"
	"github.com/unkn0wn-root/oddsgrid/filter"
	"github.com/unkn0wn-root/oddsgrid/row"
)

// MatchFunc is a header filter predicate: header is the active filter value.
type MatchFunc func(header, rowValue any) bool

type Column struct {
	Field string
	Title string
	// Filter evaluates this column's header filter; nil => filter.MatchLike.
	Filter MatchFunc
	// Format renders a cell; nil => row.Text.
	Format func(v any) string
	// Compare orders cells; nil => AutoCompare.
	Compare CompareFunc
}

func (c Column) title() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Field
}

func (c Column) render(v any) string {
	if c.Format != nil {
		return c.Format(v)
	}
	return row.Text(v)
}

// Loader supplies a table's rows; source.DataSource.Loader fits.
type Loader func(ctx context.Context) ([]row.Row, error)

type Options struct {
	Columns     []Column
	Loader      Loader
	InitialSort []Sorter
	Logger      oddsgrid.Logger
}

// State is the restorable part of a table: active header filters and sort.
type State struct {
	Filters []HeaderFilter `json:"filters"`
	Sort    []Sorter       `json:"sort"`
}

type Table struct {
	loader Loader
	log    oddsgrid.Logger

	mu      sync.RWMutex
	columns []Column
	byField map[string]int
	data    []row.Row
	filters map[string]any
	sorters []Sorter
	saved   State

	hmu      sync.Mutex
	handlers map[Event]map[uint64]func()
	nextID   uint64

	redraws   int
	reformats int
}

var _ Grid = (*Table)(nil)

var ErrNoLoader = errors.New("grid: table has no loader")

func NewTable(opts Options) *Table {
	t := &Table{
		loader:   opts.Loader,
		log:      opts.Logger,
		columns:  append([]Column(nil), opts.Columns...),
		byField:  make(map[string]int, len(opts.Columns)),
		filters:  make(map[string]any),
		sorters:  append([]Sorter(nil), opts.InitialSort...),
		handlers: make(map[Event]map[uint64]func()),
	}
	if t.log == nil {
		t.log = oddsgrid.NopLogger{}
	}
	for i, c := range t.columns {
		t.byField[c.Field] = i
	}
	return t
}

// SetData (re)loads rows through the loader. Active header filters and sorters
// stay in place and apply to the new rows.
func (t *Table) SetData(ctx context.Context) error {
	if t.loader == nil {
		return ErrNoLoader
	}
	rows, err := t.loader(ctx)
	if err != nil {
		return err
	}
	t.Replace(rows)
	return nil
}

// Replace swaps in rows directly, firing the same events as SetData.
func (t *Table) Replace(rows []row.Row) {
	t.mu.Lock()
	t.data = rows
	t.mu.Unlock()
	t.log.Debug("table data loaded", oddsgrid.Fields{"rows": len(rows)})

	t.emit(DataLoaded)
	t.emit(DataFiltered)
}

func (t *Table) Data() []row.Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.data)
}

func (t *Table) RowCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.data)
}

func (t *Table) Columns() []Column {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.columns)
}

func (t *Table) Column(field string) (Column, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.byField[field]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// HeaderFilters lists active filters in column order.
func (t *Table) HeaderFilters() []HeaderFilter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []HeaderFilter
	for _, c := range t.columns {
		if v, ok := t.filters[c.Field]; ok {
			out = append(out, HeaderFilter{Field: c.Field, Value: v})
		}
	}
	return out
}

// SetHeaderFilterValue sets or (with an empty value) clears a column's filter.
// Unknown fields are ignored.
func (t *Table) SetHeaderFilterValue(field string, value any) {
	t.mu.Lock()
	if _, ok := t.byField[field]; !ok {
		t.mu.Unlock()
		return
	}
	if IsEmptyValue(value) {
		delete(t.filters, field)
	} else {
		t.filters[field] = value
	}
	t.mu.Unlock()

	t.emit(DataFiltered)
}

func (t *Table) Sorters() []Sorter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.sorters)
}

// SetSort replaces the sort; the first sorter has the highest priority.
func (t *Table) SetSort(sorters ...Sorter) {
	t.mu.Lock()
	t.sorters = append([]Sorter(nil), sorters...)
	t.mu.Unlock()
}

func (t *Table) Redraw(bool) {
	t.mu.Lock()
	t.redraws++
	t.mu.Unlock()
}

func (t *Table) Reformat() {
	t.mu.Lock()
	t.reformats++
	t.mu.Unlock()
}

// Redraws and Reformats count calls; a terminal renderer polls them.
func (t *Table) Redraws() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.redraws
}

func (t *Table) Reformats() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.reformats
}

// On registers fn for ev and returns a func that removes it.
func (t *Table) On(ev Event, fn func()) (off func()) {
	t.hmu.Lock()
	defer t.hmu.Unlock()
	t.nextID++
	id := t.nextID
	if t.handlers[ev] == nil {
		t.handlers[ev] = make(map[uint64]func())
	}
	t.handlers[ev][id] = fn
	return func() {
		t.hmu.Lock()
		delete(t.handlers[ev], id)
		t.hmu.Unlock()
	}
}

func (t *Table) emit(ev Event) {
	t.hmu.Lock()
	ids := make([]uint64, 0, len(t.handlers[ev]))
	for id := range t.handlers[ev] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, t.handlers[ev][id])
	}
	t.hmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Visible returns the rows passing every active header filter, sorted.
func (t *Table) Visible() []row.Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	type active struct {
		field string
		match MatchFunc
		value any
	}
	var act []active
	for _, c := range t.columns {
		v, ok := t.filters[c.Field]
		if !ok {
			continue
		}
		m := c.Filter
		if m == nil {
			m = filter.MatchLike
		}
		act = append(act, active{c.Field, m, v})
	}

	out := make([]row.Row, 0, len(t.data))
rows:
	for _, r := range t.data {
		for _, a := range act {
			if !a.match(a.value, r[a.field]) {
				continue rows
			}
		}
		out = append(out, r)
	}

	if len(t.sorters) > 0 {
		slices.SortStableFunc(out, func(a, b row.Row) int {
			for _, s := range t.sorters {
				cmp := AutoCompare
				if i, ok := t.byField[s.Field]; ok && t.columns[i].Compare != nil {
					cmp = t.columns[i].Compare
				}
				c := cmp(a[s.Field], b[s.Field])
				if s.Dir == Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}
	return out
}

// Render formats the visible rows: one header line of titles, then cells.
func (t *Table) Render() (header []string, cells [][]string) {
	visible := t.Visible()
	cols := t.Columns()

	header = make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title()
	}
	cells = make([][]string, 0, len(visible))
	for _, r := range visible {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = c.render(r[c.Field])
		}
		cells = append(cells, line)
	}
	return header, cells
}

// SaveState remembers the active filters and sort and returns them.
func (t *Table) SaveState() State {
	st := State{Filters: t.HeaderFilters(), Sort: t.Sorters()}
	t.mu.Lock()
	t.saved = st
	t.mu.Unlock()
	return st
}

// RestoreState re-applies the last saved state.
func (t *Table) RestoreState() {
	t.mu.RLock()
	st := t.saved
	t.mu.RUnlock()
	t.ApplyState(st)
}

// ApplyState sets each filter in st and, when st has one, its sort.
func (t *Table) ApplyState(st State) {
	for _, f := range st.Filters {
		t.SetHeaderFilterValue(f.Field, f.Value)
	}
	if len(st.Sort) > 0 {
		t.SetSort(st.Sort...)
	}
}
