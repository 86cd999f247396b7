package widget

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/unkn0wn-root/oddsgrid"
	"github.com/unkn0wn-root/oddsgrid/debounce"
	"github.com/unkn0wn-root/oddsgrid/filter"
	"github.com/unkn0wn-root/oddsgrid/grid"
	"github.com/unkn0wn-root/oddsgrid/row"
)

// DefaultNumericFields sort their distinct values numerically.
var DefaultNumericFields = []string{"Player Prop Line", "Game Line", "Player Prop Value"}

type SetFilterOptions struct {
	Debounce      time.Duration // 0 => SetDebounce
	FrameDelay    time.Duration // 0 => FrameDelay
	BulkThreshold int           // row count above which redraw waits a frame; 0 => BulkRowThreshold
	LoadAttempts  int           // 0 => 5
	LoadInterval  time.Duration // 0 => 500ms
	SettleDelay   time.Duration // wait after DataLoaded; 0 => 100ms
	NumericFields []string      // nil => DefaultNumericFields
	// Values overrides how distinct values are computed from the data.
	Values func(data []row.Row) []string
	Clock  clockwork.Clock
	Logger oddsgrid.Logger
}

// SetFilter is a multi-select over the distinct values of one column.
type SetFilter struct {
	g       grid.Grid
	field   string
	opts    SetFilterOptions
	numeric bool
	clock   clockwork.Clock
	log     oddsgrid.Logger
	deb     *debounce.Timer
	timers  timers

	mu          sync.Mutex
	all         []string
	selected    []string
	initialized bool
	initialDone bool
	open        bool
	attempts    int
	offs        []func()
}

func NewSetFilter(g grid.Grid, field string, opts SetFilterOptions) *SetFilter {
	if opts.Debounce <= 0 {
		opts.Debounce = SetDebounce
	}
	if opts.FrameDelay <= 0 {
		opts.FrameDelay = FrameDelay
	}
	if opts.BulkThreshold <= 0 {
		opts.BulkThreshold = BulkRowThreshold
	}
	if opts.LoadAttempts <= 0 {
		opts.LoadAttempts = 5
	}
	if opts.LoadInterval <= 0 {
		opts.LoadInterval = 500 * time.Millisecond
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 100 * time.Millisecond
	}
	if opts.NumericFields == nil {
		opts.NumericFields = DefaultNumericFields
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = oddsgrid.NopLogger{}
	}
	return &SetFilter{
		g:       g,
		field:   field,
		opts:    opts,
		numeric: slices.Contains(opts.NumericFields, field),
		clock:   opts.Clock,
		log:     opts.Logger,
		deb:     debounce.New(opts.Clock, opts.Debounce),
	}
}

func (s *SetFilter) Field() string { return s.field }

// Start subscribes to grid events and schedules the initial load: one frame
// later, then retried while the grid has no data.
func (s *SetFilter) Start() {
	if s.g == nil {
		return
	}
	offLoaded := s.g.On(grid.DataLoaded, s.onDataLoaded)
	offFiltered := s.g.On(grid.DataFiltered, s.onDataFiltered)
	s.mu.Lock()
	s.offs = append(s.offs, offLoaded, offFiltered)
	s.mu.Unlock()

	s.timers.after(s.clock, s.opts.FrameDelay, s.tryLoad)
}

func (s *SetFilter) tryLoad() {
	s.mu.Lock()
	s.attempts++
	attempts := s.attempts
	s.mu.Unlock()

	if len(s.g.Data()) == 0 {
		if attempts < s.opts.LoadAttempts {
			s.timers.after(s.clock, s.opts.LoadInterval, s.tryLoad)
		}
		return
	}

	s.mu.Lock()
	loaded := s.initialized
	s.mu.Unlock()
	if !loaded {
		s.LoadValues()
	}

	s.mu.Lock()
	first := !s.initialDone
	s.initialDone = true
	restricted := len(s.selected) != len(s.all)
	s.mu.Unlock()

	if first && restricted {
		s.updateFilter()
	}
}

func (s *SetFilter) onDataLoaded() {
	s.timers.after(s.clock, s.opts.SettleDelay, func() {
		s.LoadValues()
		_, external := s.currentFilter()

		s.mu.Lock()
		restricted := len(s.selected) != len(s.all)
		s.mu.Unlock()

		if !external && restricted {
			s.updateFilter()
		}
	})
}

// onDataFiltered adopts a filter value set from outside the widget. It is
// skipped while a push of our own is pending, or the grid's older value
// would undo the user's latest toggles.
func (s *SetFilter) onDataFiltered() {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()
	if !initialized || s.deb.Pending() {
		return
	}

	cur, ok := s.currentFilter()
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	adopted := restrict(cur, s.all)
	if sameSet(adopted, s.selected) {
		return
	}
	s.selected = adopted
	s.log.Debug("external filter change, syncing", oddsgrid.Fields{
		"field": s.field, "selected": len(adopted), "all": len(s.all),
	})
}

// currentFilter returns the grid's selection for this field when it holds an
// explicit one (a list or the no-match sentinel).
func (s *SetFilter) currentFilter() ([]string, bool) {
	if s.g == nil {
		return nil, false
	}
	raw, ok := grid.FilterValue(s.g, s.field)
	if !ok {
		return nil, false
	}
	v, adoptable := filter.DecodeSet(raw)
	if !adoptable {
		return nil, false
	}
	if v.Kind == filter.SetNone {
		return []string{}, true
	}
	return v.Values, true
}

// LoadValues recomputes the distinct values from the grid's data and syncs
// the selection: the grid's active filter if there is one, else everything.
// While a push is pending the local selection wins, narrowed to the new values.
func (s *SetFilter) LoadValues() {
	if s.g == nil {
		return
	}
	data := s.g.Data()
	if len(data) == 0 {
		return
	}
	all := s.distinct(data)
	cur, external := s.currentFilter()
	pending := s.deb.Pending()

	s.mu.Lock()
	s.all = all
	switch {
	case pending && s.initialized:
		s.selected = restrict(s.selected, all)
	case external:
		s.selected = restrict(cur, all)
	default:
		s.selected = slices.Clone(all)
	}
	s.initialized = true
	sel := len(s.selected)
	s.mu.Unlock()

	s.log.Debug("loaded values", oddsgrid.Fields{"field": s.field, "values": len(all), "selected": sel})
}

func (s *SetFilter) distinct(data []row.Row) []string {
	var vals []string
	if s.opts.Values != nil {
		vals = s.opts.Values(data)
	} else {
		seen := make(map[string]struct{})
		for _, r := range data {
			v := r[s.field]
			if row.IsMissingText(v) {
				continue
			}
			t := row.Text(v)
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			vals = append(vals, t)
		}
	}
	vals = slices.Clone(vals)
	if s.numeric {
		sort.SliceStable(vals, func(i, j int) bool {
			a, oka := row.ParseFloat(vals[i])
			b, okb := row.ParseFloat(vals[j])
			if oka != okb {
				return oka
			}
			return oka && a < b
		})
	} else {
		sort.Strings(vals)
	}
	return vals
}

// Toggle flips one value. Values not in the loaded set are ignored.
func (s *SetFilter) Toggle(value string) {
	s.mu.Lock()
	if !slices.Contains(s.all, value) {
		s.mu.Unlock()
		return
	}
	if i := slices.Index(s.selected, value); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
	} else {
		s.selected = append(s.selected, value)
	}
	s.mu.Unlock()
	s.updateFilter()
}

// ToggleAll selects nothing when everything is selected, else everything.
// It is a no-op before values are loaded.
func (s *SetFilter) ToggleAll() {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return
	}
	if len(s.selected) == len(s.all) {
		s.selected = []string{}
	} else {
		s.selected = slices.Clone(s.all)
	}
	s.mu.Unlock()
	s.updateFilter()
}

func (s *SetFilter) updateFilter() {
	s.deb.Arm(s.push)
}

func (s *SetFilter) push() {
	if s.g == nil {
		return
	}
	s.mu.Lock()
	value := filter.EncodeSet(s.selected, s.all)
	sel, all := len(s.selected), len(s.all)
	s.mu.Unlock()

	s.log.Debug("updating filter", oddsgrid.Fields{"field": s.field, "selected": sel, "all": all})
	s.g.SetHeaderFilterValue(s.field, value)

	if s.g.RowCount() > s.opts.BulkThreshold {
		s.timers.after(s.clock, s.opts.FrameDelay, func() { s.g.Redraw(false) })
		return
	}
	s.g.Redraw(false)
}

// Flush pushes a pending selection now instead of waiting out the debounce.
func (s *SetFilter) Flush() bool { return s.deb.Flush() }

// Open shows the value list, loading values first if needed.
func (s *SetFilter) Open() {
	s.mu.Lock()
	loaded := s.initialized
	s.mu.Unlock()
	if !loaded {
		s.LoadValues()
	}
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

func (s *SetFilter) Close() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

func (s *SetFilter) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *SetFilter) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *SetFilter) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected)
}

func (s *SetFilter) AllValues() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.all)
}

// Label is the button text: "None", "All" or "n of m".
func (s *SetFilter) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case len(s.selected) == 0:
		return "None"
	case len(s.selected) == len(s.all):
		return "All"
	}
	return fmt.Sprintf("%d of %d", len(s.selected), len(s.all))
}

// Destroy cancels pending pushes and timers and detaches from the grid.
func (s *SetFilter) Destroy() {
	s.deb.Cancel()
	s.timers.stop()
	s.mu.Lock()
	offs := s.offs
	s.offs = nil
	s.open = false
	s.mu.Unlock()
	for _, off := range offs {
		off()
	}
}

// restrict keeps the members of vals that are in all, in all's order.
func restrict(vals, all []string) []string {
	in := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		in[v] = struct{}{}
	}
	out := make([]string, 0, len(vals))
	for _, v := range all {
		if _, ok := in[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	in := make(map[string]struct{}, len(b))
	for _, v := range b {
		in[v] = struct{}{}
	}
	for _, v := range a {
		if _, ok := in[v]; !ok {
			return false
		}
	}
	return true
}
