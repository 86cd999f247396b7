// Package grid defines the table surface filter widgets drive, and Table, an
// in-memory implementation of it.
package grid

import "github.com/unkn0wn-root/oddsgrid/row"

type Event int

const (
	// DataLoaded fires after a new dataset replaced the rows.
	DataLoaded Event = iota
	// DataFiltered fires whenever the visible row set may have changed,
	// including after a load.
	DataFiltered
)

func (e Event) String() string {
	switch e {
	case DataLoaded:
		return "dataLoaded"
	case DataFiltered:
		return "dataFiltered"
	}
	return "unknown"
}

// HeaderFilter is one active header filter value.
type HeaderFilter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Grid is what a widget needs from the table it is attached to.
// Handlers registered with On run on the goroutine that triggered the event.
type Grid interface {
	Data() []row.Row
	RowCount() int
	HeaderFilters() []HeaderFilter
	SetHeaderFilterValue(field string, value any)
	Redraw(force bool)
	// Reformat re-renders cells without re-filtering (bankroll changes).
	Reformat()
	On(ev Event, fn func()) (off func())
}

// IsEmptyValue reports whether a header filter value means "no filter".
func IsEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

// FilterValue returns the active value for field, if any.
func FilterValue(g Grid, field string) (any, bool) {
	for _, f := range g.HeaderFilters() {
		if f.Field == field {
			return f.Value, true
		}
	}
	return nil, false
}
