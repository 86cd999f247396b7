package tables

import (
	"context"

	"github.com/unkn0wn-root/oddsgrid/grid"
	"github.com/unkn0wn-root/oddsgrid/session"
	"github.com/unkn0wn-root/oddsgrid/widget"
)

// Mounted is a preset table bound to a session with its widgets attached.
type Mounted struct {
	Preset    Preset
	Table     *grid.Table
	Sets      map[string]*widget.SetFilter
	Ranges    map[string]*widget.RangeFilter
	Bankrolls map[string]*widget.Bankroll
}

// Mount builds the table for p and attaches one widget per controlled column.
// Call Start to have set filters follow data loads, as an interactive grid does.
func Mount(s *session.Session, p Preset) *Mounted {
	m := &Mounted{
		Preset:    p,
		Table:     s.NewTable(p.Endpoint, p.GridColumns(), p.InitialSort...),
		Sets:      make(map[string]*widget.SetFilter),
		Ranges:    make(map[string]*widget.RangeFilter),
		Bankrolls: make(map[string]*widget.Bankroll),
	}
	for _, c := range p.Columns {
		switch c.Control {
		case SetControl:
			m.Sets[c.Field] = s.SetFilter(m.Table, c.Field)
		case RangeControl:
			m.Ranges[c.Field] = s.RangeFilter(m.Table, c.Field)
		case BankrollControl:
			m.Bankrolls[c.Field] = s.BankrollInput(m.Table, c.Field, c.BankrollKey)
		}
	}
	return m
}

// Start subscribes the set filters to table events.
func (m *Mounted) Start() {
	for _, sf := range m.Sets {
		sf.Start()
	}
}

// LoadValues fills every set filter from the table's current rows.
func (m *Mounted) LoadValues() {
	for _, sf := range m.Sets {
		sf.LoadValues()
	}
}

// Flush pushes every widget's pending input into the table now.
func (m *Mounted) Flush() {
	for _, sf := range m.Sets {
		sf.Flush()
	}
	for _, rf := range m.Ranges {
		rf.Flush()
	}
	for _, b := range m.Bankrolls {
		b.Flush()
	}
}

// Load fetches the rows through the session's source.
func (m *Mounted) Load(ctx context.Context) error {
	return m.Table.SetData(ctx)
}

// Destroy detaches every widget.
func (m *Mounted) Destroy() {
	for _, sf := range m.Sets {
		sf.Destroy()
	}
	for _, rf := range m.Ranges {
		rf.Destroy()
	}
	for _, b := range m.Bankrolls {
		b.Destroy()
	}
}
