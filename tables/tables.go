// Package tables holds the column layouts of the odds tables and mounts them,
// with their header-filter widgets, on a session.
package tables

import (
	"sort"
	"strings"

	"github.com/unkn0wn-root/oddsgrid/bankroll"
	"github.com/unkn0wn-root/oddsgrid/filter"
	"github.com/unkn0wn-root/oddsgrid/format"
	"github.com/unkn0wn-root/oddsgrid/grid"
	"github.com/unkn0wn-root/oddsgrid/row"
)

// Control is the header-filter widget a column gets.
type Control int

const (
	NoControl Control = iota
	TextControl
	SetControl
	RangeControl
	BankrollControl
)

func (c Control) String() string {
	switch c {
	case TextControl:
		return "text"
	case SetControl:
		return "set"
	case RangeControl:
		return "range"
	case BankrollControl:
		return "bankroll"
	}
	return "none"
}

type ColumnSpec struct {
	grid.Column
	Control     Control
	BankrollKey string // store key for BankrollControl; "" => field
}

type Preset struct {
	Name        string
	Endpoint    string
	Columns     []ColumnSpec
	InitialSort []grid.Sorter
}

// GridColumns returns the grid columns in display order.
func (p Preset) GridColumns() []grid.Column {
	out := make([]grid.Column, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Column
	}
	return out
}

// Spec returns the column spec for field.
func (p Preset) Spec(field string) (ColumnSpec, bool) {
	for _, c := range p.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

const (
	GameOddsEndpoint = "CBBallGameOdds"
	MatchupsEndpoint = "CBBallWMatchups"

	GameKellyKey = "CBB Game Quarter Kelly %"
)

func setColumn(field, title string) ColumnSpec {
	return ColumnSpec{
		Column:  grid.Column{Field: field, Title: title, Filter: filter.MatchSet, Compare: grid.StringCompare},
		Control: SetControl,
	}
}

func oddsColumn(field, title string) ColumnSpec {
	return ColumnSpec{
		Column: grid.Column{
			Field: field, Title: title,
			Filter: filter.MatchRange, Format: format.Odds, Compare: grid.OddsCompare,
		},
		Control: RangeControl,
	}
}

// GameOdds is the college basketball game odds table. Bet sizes read the
// bankroll from store at render time.
func GameOdds(store *bankroll.Store) Preset {
	if store == nil {
		store = bankroll.NewStore()
	}
	return Preset{
		Name:     "game-odds",
		Endpoint: GameOddsEndpoint,
		Columns: []ColumnSpec{
			setColumn("Game Matchup", "Matchup"),
			setColumn("Game Prop Type", "Prop"),
			setColumn("Game Label", "Label"),
			{
				Column: grid.Column{
					Field: "Game Line", Title: "Line",
					Filter: filter.MatchRange, Format: format.Line, Compare: grid.NumberCompare,
				},
				Control: RangeControl,
			},
			setColumn("Game Book", "Book"),
			oddsColumn("Game Odds", "Book Odds"),
			oddsColumn("Game Median Odds", "Median Odds"),
			oddsColumn("Game Best Odds", "Best Odds"),
			{Column: grid.Column{Field: "Game Best Odds Books", Title: "Best Books", Compare: grid.StringCompare}},
			{Column: grid.Column{Field: "EV %", Title: "EV %", Format: format.Percent, Compare: grid.PercentCompare}},
			{
				Column: grid.Column{
					Field: "Quarter Kelly %", Title: "Bet Size",
					Filter:  filter.MatchBankroll,
					Format:  func(v any) string { return format.Kelly(v, store.Get(GameKellyKey)) },
					Compare: grid.PercentCompare,
				},
				Control:     BankrollControl,
				BankrollKey: GameKellyKey,
			},
			{Column: grid.Column{Field: "Link", Title: "Link", Format: format.Link, Compare: grid.StringCompare}},
		},
		InitialSort: []grid.Sorter{{Field: "EV %", Dir: grid.Desc}},
	}
}

// Matchups is the women's college basketball matchups table: a free-text
// filter on the matchup, sorted by tip-off time.
func Matchups() Preset {
	return Preset{
		Name:     "matchups",
		Endpoint: MatchupsEndpoint,
		Columns: []ColumnSpec{
			{
				Column:  grid.Column{Field: "Matchup", Title: "Matchup", Filter: filter.MatchLike, Compare: grid.MatchupTimeCompare},
				Control: TextControl,
			},
			{Column: grid.Column{Field: "Spread", Title: "Spread", Compare: grid.StringCompare}},
			{Column: grid.Column{Field: "Total", Title: "Total", Compare: grid.StringCompare}},
		},
		InitialSort: []grid.Sorter{{Field: "Matchup", Dir: grid.Asc}},
	}
}

// Lookup finds a preset by name or endpoint, case-insensitively.
func Lookup(name string, store *bankroll.Store) (Preset, bool) {
	for _, p := range []Preset{GameOdds(store), Matchups()} {
		if strings.EqualFold(name, p.Name) || strings.EqualFold(name, p.Endpoint) {
			return p, true
		}
	}
	return Preset{}, false
}

// Names lists the known preset names.
func Names() []string {
	names := []string{GameOdds(nil).Name, Matchups().Name}
	sort.Strings(names)
	return names
}

// Infer builds a preset for an endpoint without a known layout: one text
// filtered column per field seen in rows, in sorted order.
func Infer(endpoint string, rows []row.Row) Preset {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			if !strings.HasPrefix(k, "_") {
				seen[k] = struct{}{}
			}
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	cols := make([]ColumnSpec, len(fields))
	for i, f := range fields {
		cols[i] = ColumnSpec{Column: grid.Column{Field: f, Title: f}, Control: TextControl}
	}
	return Preset{Name: endpoint, Endpoint: endpoint, Columns: cols}
}

// Resolve finds a column by field or title, case-insensitively.
func (p Preset) Resolve(name string) (ColumnSpec, bool) {
	if c, ok := p.Spec(name); ok {
		return c, true
	}
	for _, c := range p.Columns {
		if strings.EqualFold(c.Field, name) || strings.EqualFold(c.Title, name) {
			return c, true
		}
	}
	return ColumnSpec{}, false
}
