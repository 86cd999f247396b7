// Package sanitize drops placeholder rows the backend returns for empty table slots.
package sanitize

import (
	"strings"

	"github.com/unkn0wn-root/oddsgrid"
	"github.com/unkn0wn-root/oddsgrid/row"
)

// DefaultPrimary are the identifier columns of the player-prop, game-odds and matchup tables.
var DefaultPrimary = []string{"Player Name", "Game Matchup", "Matchup"}

// Clean keeps a row when any primary field is present, otherwise when at least
// one non-internal field (key not starting with "_") is present. Order is preserved.
func Clean(rows []row.Row, primary []string) (kept []row.Row, dropped int) {
	if rows == nil {
		return nil, 0
	}
	kept = make([]row.Row, 0, len(rows))
	for _, r := range rows {
		if keep(r, primary) {
			kept = append(kept, r)
		}
	}
	return kept, len(rows) - len(kept)
}

func keep(r row.Row, primary []string) bool {
	for _, f := range primary {
		if !row.IsBlank(r[f]) {
			return true
		}
	}
	for k, v := range r {
		if strings.HasPrefix(k, "_") {
			continue
		}
		if !row.IsBlank(v) {
			return true
		}
	}
	return false
}

type Sanitizer struct {
	Primary []string // nil => DefaultPrimary
	Logger  oddsgrid.Logger
	Hooks   oddsgrid.Hooks
}

// Clean is the package-level Clean plus a warning naming source when rows were dropped.
func (s *Sanitizer) Clean(source string, rows []row.Row) []row.Row {
	primary := s.Primary
	if primary == nil {
		primary = DefaultPrimary
	}
	kept, dropped := Clean(rows, primary)
	if dropped > 0 {
		if s.Logger != nil {
			s.Logger.Warn("filtered out NULL/empty rows", oddsgrid.Fields{"source": source, "dropped": dropped})
		}
		if s.Hooks != nil {
			s.Hooks.RowsDropped(source, dropped)
		}
	}
	return kept
}
