package filter

import (
	"math"

	"github.com/unkn0wn-root/oddsgrid/row"
)

// Range is an inclusive numeric bound pair; a nil side is open.
type Range struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool { return r.Min == nil && r.Max == nil }

// ParseBound reads user input. Blank or unparseable text is an absent bound.
func ParseBound(text string) *float64 {
	f, ok := row.ParseFloat(text)
	if !ok || math.IsNaN(f) {
		return nil
	}
	return &f
}

// NewRange builds the filter value for two inputs; nil when both are absent.
func NewRange(minText, maxText string) any {
	r := Range{Min: ParseBound(minText), Max: ParseBound(maxText)}
	if r.IsZero() {
		return nil
	}
	return r
}

// AsRange accepts the forms a range filter value can take: nil, Range, *Range,
// or a restored map with "min"/"max" keys.
func AsRange(header any) (Range, bool) {
	switch x := header.(type) {
	case nil:
		return Range{}, false
	case Range:
		return x, true
	case *Range:
		if x == nil {
			return Range{}, false
		}
		return *x, true
	case map[string]any:
		return Range{Min: boundOf(x["min"]), Max: boundOf(x["max"])}, true
	}
	return Range{}, false
}

func boundOf(v any) *float64 {
	if v == nil {
		return nil
	}
	f, ok := row.Float(v)
	if !ok {
		return nil
	}
	return &f
}

// MatchRange is the range-filter predicate. With no active bound every row
// passes; otherwise rows without a numeric value fail.
func MatchRange(header, rowValue any) bool {
	r, ok := AsRange(header)
	if !ok || r.IsZero() {
		return true
	}
	if row.IsBlank(rowValue) {
		return false
	}
	if s, isStr := rowValue.(string); isStr && s == "-" {
		return false
	}
	n, ok := row.Float(rowValue)
	if !ok || math.IsNaN(n) {
		return false
	}
	if r.Min != nil && n < *r.Min {
		return false
	}
	if r.Max != nil && n > *r.Max {
		return false
	}
	return true
}
