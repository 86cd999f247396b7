// Package filter holds the header-filter values the widgets push into a grid
// and the predicates the grid evaluates them with.
package filter

import (
	"github.com/unkn0wn-root/oddsgrid/row"
)

// NoMatchSentinel is the wire value for "nothing selected". An empty list
// cannot be used because an empty filter value means "no filter".
const NoMatchSentinel = "IMPOSSIBLE_VALUE_THAT_MATCHES_NOTHING"

type SetKind int

const (
	SetAll  SetKind = iota // no filtering
	SetNone                // matches nothing
	SetAny                 // matches rows whose text is in Values
)

func (k SetKind) String() string {
	switch k {
	case SetAll:
		return "all"
	case SetNone:
		return "none"
	case SetAny:
		return "any"
	}
	return "unknown"
}

// SetValue is the decoded form of a set filter.
type SetValue struct {
	Kind   SetKind
	Values []string
}

// Encode returns the wire form: "" for SetAll, NoMatchSentinel for SetNone,
// a fresh []string for SetAny.
func (s SetValue) Encode() any {
	switch s.Kind {
	case SetNone:
		return NoMatchSentinel
	case SetAny:
		return append([]string(nil), s.Values...)
	}
	return ""
}

// EncodeSet picks the wire form for a selection out of all.
func EncodeSet(selected, all []string) any {
	switch {
	case len(selected) == 0:
		return NoMatchSentinel
	case len(selected) == len(all):
		return ""
	}
	return append([]string(nil), selected...)
}

// DecodeSet parses a wire value. adoptable is true when the value names an
// explicit selection (a list or the sentinel) that a widget should sync to;
// "", nil and other scalars are not adoptable.
func DecodeSet(raw any) (v SetValue, adoptable bool) {
	switch x := raw.(type) {
	case nil:
		return SetValue{Kind: SetAll}, false
	case string:
		switch x {
		case "":
			return SetValue{Kind: SetAll}, false
		case NoMatchSentinel:
			return SetValue{Kind: SetNone}, true
		}
		return SetValue{Kind: SetAny, Values: []string{x}}, false
	case []string:
		if len(x) == 0 {
			return SetValue{Kind: SetNone}, true
		}
		return SetValue{Kind: SetAny, Values: append([]string(nil), x...)}, true
	case []any:
		vals := make([]string, 0, len(x))
		for _, e := range x {
			vals = append(vals, row.Text(e))
		}
		if len(vals) == 0 {
			return SetValue{Kind: SetNone}, true
		}
		return SetValue{Kind: SetAny, Values: vals}, true
	}
	return SetValue{Kind: SetAny, Values: []string{row.Text(raw)}}, false
}

// MatchSet is the set-filter predicate. Row values are compared by their
// display text, so 0 matches "0" and nil matches "".
func MatchSet(header, rowValue any) bool {
	v, _ := DecodeSet(header)
	switch v.Kind {
	case SetAll:
		return true
	case SetNone:
		return false
	}
	s := row.Text(rowValue)
	for _, want := range v.Values {
		if want == s {
			return true
		}
	}
	return false
}
