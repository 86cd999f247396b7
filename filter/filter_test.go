package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestEncodeSet(t *testing.T) {
	all := []string{"A", "B", "C"}
	assert.Equal(t, NoMatchSentinel, EncodeSet(nil, all))
	assert.Equal(t, "", EncodeSet([]string{"A", "B", "C"}, all))
	assert.Equal(t, []string{"A", "C"}, EncodeSet([]string{"A", "C"}, all))

	sel := []string{"A"}
	out := EncodeSet(sel, all).([]string)
	out[0] = "Z"
	assert.Equal(t, "A", sel[0], "encoded list must not alias the selection")
}

func TestDecodeSet(t *testing.T) {
	cases := []struct {
		name      string
		raw       any
		kind      SetKind
		values    []string
		adoptable bool
	}{
		{"nil", nil, SetAll, nil, false},
		{"empty string", "", SetAll, nil, false},
		{"sentinel", NoMatchSentinel, SetNone, nil, true},
		{"list", []string{"X", "Y"}, SetAny, []string{"X", "Y"}, true},
		{"restored list", []any{"X", 1.5}, SetAny, []string{"X", "1.5"}, true},
		{"empty list", []string{}, SetNone, nil, true},
		{"scalar", "Duke", SetAny, []string{"Duke"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, adoptable := DecodeSet(tc.raw)
			assert.Equal(t, tc.kind, v.Kind)
			assert.Equal(t, tc.values, v.Values)
			assert.Equal(t, tc.adoptable, adoptable)
		})
	}
}

func TestSetValueEncodeRoundTrip(t *testing.T) {
	for _, raw := range []any{"", NoMatchSentinel, []string{"A", "B"}} {
		v, _ := DecodeSet(raw)
		assert.Equal(t, raw, v.Encode())
	}
}

func TestMatchSet(t *testing.T) {
	assert.True(t, MatchSet("", "anything"))
	assert.True(t, MatchSet(nil, nil))
	assert.False(t, MatchSet(NoMatchSentinel, "A"))
	assert.True(t, MatchSet([]string{"A", "B"}, "B"))
	assert.False(t, MatchSet([]string{"A", "B"}, "C"))
	assert.True(t, MatchSet("A", "A"))
	assert.False(t, MatchSet("A", "B"))

	// numbers compare by display text
	assert.True(t, MatchSet([]string{"12.5"}, 12.5))
	assert.True(t, MatchSet([]string{"0"}, 0.0))
	assert.False(t, MatchSet([]string{"A"}, nil))
	assert.True(t, MatchSet([]string{""}, nil))
}

func TestParseBound(t *testing.T) {
	assert.Nil(t, ParseBound(""))
	assert.Nil(t, ParseBound("   "))
	assert.Nil(t, ParseBound("abc"))
	assert.Equal(t, ptr(-110), ParseBound("-110"))
	assert.Equal(t, ptr(5), ParseBound("+5"))
	assert.Equal(t, ptr(2.5), ParseBound(" 2.5x"))
}

func TestNewRange(t *testing.T) {
	assert.Nil(t, NewRange("", "nope"))
	assert.Equal(t, Range{Min: ptr(1)}, NewRange("1", ""))
	assert.Equal(t, Range{Min: ptr(1), Max: ptr(3)}, NewRange("1", "3"))
}

func TestMatchRange(t *testing.T) {
	r := Range{Min: ptr(-5), Max: ptr(5)}

	assert.True(t, MatchRange(nil, "x"))
	assert.True(t, MatchRange(Range{}, nil))

	assert.False(t, MatchRange(r, nil))
	assert.False(t, MatchRange(r, ""))
	assert.False(t, MatchRange(r, "-"))
	assert.False(t, MatchRange(r, "abc"))

	assert.True(t, MatchRange(r, -5.0))
	assert.True(t, MatchRange(r, 5.0))
	assert.True(t, MatchRange(r, "+3"))
	assert.False(t, MatchRange(r, 5.01))
	assert.False(t, MatchRange(r, "-110"))

	assert.True(t, MatchRange(Range{Min: ptr(100)}, "+150"))
	assert.False(t, MatchRange(Range{Max: ptr(-100)}, -99.0))
	assert.True(t, MatchRange(&r, 0.0))
}

func TestMatchRangeAcceptsRestoredMap(t *testing.T) {
	h := map[string]any{"min": 2.0, "max": nil}
	assert.True(t, MatchRange(h, 2.0))
	assert.False(t, MatchRange(h, 1.0))
	assert.True(t, MatchRange(map[string]any{"min": nil, "max": nil}, nil))
}

func TestMatchBankroll(t *testing.T) {
	assert.True(t, MatchBankroll(250.0, nil))
	assert.True(t, MatchBankroll(nil, "x"))
}

func TestMatchLike(t *testing.T) {
	assert.True(t, MatchLike("", "anything"))
	assert.True(t, MatchLike("duke", "Duke @ UNC, Feb 15, 6:00 PM EST"))
	assert.False(t, MatchLike("kansas", "Duke @ UNC"))
	assert.False(t, MatchLike("x", nil))
}
