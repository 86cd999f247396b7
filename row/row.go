// Package row holds the open record type served by the odds backend and the
// value coercions shared by the sanitizer, filters and formatters.
//
// Coercions follow the semantics the browser grid applies to cell values:
// numbers render without a trailing ".0", "null"/"undefined" strings count as
// missing, and numeric parsing accepts a leading numeric prefix ("+150", "12.5u").
package row

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Row is one record: field name -> scalar (float64, string, bool or nil).
type Row map[string]any

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsBlank reports whether v is nil or the empty string.
func IsBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

// Text converts v to its display string. nil becomes "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case interface{ String() string }:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// IsMissingText reports whether v has no usable distinct value: blank, or the
// literal strings "null" / "undefined".
func IsMissingText(v any) bool {
	if IsBlank(v) {
		return true
	}
	s := Text(v)
	return s == "" || s == "null" || s == "undefined"
}

var numPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Float parses v as a number. Strings are trimmed and parsed by their leading
// numeric prefix; anything without one reports ok=false.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case bool:
		return 0, false
	}
	return ParseFloat(Text(v))
}

// ParseFloat parses the leading numeric prefix of s.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	m := numPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int parses the integer part of v, truncating toward zero.
func Int(v any) (int64, bool) {
	f, ok := Float(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
