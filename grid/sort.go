package grid

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/unkn0wn-root/oddsgrid/format"
	"github.com/unkn0wn-root/oddsgrid/row"
)

type Dir string

const (
	Asc  Dir = "asc"
	Desc Dir = "desc"
)

// Sorter is one level of a (possibly multi-column) sort.
type Sorter struct {
	Field string `json:"column"`
	Dir   Dir    `json:"dir"`
}

// CompareFunc orders two cell values; negative when a sorts first.
type CompareFunc func(a, b any) int

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func StringCompare(a, b any) int { return strings.Compare(row.Text(a), row.Text(b)) }

// NumberCompare sorts non-numeric values first.
func NumberCompare(a, b any) int {
	fa, oka := row.Float(a)
	fb, okb := row.Float(b)
	switch {
	case !oka && !okb:
		return 0
	case !oka:
		return -1
	case !okb:
		return 1
	}
	return cmpFloat(fa, fb)
}

// AutoCompare compares numerically when both values are numbers, else as text.
func AutoCompare(a, b any) int {
	if _, ok := row.Float(a); ok {
		if _, ok := row.Float(b); ok {
			return NumberCompare(a, b)
		}
	}
	return StringCompare(a, b)
}

const missingKey = -99999

// OddsCompare orders American odds; missing, unparseable and zero values sort lowest.
func OddsCompare(a, b any) int { return cmpFloat(oddsKey(a), oddsKey(b)) }

func oddsKey(v any) float64 {
	if row.IsBlank(v) || v == format.Placeholder {
		return missingKey
	}
	n, ok := format.ParseInt(v)
	if !ok || n == 0 {
		return missingKey
	}
	return float64(n)
}

// PercentCompare orders fractions; missing, unparseable and zero values sort lowest.
func PercentCompare(a, b any) int { return cmpFloat(percentKey(a), percentKey(b)) }

func percentKey(v any) float64 {
	if row.IsBlank(v) || v == format.Placeholder {
		return missingKey
	}
	f, ok := row.Float(v)
	if !ok || f == 0 {
		return missingKey
	}
	return f
}

var matchupTime = regexp.MustCompile(`(?i),\s*(\w+)\s+(\d+),\s*(\d+):(\d+)\s*(AM|PM)\s*`)

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March, "Apr": time.April,
	"May": time.May, "Jun": time.June, "Jul": time.July, "Aug": time.August,
	"Sep": time.September, "Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// MatchupTime extracts the tip-off from "Team A @ Team B, Feb 15, 6:00 PM EST".
// The year is fixed so only month/day/time order matters. ok is false when absent.
func MatchupTime(s string) (time.Time, bool) {
	m := matchupTime.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	mon, ok := months[m[1]]
	if !ok {
		mon = time.January
	}
	day, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	minute, _ := strconv.Atoi(m[4])
	switch strings.ToUpper(m[5]) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return time.Date(2026, mon, day, hour, minute, 0, 0, time.UTC), true
}

// MatchupTimeCompare orders matchups by tip-off; matchups without a time sort first.
func MatchupTimeCompare(a, b any) int {
	ta, oka := MatchupTime(row.Text(a))
	tb, okb := MatchupTime(row.Text(b))
	switch {
	case !oka && !okb:
		return 0
	case !oka:
		return -1
	case !okb:
		return 1
	}
	return ta.Compare(tb)
}
