// Package format renders odds-table cells. Blank and non-numeric values render
// as a placeholder instead of failing.
package format

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/unkn0wn-root/oddsgrid/row"
)

const Placeholder = "-"

var hundred = decimal.NewFromInt(100)

var intPrefix = regexp.MustCompile(`^[+-]?\d+`)

// ParseInt reads the leading integer of v's text ("+150" => 150, "-110.5" => -110).
func ParseInt(v any) (int64, bool) {
	if f, isFloat := v.(float64); isFloat {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	}
	m := intPrefix.FindString(strings.TrimSpace(row.Text(v)))
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	return n, err == nil
}

func isDash(v any) bool {
	s, ok := v.(string)
	return ok && s == Placeholder
}

func number(v any) (decimal.Decimal, bool) {
	f, ok := row.Float(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// Odds renders American odds: "+150", "-110", "0"; "-" when missing.
func Odds(v any) string {
	if row.IsBlank(v) || isDash(v) {
		return Placeholder
	}
	n, ok := ParseInt(v)
	if !ok {
		return Placeholder
	}
	if n > 0 {
		return "+" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// Line renders a point line with one decimal; "" when missing.
func Line(v any) string {
	if row.IsBlank(v) {
		return ""
	}
	d, ok := number(v)
	if !ok {
		return ""
	}
	return d.StringFixed(1)
}

// Percent renders a fraction as a percentage with one decimal: 0.052 => "5.2%".
func Percent(v any) string {
	if row.IsBlank(v) || isDash(v) {
		return Placeholder
	}
	d, ok := number(v)
	if !ok {
		return Placeholder
	}
	return d.Mul(hundred).StringFixed(1) + "%"
}

// Kelly renders a kelly fraction as a dollar stake when bankroll > 0,
// otherwise as Percent does.
func Kelly(v any, bankroll float64) string {
	if row.IsBlank(v) || isDash(v) {
		return Placeholder
	}
	d, ok := number(v)
	if !ok {
		return Placeholder
	}
	if bankroll > 0 {
		return "$" + d.Mul(decimal.NewFromFloat(bankroll)).StringFixed(2)
	}
	return d.Mul(hundred).StringFixed(1) + "%"
}

// Link renders "Bet" for a non-empty URL.
func Link(v any) string {
	if row.IsBlank(v) || isDash(v) {
		return Placeholder
	}
	return "Bet"
}
