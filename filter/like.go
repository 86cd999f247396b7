package filter

import (
	"strings"

	"github.com/unkn0wn-root/oddsgrid/row"
)

// MatchLike is the default text header filter: case-insensitive substring.
func MatchLike(header, rowValue any) bool {
	needle := row.Text(header)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(row.Text(rowValue)), strings.ToLower(needle))
}
