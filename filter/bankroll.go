package filter

// MatchBankroll never filters; the bankroll header only rescales a column.
func MatchBankroll(_, _ any) bool { return true }
