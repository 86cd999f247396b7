// Package bankroll keeps the per-column bankroll amounts entered by the user.
// One Store lives for the whole session and is shared by every table.
package bankroll

import (
	"math"
	"strings"
	"sync"

	"github.com/unkn0wn-root/oddsgrid/row"
)

type Store struct {
	mu sync.RWMutex
	m  map[string]float64
}

func NewStore() *Store { return &Store{m: make(map[string]float64)} }

// Get returns the bankroll for key; 0 when unset.
func (s *Store) Get(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[key]
}

// Set stores amount, clamping negatives and NaN to 0.
func (s *Store) Set(key string, amount float64) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	s.mu.Lock()
	s.m[key] = amount
	s.mu.Unlock()
}

func (s *Store) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out
}

// Parse reads a bankroll input. Blank, non-numeric and negative input is 0.
func Parse(text string) float64 {
	f, ok := row.ParseFloat(strings.TrimSpace(text))
	if !ok || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
