package oddsgrid

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache and fetcher call them on hot paths.
type Hooks interface {
	// An entry was deleted by the cache on read.
	// reason ∈ {"corrupt", "gen_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// An entry was read at or past its TTL and evicted.
	EntryExpired(storageKey string, age time.Duration)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// GenStore errors (snapshot or bump).
	GenSnapshotError(storageKey string, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and delete failed during Invalidate (likely backend outage).
	InvalidateOutage(key string, bumpErr, delErr error)

	// One page request failed; attempt is 1-based.
	FetchRetry(endpoint string, offset, attempt int, err error)

	// Pagination stopped early; rows is what was accumulated before the failure.
	FetchAborted(endpoint string, rows int, err error)

	// The sanitizer discarded rows with no usable content.
	RowsDropped(source string, n int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)               {}
func (NopHooks) EntryExpired(string, time.Duration)    {}
func (NopHooks) ProviderSetRejected(string)            {}
func (NopHooks) GenSnapshotError(string, error)        {}
func (NopHooks) GenBumpError(string, error)            {}
func (NopHooks) InvalidateOutage(string, error, error) {}
func (NopHooks) FetchRetry(string, int, int, error)    {}
func (NopHooks) FetchAborted(string, int, error)       {}
func (NopHooks) RowsDropped(string, int)               {}
