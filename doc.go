// Package oddsgrid is the data layer behind a filterable odds table: a shared
// result cache for paginated REST row sets plus the types the fetch, source and
// widget packages share (Logger, Hooks, typed errors).
//
// Components:
//   - Provider: byte store with TTL (e.g. Ristretto, BigCache, Redis).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - GenStore: generation counter per key. Local (in-process) by default,
//     optional Redis implementation when several processes share a cache.
//
// Keys:
//
//	rows:<ns>:<key>  - one row set per endpoint key (e.g. rows:odds:cbb_CBBallGameOdds)
//
// Each entry is framed with the time it was stored. Get treats an entry as
// absent once it is TTL old (5 minutes by default) and deletes it.
//
// Refresh pattern:
//
//	obs  := cache.SnapshotGen(k) // before the fetch
//	rows := fetch(k)
//	_    = cache.SetWithGen(ctx, k, rows, obs) // dropped if Invalidate ran meanwhile
package oddsgrid
