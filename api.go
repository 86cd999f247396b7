package oddsgrid

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	c "github.com/unkn0wn-root/oddsgrid/codec"
	gen "github.com/unkn0wn-root/oddsgrid/genstore"
	pr "github.com/unkn0wn-root/oddsgrid/provider"
)

// DefaultTTL is how long a fetched row set is served from cache.
const DefaultTTL = 5 * time.Minute

type SetCostFunc func(key string, raw []byte) int64

// Cache is the shared, provider-agnostic result cache. Entries carry the time
// they were stored and the generation they were fetched under; a read past the
// TTL or under a newer generation is a miss.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Set(ctx context.Context, key string, value V) error
	// SetWithGen writes only if the key's generation still equals observedGen.
	SetWithGen(ctx context.Context, key string, value V, observedGen uint64) error
	Invalidate(ctx context.Context, key string) error

	// SnapshotGen is taken before a fetch and handed back to SetWithGen.
	SnapshotGen(key string) uint64
}

// Options tune the behavior of the result cache.
// Only Namespace, Provider and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions. e.g. "odds"
	Provider  pr.Provider
	Codec     c.Codec[V]

	Logger          Logger          // if nil, NopLogger is used
	Hooks           Hooks           // if nil, NopHooks is used
	TTL             time.Duration   // 0 => DefaultTTL
	Clock           clockwork.Clock // nil => real clock
	CleanupInterval time.Duration   // 0 => 1h
	GenRetention    time.Duration   // 0 => 24h
	Disabled        bool            // default false (enabled)
	ComputeSetCost  SetCostFunc     // default len(raw)
	GenStore        gen.GenStore    // nil => LocalGenStore (in-process)
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
