package oddsgrid

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	c "github.com/unkn0wn-root/oddsgrid/codec"
	gen "github.com/unkn0wn-root/oddsgrid/genstore"
	"github.com/unkn0wn-root/oddsgrid/internal/wire"
	pr "github.com/unkn0wn-root/oddsgrid/provider"
)

const (
	defaultGenRetention = 24 * time.Hour
	defaultSweep        = time.Hour
)

type cache[V any] struct {
	ns             string
	provider       pr.Provider
	codec          c.Codec[V]
	log            Logger
	hooks          Hooks
	clock          clockwork.Clock
	enabled        bool
	ttl            time.Duration
	sweepInterval  time.Duration
	genRetention   time.Duration
	computeSetCost SetCostFunc
	gen            gen.GenStore
}

var _ Cache[int] = (*cache[int])(nil)

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("oddsgrid: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("oddsgrid: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("oddsgrid: namespace is required")
	}

	c := &cache[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.clock = coalesce[clockwork.Clock](opts.Clock, clockwork.NewRealClock())
	c.ttl = coalesce[time.Duration](opts.TTL, DefaultTTL)
	c.sweepInterval = coalesce[time.Duration](opts.CleanupInterval, defaultSweep)
	c.genRetention = coalesce[time.Duration](opts.GenRetention, defaultGenRetention)

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(_ string, raw []byte) int64 { return int64(len(raw)) }
	}

	if opts.GenStore != nil {
		c.gen = opts.GenStore
	} else {
		// default to in-process generations with periodic cleanup
		c.gen = gen.NewLocalGenStoreWithClock(c.clock, c.sweepInterval, c.genRetention)
	}

	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	// Close gen store first (best effort)
	if c.gen != nil {
		_ = c.gen.Close(ctx)
	}
	if c.provider != nil {
		return c.provider.Close(ctx)
	}
	return nil
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	k := c.rowsKey(key)
	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	g, storedAt, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		c.selfHeal(ctx, k, "corrupt")
		return zero, false, nil
	}
	// validate generation
	if g != c.snapshotGen(k) {
		c.selfHeal(ctx, k, "gen_mismatch")
		return zero, false, nil
	}
	if age := c.clock.Since(storedAt); age >= c.ttl {
		_ = c.provider.Del(ctx, k)
		c.hooks.EntryExpired(k, age)
		c.log.Debug("entry expired", Fields{"key": key, "age": age})
		return zero, false, nil
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.selfHeal(ctx, k, "value_decode")
		return zero, false, nil
	}
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V) error {
	return c.SetWithGen(ctx, key, value, c.SnapshotGen(key))
}

func (c *cache[V]) SetWithGen(ctx context.Context, key string, value V, observedGen uint64) error {
	if !c.enabled {
		return nil
	}
	k := c.rowsKey(key)
	if c.snapshotGen(k) != observedGen {
		// generation moved; skip stale write
		c.log.Debug("SetWithGen skipped (gen mismatch)", Fields{"key": key, "obs": observedGen})
		return nil
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	wireb := wire.EncodeEntry(observedGen, c.clock.Now(), payload)
	ok, err := c.provider.Set(ctx, k, wireb, c.computeSetCost(k, wireb), c.ttl)
	if err != nil {
		return err
	}
	if !ok {
		c.hooks.ProviderSetRejected(k)
		c.log.Debug("SetWithGen rejected by provider (pressure)", Fields{"key": key})
	}
	return nil
}

func (c *cache[V]) Invalidate(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	k := c.rowsKey(key)
	newGen, bumpErr := c.bumpGen(ctx, k)
	delErr := c.provider.Del(ctx, k)
	if bumpErr != nil && delErr != nil {
		c.hooks.InvalidateOutage(key, bumpErr, delErr)
		return &InvalidateError{Key: key, BumpErr: bumpErr, DelErr: delErr}
	}
	c.log.Debug("invalidated key (bumped gen + cleared entry)", Fields{"key": key, "newGen": newGen})
	return nil
}

func (c *cache[V]) SnapshotGen(key string) uint64 {
	return c.snapshotGen(c.rowsKey(key))
}

func (c *cache[V]) selfHeal(ctx context.Context, storageKey, reason string) {
	_ = c.provider.Del(ctx, storageKey)
	c.hooks.SelfHeal(storageKey, reason)
}

func (c *cache[V]) snapshotGen(storageKey string) uint64 {
	g, err := c.gen.Snapshot(context.Background(), storageKey)
	if err != nil {
		// Treat as 0; entries written under a later gen self-heal on read
		c.hooks.GenSnapshotError(storageKey, err)
		c.log.Warn("gen snapshot error", Fields{"key": storageKey, "err": err})
		return 0
	}
	return g
}

func (c *cache[V]) bumpGen(ctx context.Context, storageKey string) (uint64, error) {
	g, err := c.gen.Bump(ctx, storageKey)
	if err != nil {
		c.hooks.GenBumpError(storageKey, err)
		c.log.Error("gen bump error", Fields{"key": storageKey, "err": err})
		return 0, err
	}
	return g, nil
}

func (c *cache[V]) rowsKey(userKey string) string {
	// isolate by namespace
	return "rows:" + c.ns + ":" + userKey
}
