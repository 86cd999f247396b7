// Package source composes cache, fetcher and sanitizer into the single
// "rows for an endpoint" call that tables load through.
package source

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/oddsgrid"
	"github.com/unkn0wn-root/oddsgrid/row"
	"github.com/unkn0wn-root/oddsgrid/sanitize"
)

const DefaultKeyPrefix = "cbb_"

// Fetcher is satisfied by *fetch.Fetcher.
type Fetcher interface {
	FetchAll(ctx context.Context, endpoint string) ([]row.Row, error)
}

type Options struct {
	Cache     oddsgrid.Cache[[]row.Row] // required
	Fetcher   Fetcher                   // required
	Sanitizer *sanitize.Sanitizer       // nil => default primary fields, no logging
	KeyPrefix string                    // "" => DefaultKeyPrefix
	Logger    oddsgrid.Logger
	// CoalesceInflight shares one fetch between concurrent misses for the same key.
	CoalesceInflight bool
}

type DataSource struct {
	cache    oddsgrid.Cache[[]row.Row]
	fetcher  Fetcher
	san      *sanitize.Sanitizer
	prefix   string
	log      oddsgrid.Logger
	coalesce bool
	group    singleflight.Group
}

func New(opts Options) (*DataSource, error) {
	if opts.Cache == nil {
		return nil, errors.New("source: cache is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("source: fetcher is required")
	}
	ds := &DataSource{
		cache:    opts.Cache,
		fetcher:  opts.Fetcher,
		san:      opts.Sanitizer,
		prefix:   opts.KeyPrefix,
		log:      opts.Logger,
		coalesce: opts.CoalesceInflight,
	}
	if ds.san == nil {
		ds.san = &sanitize.Sanitizer{}
	}
	if ds.prefix == "" {
		ds.prefix = DefaultKeyPrefix
	}
	if ds.log == nil {
		ds.log = oddsgrid.NopLogger{}
	}
	return ds, nil
}

// Key is the cache key for endpoint.
func (d *DataSource) Key(endpoint string) string { return d.prefix + endpoint }

// Load returns the sanitized rows for endpoint, from cache when fresh.
// Fetch failures degrade to whatever rows were retrieved; the only error
// returned is ctx's.
func (d *DataSource) Load(ctx context.Context, endpoint string) ([]row.Row, error) {
	key := d.Key(endpoint)
	if rows, ok, err := d.cache.Get(ctx, key); err != nil {
		d.log.Warn("cache read failed", oddsgrid.Fields{"key": key, "err": err})
	} else if ok {
		d.log.Debug("cache hit", oddsgrid.Fields{"endpoint": endpoint})
		return rows, nil
	}

	if !d.coalesce {
		return d.fill(ctx, endpoint, key)
	}
	// The shared fill outlives any one caller; each caller still honours its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := d.group.DoChan(key, func() (any, error) {
		return d.fill(shared, endpoint, key)
	})
	select {
	case res := <-ch:
		rows, _ := res.Val.([]row.Row)
		return rows, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *DataSource) fill(ctx context.Context, endpoint, key string) ([]row.Row, error) {
	d.log.Debug("fetching from API", oddsgrid.Fields{"endpoint": endpoint})
	obs := d.cache.SnapshotGen(key)

	rows, err := d.fetcher.FetchAll(ctx, endpoint)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		d.log.Warn("serving partial rows", oddsgrid.Fields{"endpoint": endpoint, "rows": len(rows), "err": err})
	}

	rows = d.san.Clean(endpoint, rows)
	if rows == nil {
		rows = []row.Row{}
	}
	if err := d.cache.SetWithGen(ctx, key, rows, obs); err != nil {
		d.log.Warn("cache write failed", oddsgrid.Fields{"key": key, "err": err})
	}
	return rows, nil
}

// Refresh drops the cached rows for endpoint; the next Load fetches again.
// A Load already in flight will not write its result back.
func (d *DataSource) Refresh(ctx context.Context, endpoint string) error {
	return d.cache.Invalidate(ctx, d.Key(endpoint))
}

// Loader binds Load to endpoint, in the shape grid.Table expects.
func (d *DataSource) Loader(endpoint string) func(context.Context) ([]row.Row, error) {
	return func(ctx context.Context) ([]row.Row, error) {
		return d.Load(ctx, endpoint)
	}
}
