// Package session wires one application session: a shared result cache, the
// bankroll store and the data source every table loads through. Nothing here
// is global; construct a Session and hand it to tables and widgets.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/unkn0wn-root/oddsgrid"
	"github.com/unkn0wn-root/oddsgrid/bankroll"
	"github.com/unkn0wn-root/oddsgrid/codec"
	"github.com/unkn0wn-root/oddsgrid/fetch"
	"github.com/unkn0wn-root/oddsgrid/genstore"
	"github.com/unkn0wn-root/oddsgrid/grid"
	pr "github.com/unkn0wn-root/oddsgrid/provider"
	bcp "github.com/unkn0wn-root/oddsgrid/provider/bigcache"
	rdp "github.com/unkn0wn-root/oddsgrid/provider/redis"
	rsp "github.com/unkn0wn-root/oddsgrid/provider/ristretto"
	"github.com/unkn0wn-root/oddsgrid/row"
	"github.com/unkn0wn-root/oddsgrid/sanitize"
	"github.com/unkn0wn-root/oddsgrid/source"
	"github.com/unkn0wn-root/oddsgrid/widget"
)

// Provider names accepted by Config.Provider.
const (
	ProviderRistretto = "ristretto"
	ProviderBigcache  = "bigcache"
	ProviderRedis     = "redis"
)

// Codec names accepted by Config.Codec.
const (
	CodecJSON     = "json"
	CodecCBOR     = "cbor"
	CodecMsgpack  = "msgpack"
	CodecProtobuf = "protobuf"
)

const DefaultNamespace = "odds"

var ErrRedisURL = errors.New("session: redis provider needs a redis URL")

type Config struct {
	// Remote API. BaseURL is required unless Fetcher is set.
	BaseURL    string
	APIKey     string
	PageSize   int
	MaxRetries int
	RetryDelay time.Duration
	HTTPClient *http.Client

	Namespace      string        // "" => DefaultNamespace
	KeyPrefix      string        // "" => source.DefaultKeyPrefix
	TTL            time.Duration // 0 => oddsgrid.DefaultTTL
	Provider       string        // "" => ristretto
	RedisURL       string        // required for the redis provider
	Codec          string        // "" => json
	MaxDecodeBytes int           // 0 => unlimited
	Coalesce       bool
	DisableCache   bool

	Clock  clockwork.Clock
	Logger oddsgrid.Logger
	Hooks  oddsgrid.Hooks

	// Overrides, mostly for tests.
	Fetcher       source.Fetcher
	CacheProvider pr.Provider
}

// Session owns the per-session state shared by every table.
type Session struct {
	Cache    oddsgrid.Cache[[]row.Row]
	Bankroll *bankroll.Store
	Source   *source.DataSource
	Clock    clockwork.Clock
	Logger   oddsgrid.Logger
}

func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = oddsgrid.NopLogger{}
	}
	if cfg.Hooks == nil {
		cfg.Hooks = oddsgrid.NopHooks{}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.TTL <= 0 {
		cfg.TTL = oddsgrid.DefaultTTL
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		f, err := fetch.New(fetch.Config{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			PageSize:   cfg.PageSize,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Client:     cfg.HTTPClient,
			Logger:     cfg.Logger,
			Hooks:      cfg.Hooks,
		})
		if err != nil {
			return nil, err
		}
		fetcher = f
	}

	cdc, err := newCodec(cfg.Codec, cfg.MaxDecodeBytes)
	if err != nil {
		return nil, err
	}

	prov, gens, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cache, err := oddsgrid.New[[]row.Row](oddsgrid.Options[[]row.Row]{
		Namespace: cfg.Namespace,
		Provider:  prov,
		Codec:     cdc,
		Logger:    cfg.Logger,
		Hooks:     cfg.Hooks,
		TTL:       cfg.TTL,
		Clock:     cfg.Clock,
		Disabled:  cfg.DisableCache,
		GenStore:  gens,
	})
	if err != nil {
		_ = prov.Close(ctx)
		return nil, err
	}

	src, err := source.New(source.Options{
		Cache:            cache,
		Fetcher:          fetcher,
		Sanitizer:        &sanitize.Sanitizer{Logger: cfg.Logger, Hooks: cfg.Hooks},
		KeyPrefix:        cfg.KeyPrefix,
		Logger:           cfg.Logger,
		CoalesceInflight: cfg.Coalesce,
	})
	if err != nil {
		_ = cache.Close(ctx)
		return nil, err
	}

	cfg.Logger.Debug("session ready", oddsgrid.Fields{
		"namespace": cfg.Namespace, "provider": providerName(cfg.Provider), "codec": codecName(cfg.Codec),
	})
	return &Session{
		Cache:    cache,
		Bankroll: bankroll.NewStore(),
		Source:   src,
		Clock:    cfg.Clock,
		Logger:   cfg.Logger,
	}, nil
}

func providerName(s string) string {
	if s == "" {
		return ProviderRistretto
	}
	return strings.ToLower(s)
}

func codecName(s string) string {
	if s == "" {
		return CodecJSON
	}
	return strings.ToLower(s)
}

// newProvider returns the byte store and, for redis, a generation store sharing
// its client so refreshes invalidate across processes. A nil GenStore means the
// cache's in-process default.
func newProvider(ctx context.Context, cfg Config) (pr.Provider, genstore.GenStore, error) {
	if cfg.CacheProvider != nil {
		return cfg.CacheProvider, nil, nil
	}
	switch providerName(cfg.Provider) {
	case ProviderRistretto:
		p, err := rsp.New(rsp.DefaultConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("session: ristretto: %w", err)
		}
		return p, nil, nil
	case ProviderBigcache:
		p, err := bcp.New(ctx, bcp.Config{LifeWindow: cfg.TTL, CleanWindow: time.Minute})
		if err != nil {
			return nil, nil, fmt.Errorf("session: bigcache: %w", err)
		}
		return p, nil, nil
	case ProviderRedis:
		if cfg.RedisURL == "" {
			return nil, nil, ErrRedisURL
		}
		p, err := rdp.NewFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return p, genstore.NewRedisGenStore(p.Client(), cfg.Namespace, 24*time.Hour), nil
	}
	return nil, nil, fmt.Errorf("session: unknown cache provider %q", cfg.Provider)
}

func newCodec(name string, maxDecode int) (codec.Codec[[]row.Row], error) {
	var inner codec.Codec[[]row.Row]
	switch codecName(name) {
	case CodecJSON:
		inner = codec.JSON[[]row.Row]{}
	case CodecCBOR:
		c, err := codec.NewCBOR[[]row.Row](false)
		if err != nil {
			return nil, fmt.Errorf("session: cbor: %w", err)
		}
		inner = c
	case CodecMsgpack:
		inner = codec.Msgpack[[]row.Row]{}
	case CodecProtobuf:
		inner = codec.ProtoRows{}
	default:
		return nil, fmt.Errorf("session: unknown codec %q", name)
	}
	if maxDecode > 0 {
		return codec.LimitCodec[[]row.Row]{Inner: inner, MaxDecode: maxDecode}, nil
	}
	return inner, nil
}

// NewTable builds a table that loads endpoint through the session's source.
func (s *Session) NewTable(endpoint string, columns []grid.Column, sort ...grid.Sorter) *grid.Table {
	return grid.NewTable(grid.Options{
		Columns:     columns,
		Loader:      s.Source.Loader(endpoint),
		InitialSort: sort,
		Logger:      s.Logger,
	})
}

// Refresh drops endpoint's cached rows and reloads t through the source.
func (s *Session) Refresh(ctx context.Context, endpoint string, t *grid.Table) error {
	if err := s.Source.Refresh(ctx, endpoint); err != nil {
		s.Logger.Warn("refresh: invalidate failed", oddsgrid.Fields{"endpoint": endpoint, "err": err})
	}
	t.SaveState()
	if err := t.SetData(ctx); err != nil {
		return err
	}
	t.RestoreState()
	return nil
}

func (s *Session) SetFilter(g grid.Grid, field string) *widget.SetFilter {
	return widget.NewSetFilter(g, field, widget.SetFilterOptions{Clock: s.Clock, Logger: s.Logger})
}

func (s *Session) RangeFilter(g grid.Grid, field string) *widget.RangeFilter {
	return widget.NewRangeFilter(g, field, widget.InputOptions{Clock: s.Clock, Logger: s.Logger})
}

func (s *Session) BankrollInput(g grid.Grid, field, key string) *widget.Bankroll {
	return widget.NewBankroll(g, field, key, s.Bankroll, widget.InputOptions{Clock: s.Clock, Logger: s.Logger})
}

// Close releases the cache and its provider.
func (s *Session) Close(ctx context.Context) error {
	return s.Cache.Close(ctx)
}
