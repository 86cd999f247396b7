package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/unkn0wn-root/oddsgrid"
	asynchook "github.com/unkn0wn-root/oddsgrid/hooks/async"
	"github.com/unkn0wn-root/oddsgrid/internal/config"
	logruslog "github.com/unkn0wn-root/oddsgrid/log/logrus"
	sloglog "github.com/unkn0wn-root/oddsgrid/log/slog"
	zaplog "github.com/unkn0wn-root/oddsgrid/log/zap"
	"github.com/unkn0wn-root/oddsgrid/session"
	"github.com/unkn0wn-root/oddsgrid/sloghooks"
)

// runtime is what a command needs to talk to the backend.
type runtime struct {
	session *session.Session
	log     oddsgrid.Logger
	hooks   *asynchook.Hooks
	sync    func()
}

func newLogger(cfg config.LogConfig, w io.Writer) (oddsgrid.Logger, func(), error) {
	nop := func() {}
	switch strings.ToLower(cfg.Backend) {
	case "zap":
		l, err := zaplog.New(cfg.Level)
		if err != nil {
			return nil, nop, err
		}
		return l, func() { _ = l.Sync() }, nil
	case "logrus":
		l, err := logruslog.New(w, cfg.Level)
		return l, nop, err
	case "slog":
		l, err := sloglog.New(w, cfg.Level)
		return l, nop, err
	}
	return nil, nop, fmt.Errorf("unknown log backend %q", cfg.Backend)
}

func newHooks(cfg config.LogConfig, w io.Writer) *asynchook.Hooks {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		lvl = slog.LevelWarn
	}
	raw := sloghooks.New(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), sloghooks.Options{
		SelfHealEvery:   10,
		FetchRetryEvery: 1,
	})
	return asynchook.New(raw, 1, 1024)
}

func newRuntime(ctx context.Context, cfg *config.Config, stderr io.Writer) (*runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	log, syncLog, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}
	hooks := newHooks(cfg.Log, stderr)

	s, err := session.New(ctx, session.Config{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		PageSize:       cfg.PageSize,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
		Namespace:      cfg.Cache.Namespace,
		KeyPrefix:      cfg.KeyPrefix,
		TTL:            cfg.Cache.TTL,
		Provider:       cfg.Cache.Provider,
		RedisURL:       cfg.Cache.RedisURL,
		Codec:          cfg.Cache.Codec,
		MaxDecodeBytes: cfg.Cache.MaxDecodeBytes,
		Coalesce:       cfg.Coalesce,
		DisableCache:   cfg.Cache.Disabled,
		Logger:         log,
		Hooks:          hooks,
	})
	if err != nil {
		hooks.Close()
		syncLog()
		return nil, err
	}
	return &runtime{session: s, log: log, hooks: hooks, sync: syncLog}, nil
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.session.Close(ctx); err != nil {
		r.log.Warn("closing session", oddsgrid.Fields{"err": err})
	}
	r.hooks.Close()
	if n := r.hooks.Dropped(); n > 0 {
		r.log.Warn("hook events dropped", oddsgrid.Fields{"dropped": n})
	}
	r.sync()
}
