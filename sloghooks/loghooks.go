package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/oddsgrid"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery   uint64
	ExpiredEvery    uint64
	FetchRetryEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	// Endpoints are not redacted; they are not secret.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	expiredCtr  atomic.Uint64
	retryCtr    atomic.Uint64
}

var _ oddsgrid.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("oddsgrid.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) EntryExpired(storageKey string, age time.Duration) {
	if h.l == nil || !sample(h.opts.ExpiredEvery, &h.expiredCtr) {
		return
	}
	h.l.Debug("oddsgrid.entry_expired",
		"key", h.redact(storageKey),
		"age", age)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("oddsgrid.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) GenSnapshotError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("oddsgrid.gen_snapshot_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("oddsgrid.gen_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) InvalidateOutage(key string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("oddsgrid.invalidate_outage",
		"key", h.redact(key),
		"bump_err", bumpErr,
		"del_err", delErr)
}

func (h *Hooks) FetchRetry(endpoint string, offset, attempt int, err error) {
	if h.l == nil || !sample(h.opts.FetchRetryEvery, &h.retryCtr) {
		return
	}
	h.l.Info("oddsgrid.fetch_retry",
		"endpoint", endpoint,
		"offset", offset,
		"attempt", attempt,
		"err", err)
}

func (h *Hooks) FetchAborted(endpoint string, rows int, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("oddsgrid.fetch_aborted",
		"endpoint", endpoint,
		"rows", rows,
		"err", err)
}

func (h *Hooks) RowsDropped(source string, n int) {
	if h.l == nil {
		return
	}
	h.l.Warn("oddsgrid.rows_dropped",
		"source", source,
		"dropped", n)
}
