// Package sloghooks reports lrucache events through log/slog. Keys are
// redacted (SHA-256 prefix by default) and hot events can be sampled.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/lrucache"
)

type Options struct {
	// Sampling of hot-path events; 0 logs none, 1 logs all, n logs every nth.
	HitEvery  uint64
	MissEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ lrucache.Hooks = (*Hooks)(nil)

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
	switch n {
	case 0:
		return false
	case 1:
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(storageKey string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("lrucache.hit", "key", h.redact(storageKey))
}

func (h *Hooks) Miss(storageKey string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("lrucache.miss", "key", h.redact(storageKey))
}

func (h *Hooks) DeleteFailed(storageKeys []string, err error) {
	if h.l == nil {
		return
	}
	keys := make([]string, len(storageKeys))
	for i, k := range storageKeys {
		keys[i] = h.redact(k)
	}
	h.l.Error("lrucache.delete_failed", "keys", keys, "err", err)
}

func (h *Hooks) CleanDeleteFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("lrucache.clean_delete_failed", "key", h.redact(storageKey), "err", err)
}

func (h *Hooks) LockContended(lockKey string) {
	if h.l == nil {
		return
	}
	h.l.Info("lrucache.lock_contended", "key", h.redact(lockKey))
}

func (h *Hooks) PingFailed(err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("lrucache.ping_failed", "err", err)
}

func (h *Hooks) Connected(addr string) {
	if h.l == nil {
		return
	}
	h.l.Info("lrucache.connected", "addr", addr)
}

func (h *Hooks) ConnectionError(addr string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("lrucache.connection_error", "addr", addr, "err", err)
}
