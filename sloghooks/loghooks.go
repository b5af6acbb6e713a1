package sloghooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/resultcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ resultcache.Hooks = (*Hooks)(nil)

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

func (h *Hooks) Hit(storageKey string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("resultcache.hit", "key", h.redact(storageKey))
}

// Miss logs plain misses at debug and failure-driven misses at warn.
func (h *Hooks) Miss(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	level := slog.LevelDebug
	if reason == resultcache.ReasonTransport || reason == resultcache.ReasonDecode {
		level = slog.LevelWarn
	}
	h.l.Log(context.Background(), level, "resultcache.miss",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) SetDropped(storageKey, reason string) {
	if h.l == nil {
		return
	}
	h.l.Warn("resultcache.set_dropped",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) RemoveFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("resultcache.remove_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) Cleared(ns string, removed int, err error) {
	if h.l == nil {
		return
	}
	if err != nil {
		h.l.Error("resultcache.clear_failed",
			"ns", ns,
			"err", err)
		return
	}
	h.l.Info("resultcache.cleared",
		"ns", ns,
		"removed", removed)
}
