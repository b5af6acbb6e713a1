// Package bigcache is an in-process store.Store backed by allegro/bigcache.
// Handy for tests and single-process deployments that do not need Redis.
package bigcache

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/resultcache/store"
)

type Provider struct {
	c         *bc.BigCache
	closeOnce sync.Once
	closeErr  error
}

var _ store.Store = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Provider, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	conf.Verbose = false
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	return b, err == nil, err
}

// Set ignores ttl: BigCache does not support per-entry TTL and uses the
// global LifeWindow instead.
func (p *Provider) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	return p.c.Set(key, value)
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Scan snapshots matching keys with the shard iterator, then yields them in batches.
func (p *Provider) Scan(_ context.Context, match string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		var keys []string
		it := p.c.Iterator()
		for it.SetNext() {
			e, err := it.Value()
			if err != nil {
				yield(nil, err)
				return
			}
			if k := e.Key(); store.Match(match, k) {
				keys = append(keys, k)
			}
		}
		for batch, err := range store.Batches(keys, store.DefaultScanBatch) {
			if !yield(batch, err) {
				return
			}
		}
	}
}

func (p *Provider) DelMany(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if err := p.Del(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.closeOnce.Do(func() { p.closeErr = p.c.Close() })
	return p.closeErr
}
