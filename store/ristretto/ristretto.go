// Package ristretto is an in-process store.Store backed by dgraph-io/ristretto.
package ristretto

import (
	"context"
	"errors"
	"iter"
	"sort"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/resultcache/store"
)

// Provider keeps an index of written keys because ristretto cannot enumerate
// its contents. Evicted keys linger in the index until a read misses them or
// a scan deletes them; deleting an absent key is harmless.
type Provider struct {
	c *rc.Cache

	mu    sync.Mutex
	index map[string]struct{}

	closeOnce sync.Once
}

var _ store.Store = (*Provider)(nil)

// Config mirrors ristretto's sizing knobs. MaxCost is in bytes: an entry
// costs its payload size.
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, index: make(map[string]struct{})}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		p.forget(key)
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		p.forget(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set waits for the write buffer so a following Get observes the value.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if !p.c.SetWithTTL(key, value, int64(len(value))+1, ttl) {
		return store.ErrRejected
	}
	p.c.Wait()
	p.mu.Lock()
	p.index[key] = struct{}{}
	p.mu.Unlock()
	return nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	p.forget(key)
	return nil
}

func (p *Provider) Scan(_ context.Context, match string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		p.mu.Lock()
		keys := make([]string, 0, len(p.index))
		for k := range p.index {
			if store.Match(match, k) {
				keys = append(keys, k)
			}
		}
		p.mu.Unlock()
		sort.Strings(keys)
		for batch, err := range store.Batches(keys, store.DefaultScanBatch) {
			if !yield(batch, err) {
				return
			}
		}
	}
}

func (p *Provider) DelMany(ctx context.Context, keys []string) error {
	for _, k := range keys {
		_ = p.Del(ctx, k)
	}
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.closeOnce.Do(func() {
		p.c.Wait()
		p.c.Close()
	})
	return nil
}

// Helper to expose metrics if desired by the application (not part of store.Store).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }

func (p *Provider) forget(key string) {
	p.mu.Lock()
	delete(p.index, key)
	p.mu.Unlock()
}
