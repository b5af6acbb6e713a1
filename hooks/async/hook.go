// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/resultcache"
//	"github.com/unkn0wn-root/resultcache/hooks/async"
//	"github.com/unkn0wn-root/resultcache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    MissEvery: 100, // sample logs: ~every 100th miss
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := resultcache.New[[]Row](resultcache.Options[[]Row]{
//	    Connection: resultcache.ClientConfig{Client: rdb},
//	    Hooks:      hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/resultcache"
)

type Hooks struct {
	inner resultcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu     sync.RWMutex
	closed bool
}

var _ resultcache.Hooks = (*Hooks)(nil)

func New(inner resultcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				run(f)
			}
		}()
	}
	return h
}

// run keeps a panicking hook from killing its worker.
func run(f func()) {
	defer func() { _ = recover() }()
	f()
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(k string)           { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k, r string)       { h.try(func() { h.inner.Miss(k, r) }) }
func (h *Hooks) SetDropped(k, r string) { h.try(func() { h.inner.SetDropped(k, r) }) }
func (h *Hooks) RemoveFailed(k string, err error) {
	h.try(func() { h.inner.RemoveFailed(k, err) })
}
func (h *Hooks) Cleared(ns string, n int, err error) {
	h.try(func() { h.inner.Cleared(ns, n, err) })
}
