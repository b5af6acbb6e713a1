// Package async moves log writes off the cache's call path.
//
//	inner := zerologadapter.Logger{L: zerolog.New(os.Stderr)}
//	l := asynclog.New(inner, 1, 1024)
//	defer l.Close()
//	cache, _ := resultcache.New(resultcache.Options[Row]{..., Logger: l})
//
// When the queue is full entries are dropped and counted.
package async

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/resultcache"
)

type Logger struct {
	inner   resultcache.Logger
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against sends on a closed queue
	closed  bool
	dropped atomic.Uint64
}

var _ resultcache.Logger = (*Logger)(nil)

func New(inner resultcache.Logger, workers, qlen int) *Logger {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	l := &Logger{inner: inner, q: make(chan func(), qlen)}
	l.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer l.wg.Done()
			for f := range l.q {
				run(f)
			}
		}()
	}
	return l
}

// Close drains queued entries and stops the workers.
func (l *Logger) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.q)
		l.mu.Unlock()
		l.wg.Wait()
	})
}

// Dropped reports how many entries were discarded.
func (l *Logger) Dropped() uint64 { return l.dropped.Load() }

func (l *Logger) try(f func()) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	select {
	case l.q <- f:
	default: // drop
		l.dropped.Add(1)
	}
}

func run(f func()) {
	defer func() { _ = recover() }()
	f()
}

func (l *Logger) Debug(msg string, f resultcache.Fields) { l.try(func() { l.inner.Debug(msg, f) }) }
func (l *Logger) Info(msg string, f resultcache.Fields)  { l.try(func() { l.inner.Info(msg, f) }) }
func (l *Logger) Warn(msg string, f resultcache.Fields)  { l.try(func() { l.inner.Warn(msg, f) }) }
func (l *Logger) Error(msg string, f resultcache.Fields) { l.try(func() { l.inner.Error(msg, f) }) }
