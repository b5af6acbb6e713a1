package async

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/resultcache"
)

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) sink(level resultcache.Level, msg string, _ resultcache.Fields) {
	r.mu.Lock()
	r.msgs = append(r.msgs, level.String()+":"+msg)
	r.mu.Unlock()
}

func TestDeliversBeforeClose(t *testing.T) {
	rec := &recorder{}
	l := New(resultcache.LogFunc(rec.sink), 1, 16)

	l.Debug("a", nil)
	l.Warn("b", nil)
	l.Close()

	if len(rec.msgs) != 2 || rec.msgs[0] != "debug:a" || rec.msgs[1] != "warn:b" {
		t.Fatalf("unexpected messages %v", rec.msgs)
	}
}

func TestDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	l := New(resultcache.LogFunc(func(resultcache.Level, string, resultcache.Fields) {
		once.Do(func() { close(started) })
		<-block
	}), 1, 1)

	l.Info("held", nil) // occupies the worker
	<-started
	l.Info("queued", nil) // fills the queue
	l.Info("dropped", nil)

	if l.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", l.Dropped())
	}
	close(block)
	l.Close()

	l.Error("after close", nil)
	if l.Dropped() != 2 {
		t.Fatalf("writes after Close must be dropped, got %d", l.Dropped())
	}
}

func TestPanickingSinkDoesNotKillWorker(t *testing.T) {
	rec := &recorder{}
	first := true
	l := New(resultcache.LogFunc(func(lv resultcache.Level, msg string, f resultcache.Fields) {
		if first {
			first = false
			panic("sink")
		}
		rec.sink(lv, msg, f)
	}), 1, 4)

	l.Info("boom", nil)
	l.Info("ok", nil)
	l.Close()

	if len(rec.msgs) != 1 || rec.msgs[0] != "info:ok" {
		t.Fatalf("unexpected messages %v", rec.msgs)
	}
}
