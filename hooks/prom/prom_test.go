package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/unkn0wn-root/resultcache"
	"github.com/unkn0wn-root/resultcache/store/bigcache"
)

func TestCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(reg, Options{ConstLabels: prometheus.Labels{"cache": "test"}})

	h.Hit("k")
	h.Miss("k", resultcache.ReasonAbsent)
	h.Miss("k", resultcache.ReasonAbsent)
	h.Miss("k", resultcache.ReasonTransport)
	h.SetDropped("k", resultcache.ReasonEncode)
	h.RemoveFailed("k", errors.New("x"))
	h.Cleared("mikro", 4, nil)
	h.Cleared("mikro", 0, errors.New("x"))

	if got := testutil.ToFloat64(h.Hits); got != 1 {
		t.Fatalf("hits %v", got)
	}
	if got := testutil.ToFloat64(h.Misses.WithLabelValues("absent")); got != 2 {
		t.Fatalf("absent misses %v", got)
	}
	if got := testutil.ToFloat64(h.Misses.WithLabelValues("transport")); got != 1 {
		t.Fatalf("transport misses %v", got)
	}
	if got := testutil.ToFloat64(h.Dropped.WithLabelValues("encode")); got != 1 {
		t.Fatalf("dropped %v", got)
	}
	if got := testutil.ToFloat64(h.RemoveFailures); got != 1 {
		t.Fatalf("remove failures %v", got)
	}
	if got := testutil.ToFloat64(h.ClearedKeys); got != 4 {
		t.Fatalf("cleared keys %v", got)
	}
	if got := testutil.ToFloat64(h.Clears.WithLabelValues("error")); got != 1 {
		t.Fatalf("failed clears %v", got)
	}
	if n := testutil.CollectAndCount(reg); n == 0 {
		t.Fatalf("nothing registered")
	}
}

func TestWiredIntoCache(t *testing.T) {
	ctx := context.Background()
	st, err := bigcache.New(bigcache.Config{LifeWindow: time.Minute})
	if err != nil {
		t.Fatalf("bigcache: %v", err)
	}
	h := New(prometheus.NewRegistry(), Options{})
	c, err := resultcache.New(resultcache.Options[string]{
		Connection: resultcache.StoreConfig{Store: st},
		Hooks:      h,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(ctx)

	c.Get(ctx, "k")
	c.Set(ctx, "k", "v", "", 0)
	c.Get(ctx, "k")

	if testutil.ToFloat64(h.Hits) != 1 || testutil.ToFloat64(h.Misses.WithLabelValues("absent")) != 1 {
		t.Fatalf("hits=%v misses=%v", testutil.ToFloat64(h.Hits), testutil.ToFloat64(h.Misses.WithLabelValues("absent")))
	}
}
