package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis on DB 15 and skips when none is running.
// The integration build tag runs the same checks against a container.
func setupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available for testing: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestNewNilClient(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestDialBadURL(t *testing.T) {
	if _, err := Dial(ConnConfig{URL: "://nope"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDialOwnsClientAndClosesTwice(t *testing.T) {
	s, err := Dial(ConnConfig{Addrs: []string{"127.0.0.1:1"}, DialTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if !s.closeClient {
		t.Fatalf("dialed store must own its client")
	}
	ctx := context.Background()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDialURLOverrides(t *testing.T) {
	s, err := Dial(ConnConfig{URL: "redis://localhost:6380/3", Password: "secret", PoolSize: 7})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close(context.Background())
	c, ok := s.Client().(*goredis.Client)
	if !ok {
		t.Fatalf("URL dial should build a single-node client, got %T", s.Client())
	}
	opt := c.Options()
	if opt.Addr != "localhost:6380" || opt.DB != 3 || opt.Password != "secret" || opt.PoolSize != 7 {
		t.Fatalf("unexpected options: addr=%s db=%d pool=%d", opt.Addr, opt.DB, opt.PoolSize)
	}
}

func TestSharedClientNotClosed(t *testing.T) {
	client := setupTestRedis(t)
	s, err := New(Config{Client: client})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("shared client should stay open, ping: %v", err)
	}
}

func TestGetSetDel(t *testing.T) {
	client := setupTestRedis(t)
	s, _ := New(Config{Client: client, KeyPrefix: "tenant"})
	ctx := context.Background()

	if s.KeyPrefix() != "tenant" {
		t.Fatalf("KeyPrefix=%q", s.KeyPrefix())
	}
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("miss expected, ok=%v err=%v", ok, err)
	}
	want := []byte{0, 1, 2, 0xff}
	if err := s.Set(ctx, "k", want, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, want) {
		t.Fatalf("Get: ok=%v err=%v got=%x", ok, err, got)
	}
	if ttl := client.PTTL(ctx, "k").Val(); ttl != -1 {
		t.Fatalf("ttl<=0 must store without expiry, PTTL=%v", ttl)
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after Del")
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del on missing key: %v", err)
	}
}

func TestSetMillisecondTTL(t *testing.T) {
	client := setupTestRedis(t)
	s, _ := New(Config{Client: client})
	ctx := context.Background()

	if err := s.Set(ctx, "short", []byte("x"), 1500*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ttl := client.PTTL(ctx, "short").Val()
	if ttl <= 0 || ttl > 1500*time.Millisecond {
		t.Fatalf("unexpected PTTL %v", ttl)
	}

	if err := s.Set(ctx, "tiny", []byte("x"), time.Microsecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "tiny"); ok {
		t.Fatalf("sub-millisecond ttl must still expire")
	}
}

func TestScanAndDelMany(t *testing.T) {
	client := setupTestRedis(t)
	s, _ := New(Config{Client: client, ScanCount: 10})
	ctx := context.Background()

	for i := 0; i < 35; i++ {
		if err := s.Set(ctx, fmt.Sprintf("ns:%d", i), []byte("v"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	_ = s.Set(ctx, "other:1", []byte("v"), 0)

	seen := map[string]struct{}{}
	for batch, err := range s.Scan(ctx, "ns:*") {
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		for _, k := range batch {
			seen[k] = struct{}{}
		}
	}
	if len(seen) != 35 {
		t.Fatalf("expected 35 keys, got %d", len(seen))
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if err := s.DelMany(ctx, keys); err != nil {
		t.Fatalf("DelMany: %v", err)
	}
	if n := client.DBSize(ctx).Val(); n != 1 {
		t.Fatalf("expected only the foreign key left, dbsize=%d", n)
	}
	if err := s.DelMany(ctx, nil); err != nil {
		t.Fatalf("DelMany(nil): %v", err)
	}
}

func TestTransportErrorsSurface(t *testing.T) {
	s, _ := Dial(ConnConfig{Addrs: []string{"127.0.0.1:1"}, DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer s.Close(context.Background())
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "k"); err == nil || ok {
		t.Fatalf("Get should fail against a closed port, ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "k", []byte("v"), 0); err == nil {
		t.Fatalf("Set should fail")
	}
	if err := s.Ping(ctx); err == nil {
		t.Fatalf("Ping should fail")
	}
	var scanErr error
	for _, err := range s.Scan(ctx, "*") {
		scanErr = err
	}
	if scanErr == nil {
		t.Fatalf("Scan should yield the transport error")
	}
}
