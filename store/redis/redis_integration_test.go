//go:build integration

package redis

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (string, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return host + ":" + port.Port(), func() {
		redisContainer.Terminate(ctx)
	}
}

func TestIntegration_DialedStore(t *testing.T) {
	addr, cleanup := setupRedisContainer(t)
	defer cleanup()

	s, err := Dial(ConnConfig{URL: "redis://" + addr + "/0"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	ctx := context.Background()
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	for _, k := range []string{"a:1", "a:2", "b:1"} {
		if err := s.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	var keys []string
	for batch, err := range s.Scan(ctx, "a:*") {
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		keys = append(keys, batch...)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
	if err := s.DelMany(ctx, keys); err != nil {
		t.Fatalf("DelMany: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "b:1"); !ok {
		t.Fatalf("b:1 must survive a scoped delete")
	}

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := s.Client().(*goredis.Client).Ping(ctx).Err(); err == nil {
		t.Fatalf("owned client should be closed")
	}
}
