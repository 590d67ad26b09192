//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		container.Terminate(ctx)
	})

	return client
}

func TestManager_Integration_StaleGraceExpiry(t *testing.T) {
	client := setupRedisContainer(t)
	manager := NewManager(client).WithStaleGrace(time.Second)
	ctx := context.Background()
	key := CacheKey{Resource: "artworks", Page: 1, Limit: 12}

	entry := &CacheEntry{
		Data:    []byte(`{"data":[]}`),
		ETag:    `"v1"`,
		Expires: time.Now().Add(time.Second),
	}
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ttl, err := client.PTTL(ctx, key.String()).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= time.Second || ttl > 2*time.Second {
		t.Errorf("redis TTL = %v, want entry TTL plus grace", ttl)
	}

	time.Sleep(1200 * time.Millisecond)
	got, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get within grace failed: %v", err)
	}
	if !got.IsExpired() {
		t.Error("entry should be stale within the grace period")
	}

	time.Sleep(1500 * time.Millisecond)
	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after grace, got %v", err)
	}
}
