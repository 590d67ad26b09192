//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis runs a throwaway Redis for the test.
func startRedis(t *testing.T) *redis.Client {
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
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestTracker_Integration_SharedState(t *testing.T) {
	redisClient := startRedis(t)

	ctx := context.Background()
	writer := NewTracker(redisClient, zerolog.Nop())
	reader := NewTracker(redisClient, zerolog.Nop())

	state, err := reader.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if !state.Healthy {
		t.Error("empty Redis should yield a healthy default")
	}

	if err := writer.UpdateFromHeaders(ctx, quotaHeaders("1", "60")); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	// A second tracker on the same Redis sees the critical quota
	allowed, err := reader.ShouldAllowRequest(ctx)
	if err != nil {
		t.Fatalf("ShouldAllowRequest() error = %v", err)
	}
	if allowed {
		t.Error("ShouldAllowRequest() = true, want false for critical state")
	}
}

func TestTracker_Integration_StateReset(t *testing.T) {
	redisClient := startRedis(t)

	ctx := context.Background()
	tracker := NewTracker(redisClient, zerolog.Nop())

	if err := tracker.UpdateFromHeaders(ctx, quotaHeaders("0", "1")); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	if allowed, _ := tracker.ShouldAllowRequest(ctx); allowed {
		t.Error("request allowed before the window reset")
	}

	time.Sleep(1500 * time.Millisecond)

	allowed, err := tracker.ShouldAllowRequest(ctx)
	if err != nil {
		t.Fatalf("ShouldAllowRequest() error = %v", err)
	}
	if !allowed {
		t.Error("request still blocked after the window reset")
	}
}

// The shared state key lives until the quota window resets, plus a margin.
func TestTracker_Integration_KeyExpiresAfterWindow(t *testing.T) {
	redisClient := startRedis(t)
	ctx := context.Background()

	tracker := NewTracker(redisClient, zerolog.Nop())
	if err := tracker.UpdateFromHeaders(ctx, quotaHeaders("40", "30")); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	ttl, err := redisClient.PTTL(ctx, RedisKey).Result()
	if err != nil {
		t.Fatalf("PTTL() error = %v", err)
	}
	if ttl < 80*time.Second || ttl > 91*time.Second {
		t.Errorf("state key TTL = %v, want about 90s", ttl)
	}
}
