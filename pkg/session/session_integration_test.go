//go:build integration

package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/artwork-select/internal/testutil"
	"github.com/Sternrassler/artwork-select/pkg/record"
	"github.com/Sternrassler/artwork-select/pkg/source"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
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
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() {
		client.Close()
		container.Terminate(ctx)
	})
	return client
}

// newAPISession builds a session on a real source client pointed at api.
func newAPISession(t *testing.T, api *testutil.MockAPI, rdb *redis.Client) *Session {
	t.Helper()

	cfg := source.DefaultConfig("artsel-integration (test@example.com)")
	cfg.BaseURL = api.URL()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	cfg.Redis = rdb

	client, err := source.New(cfg)
	require.NoError(t, err)

	s, err := New(client, DefaultConfig())
	require.NoError(t, err)
	return s
}

// Full flow: navigation, bulk selection across pages, cached pages reused by a second session.
func TestSession_Integration_FullFlow(t *testing.T) {
	rdb := setupRedis(t)

	api := testutil.NewMockAPI(100)
	defer api.Close()
	api.SetHeader("Cache-Control", "max-age=300")

	ctx := context.Background()
	first := newAPISession(t, api, rdb)

	require.NoError(t, first.GoToPage(ctx, 1))
	res, err := first.SelectFirstK(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, res.Selected)
	assert.Equal(t, 3, res.PagesFetched)

	ids := first.Selection().IDs()
	require.Len(t, ids, 40)
	assert.Equal(t, record.ID(13), ids[0])
	assert.Equal(t, record.ID(52), ids[39])

	before := api.TotalRequests()

	second := newAPISession(t, api, rdb)
	require.NoError(t, second.GoToPage(ctx, 1))
	_, err = second.SelectFirstK(ctx, 40)
	require.NoError(t, err)

	assert.Equal(t, before, api.TotalRequests(), "second session should be served from Redis")
	assert.Equal(t, ids, second.Selection().IDs())
}

func TestSession_Integration_ServerErrorKeepsSelection(t *testing.T) {
	rdb := setupRedis(t)

	api := testutil.NewMockAPI(100)
	defer api.Close()

	ctx := context.Background()
	s := newAPISession(t, api, rdb)
	require.NoError(t, s.GoToPage(ctx, 0))

	_, err := s.SelectFirstK(ctx, 5)
	require.NoError(t, err)

	api.FailPage(3, http.StatusBadGateway, -1)
	_, err = s.SelectFirstK(ctx, 30)
	require.ErrorIs(t, err, record.ErrFetchFailed)

	var apiErr *source.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)

	assert.Equal(t, 5, s.Selection().Len())
	// Retried up to MaxRetries
	assert.Equal(t, 4, api.RequestCount(3))
}
