package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/snapboard/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	cfg := APIRateLimit
	cfg.Key = "127.0.0.1"
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, cfg.Limit, remaining)
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))

	var got string
	found, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestDashboardKey(t *testing.T) {
	assert.Equal(t, "dashboard:abc", DashboardKey("abc"))
}

func TestCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	client := NewFromRedis(goredis.NewClient(&goredis.Options{Addr: addr}))
	defer client.Close()

	cache := NewCache(client, "snapboard-test")
	ctx := context.Background()

	type payload struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, cache.Set(ctx, "roundtrip", payload{Total: 150}, time.Minute))

	var got payload
	found, err := cache.Get(ctx, "roundtrip", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 150.0, got.Total)

	require.NoError(t, cache.Delete(ctx, "roundtrip"))
	found, err = cache.Get(ctx, "roundtrip", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
