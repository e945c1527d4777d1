package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/snapboard/pkg/config"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			URL:             url,
			Schema:          "public",
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}
}

func TestPoolConfig(t *testing.T) {
	pc, err := PoolConfig(testConfig("postgres://u:p@localhost:5432/db"))
	require.NoError(t, err)

	assert.Equal(t, int32(4), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, "on", pc.ConnConfig.RuntimeParams["default_transaction_read_only"])
	assert.Equal(t, "public", pc.ConnConfig.RuntimeParams["search_path"])
}

func TestNewWithInvalidURL(t *testing.T) {
	_, err := New(testConfig("invalid://url"))
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := New(testConfig(url))
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Greater(t, status.Stats.MaxConns, int32(0))

	// double close must not panic
	db.Close()
	db.Close()
}
