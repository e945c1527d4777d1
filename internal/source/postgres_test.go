package source

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteTable(t *testing.T) {
	assert.Equal(t, `"EMAs"`, QuoteTable("EMAs"))
	assert.Equal(t, `"public"."portfolio_snapshots"`, QuoteTable("public.portfolio_snapshots"))
	assert.Equal(t, `"bad""name"`, QuoteTable(`bad"name`))
}

func TestDecodeRow(t *testing.T) {
	rec, err := decodeRow(`{"ticker1":"BTC","ticker1_ema5_ema12":61000.5,"flag":true,"note":null}`)
	require.NoError(t, err)

	assert.Equal(t, "BTC", rec["ticker1"])
	assert.Equal(t, json.Number("61000.5"), rec["ticker1_ema5_ema12"])
	assert.Equal(t, true, rec["flag"])
	assert.False(t, rec.Has("note"))

	_, err = decodeRow(`not json`)
	assert.Error(t, err)
}

// Integration test (requires DATABASE_URL)
func TestPostgresReader_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `CREATE TEMP TABLE "Snap_Test" (snapshot_time timestamptz, coin text, amount numeric, usd_value double precision)`)
	if err != nil {
		t.Skipf("cannot create temp table (read-only role?): %v", err)
	}
	_, err = pool.Exec(ctx, `INSERT INTO "Snap_Test" VALUES (now(), 'BTC', 0.5, 100.25), (now(), 'ETH', 2, 50)`)
	require.NoError(t, err)

	// temp tables are per-connection; pin one connection for the read
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	records, err := NewPostgresReader(conn).FetchAll(ctx, "Snap_Test")
	if err != nil {
		t.Skipf("temp table not visible on acquired connection: %v", err)
	}

	snaps, err := DecodeSnapshots(records, DefaultSnapshotSchema)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}
