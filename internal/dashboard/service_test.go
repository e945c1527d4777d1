package dashboard

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/snapboard/internal/contracts"
	"github.com/wonny/snapboard/pkg/logger"
)

func ts(hour int) time.Time {
	return time.Date(2025, 3, 1, hour, 0, 0, 0, time.UTC)
}

func TestBuild_AllSections(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	d := svc.Build(context.Background())

	assert.Equal(t, ts(3), d.GeneratedAt)
	assert.Len(t, d.ConfigHash, 64)

	// holdings
	require.True(t, d.Holdings.OK(), d.Holdings.Message)
	assert.Equal(t, ts(2), *d.Holdings.AsOf)
	assert.Equal(t, 120.0, d.Holdings.TotalValue)
	require.Len(t, d.Holdings.Holdings, 1)
	assert.Equal(t, "BTC", d.Holdings.Holdings[0].Entity)
	assert.Equal(t, []contracts.AllocationSlice{{Entity: "BTC", Value: 120, Share: 1}}, d.Holdings.Allocation)

	// series
	require.True(t, d.Series.OK())
	assert.Equal(t, []contracts.AggregatePoint{
		{Timestamp: ts(1), TotalValue: 150},
		{Timestamp: ts(2), TotalValue: 120},
	}, d.Series.Points)
	assert.Equal(t, ts(2), *d.Series.LastImport)

	// panels
	major, ok := d.Panel("major")
	require.True(t, ok)
	require.True(t, major.OK())
	assert.Equal(t, contracts.LabelAbove, major.Classification.Label)
	assert.Equal(t, 0.65, major.Classification.RawValue)
	assert.Equal(t, ts(2), *major.AsOf)

	mtpi, _ := d.Panel("mtpi")
	require.True(t, mtpi.OK())
	assert.Equal(t, contracts.LabelStateA, mtpi.Classification.Label, "tied rows resolve last-wins")

	funding, _ := d.Panel("funding")
	assert.Equal(t, contracts.LabelAbove, funding.Classification.Label)
	assert.Equal(t, contracts.SeverityNegative, funding.Classification.Severity, "inverted panel")

	greed, _ := d.Panel("fear_greed")
	assert.Equal(t, contracts.LabelWithin, greed.Classification.Label)

	// ema: row 1 misses its 15 column, row 0 still rendered
	require.NotNil(t, d.Ema)
	assert.Equal(t, StatusMalformed, d.Ema.Status)
	require.Len(t, d.Ema.RowErrors, 1)
	assert.Equal(t, 1, d.Ema.RowErrors[0].Index)
	require.NotNil(t, d.Ema.Matrix)
	assert.Len(t, d.Ema.Matrix.Rows[0].Cells, 2)
	assert.Equal(t, "BTC", d.Ema.Matrix.Rows[0].Entity)

	assert.True(t, d.Degraded())
	assert.Same(t, d, svc.Latest())
}

func TestBuild_FetchFailureIsIsolated(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	reader.errs["MTPI"] = errors.New("connection reset")
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	d := svc.Build(context.Background())

	mtpi, _ := d.Panel("mtpi")
	assert.Equal(t, StatusUnavailable, mtpi.Status)
	assert.Contains(t, mtpi.Message, "MTPI")
	assert.Nil(t, mtpi.Classification)

	major, _ := d.Panel("major")
	assert.True(t, major.OK())
	assert.True(t, d.Holdings.OK())
	assert.True(t, d.Series.OK())
}

func TestBuild_EachTableFetchedOnce(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	svc.Build(context.Background())

	for _, table := range []string{"portfolio_snapshots", "Major", "MTPI", "MISC", "EMAs"} {
		assert.Equal(t, 1, reader.callCount(table), table)
	}
}

func TestBuild_SlowTableTimesOut(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	release := make(chan struct{})
	reader.block["EMAs"] = release
	defer close(release)

	svc := newTestService(t, reader, nil, Options{FetchTimeout: 50 * time.Millisecond})

	start := time.Now()
	d := svc.Build(context.Background())
	assert.Less(t, time.Since(start), 5*time.Second)

	require.NotNil(t, d.Ema)
	assert.Equal(t, StatusUnavailable, d.Ema.Status)
	assert.Contains(t, d.Ema.Message, "deadline")
	assert.True(t, d.Holdings.OK())
}

func TestBuild_EmptyPortfolio(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	reader.tables["portfolio_snapshots"] = []contracts.Record{}
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	d := svc.Build(context.Background())

	assert.Equal(t, StatusNoData, d.Holdings.Status)
	assert.Equal(t, "no portfolio data yet", d.Holdings.Message)
	assert.Nil(t, d.Holdings.AsOf)
	assert.Equal(t, StatusNoData, d.Series.Status)
	assert.Empty(t, d.Series.Points)

	major, _ := d.Panel("major")
	assert.True(t, major.OK())
}

func TestBuild_MalformedSources(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	reader.tables["portfolio_snapshots"] = append(reader.tables["portfolio_snapshots"],
		contracts.Record{"snapshot_time": "2025-03-01T02:00:00Z", "coin": "SOL", "amount": 1, "usd_value": -3})
	reader.tables["MTPI"] = []contracts.Record{{"created_at": "2025-03-01T02:00:00Z", "mtpi": 0.5}}
	reader.tables["Major"] = []contracts.Record{{"created_at": "2025-03-01T02:00:00Z"}}
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	d := svc.Build(context.Background())

	assert.Equal(t, StatusMalformed, d.Holdings.Status)
	assert.Contains(t, d.Holdings.Message, "usd_value")
	assert.Equal(t, StatusMalformed, d.Series.Status)

	mtpi, _ := d.Panel("mtpi")
	assert.Equal(t, StatusMalformed, mtpi.Status)

	major, _ := d.Panel("major")
	assert.Equal(t, StatusMalformed, major.Status)
	assert.Contains(t, major.Message, "ratio")
}

func TestBuild_InfinitePortfolioValue(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	reader.tables["portfolio_snapshots"] = append(reader.tables["portfolio_snapshots"],
		contracts.Record{"snapshot_time": "2025-03-01T02:00:00Z", "coin": "SOL", "amount": 1, "usd_value": "Infinity"})
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	var d *Dashboard
	require.NotPanics(t, func() { d = svc.Build(context.Background()) })

	assert.Equal(t, StatusMalformed, d.Holdings.Status)
	assert.Contains(t, d.Holdings.Message, "not a finite number")
	assert.Equal(t, StatusMalformed, d.Series.Status)

	major, _ := d.Panel("major")
	assert.True(t, major.OK(), "other tables are unaffected")
}

func TestBuild_EmptyPanelTable(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	delete(reader.tables, "MISC")
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	d := svc.Build(context.Background())

	funding, _ := d.Panel("funding")
	assert.Equal(t, StatusNoData, funding.Status)
}

func TestGet_UsesCache(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	cache := newMemoryCache()
	svc := newTestService(t, reader, cache, Options{FetchTimeout: time.Second, CacheTTL: time.Minute})
	ctx := context.Background()

	first := svc.Get(ctx, false)
	assert.Equal(t, 1, reader.callCount("Major"))

	second := svc.Get(ctx, false)
	assert.Equal(t, 1, reader.callCount("Major"), "served from cache")
	assert.Equal(t, first.ConfigHash, second.ConfigHash)
	assert.Equal(t, first.Series.Points, second.Series.Points)
	assert.Equal(t, first.Ema.RowErrors, second.Ema.RowErrors)

	svc.Get(ctx, true)
	assert.Equal(t, 2, reader.callCount("Major"), "refresh bypasses the cache")
}

func TestGet_WithoutCache(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	svc.Get(context.Background(), false)
	svc.Get(context.Background(), false)
	assert.Equal(t, 2, reader.callCount("Major"))
}

func TestOnBuild(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	var got []*Dashboard
	svc.OnBuild(func(d *Dashboard) { got = append(got, d) })

	d := svc.Build(context.Background())
	require.Len(t, got, 1)
	assert.Same(t, d, got[0])
}

func TestUpdateConfig_ChangesHash(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})
	before := svc.ConfigHash()

	cfg := *svc.cfg
	cfg.Panels = cfg.Panels[:1]
	require.NoError(t, svc.UpdateConfig(&cfg))

	assert.NotEqual(t, before, svc.ConfigHash())
	assert.Len(t, svc.Build(context.Background()).Panels, 1)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"nil", nil, StatusOK},
		{"empty input", contracts.ErrEmptyInput, StatusNoData},
		{"empty portfolio", contracts.ErrEmptyPortfolio, StatusNoData},
		{"invalid indicator", &contracts.InvalidIndicatorError{Value: 2}, StatusMalformed},
		{"missing field", &contracts.MissingFieldError{EntityIndex: 1, Timeframe: "15"}, StatusMalformed},
		{"field error", &contracts.FieldError{Field: "x", Reason: "bad"}, StatusMalformed},
		{"fetch error", &FetchError{Table: "Major", Err: context.DeadlineExceeded}, StatusUnavailable},
		{"unknown", errors.New("boom"), StatusUnavailable},
		{"joined rows", errors.Join(&contracts.MissingFieldError{}, &contracts.MissingFieldError{}), StatusMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

// lockedBuffer is a goroutine-safe log sink
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRefreshAsync_RecoversPanic(t *testing.T) {
	reader := newFakeReader()
	seedTables(reader)
	svc := newTestService(t, reader, nil, Options{FetchTimeout: time.Second})

	var logs lockedBuffer
	svc.logger = logger.NewWithWriter(&logs, "test")
	svc.OnBuild(func(*Dashboard) { panic("listener exploded") })

	svc.RefreshAsync(context.Background())

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Dashboard refresh panicked")
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, logs.String(), "listener exploded")
	assert.NotNil(t, svc.Latest(), "the build itself completed")
}
