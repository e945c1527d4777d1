package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wonny/snapboard/internal/contracts"
	"github.com/wonny/snapboard/internal/dashconfig"
	"github.com/wonny/snapboard/internal/snapshot"
	"github.com/wonny/snapboard/pkg/logger"
	"github.com/wonny/snapboard/pkg/metrics"
)

// fakeReader serves canned tables. Tables listed in block never answer.
type fakeReader struct {
	mu     sync.Mutex
	tables map[string][]contracts.Record
	errs   map[string]error
	block  map[string]chan struct{}
	calls  map[string]int
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		tables: make(map[string][]contracts.Record),
		errs:   make(map[string]error),
		block:  make(map[string]chan struct{}),
		calls:  make(map[string]int),
	}
}

func (f *fakeReader) FetchAll(ctx context.Context, table string) ([]contracts.Record, error) {
	f.mu.Lock()
	f.calls[table]++
	records, ok := f.tables[table]
	err := f.errs[table]
	block := f.block[table]
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return []contracts.Record{}, nil
	}
	return records, nil
}

func (f *fakeReader) callCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[table]
}

// memoryCache is a JSON round-tripping stand-in for redis.Cache
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

const testConfig = `
panels:
  - name: major
    table: Major
    field: ratio
    band: { lower: 0.4, upper: 0.6 }
  - name: mtpi
    table: MTPI
    field: mtpi
    kind: flag
  - name: funding
    table: MISC
    field: funding_rate
    band: { lower: -0.01, upper: 0.03 }
    invert: true
  - name: fear_greed
    table: MISC
    field: fear_greed
    band: { lower: 25, upper: 75 }
ema_matrix:
  entity_count: 2
  timeframes: ["5", "15"]
  pattern:
    name: "ticker{n}"
    flag: "ticker{n}_ema{tf}_above"
`

func seedTables(r *fakeReader) {
	r.tables["portfolio_snapshots"] = []contracts.Record{
		{"snapshot_time": "2025-03-01T01:00:00Z", "coin": "BTC", "amount": 1, "usd_value": 100},
		{"snapshot_time": "2025-03-01T01:00:00Z", "coin": "ETH", "amount": 2, "usd_value": 50},
		{"snapshot_time": "2025-03-01T02:00:00Z", "coin": "BTC", "amount": 1, "usd_value": 120},
	}
	r.tables["Major"] = []contracts.Record{
		{"created_at": "2025-03-01T00:00:00Z", "ratio": 0.3},
		{"created_at": "2025-03-01T02:00:00Z", "ratio": json.Number("0.65")},
	}
	r.tables["MTPI"] = []contracts.Record{
		{"created_at": "2025-03-01T02:00:00Z", "mtpi": 0},
		{"created_at": "2025-03-01T02:00:00Z", "mtpi": 1},
	}
	r.tables["MISC"] = []contracts.Record{
		{"created_at": "2025-03-01T02:00:00Z", "funding_rate": 0.05, "fear_greed": 50},
	}
	r.tables["EMAs"] = []contracts.Record{
		{
			"created_at":          "2025-03-01T02:00:00Z",
			"ticker1":             "BTC",
			"ticker2":             "ETH",
			"ticker1_ema5_above":  1,
			"ticker1_ema15_above": 0,
			"ticker2_ema5_above":  true,
		},
	}
}

func newTestService(t *testing.T, reader contracts.TableReader, cache Cache, opts Options) *Service {
	t.Helper()
	cfg, err := dashconfig.Parse([]byte(testConfig))
	require.NoError(t, err)

	svc, err := NewService(reader, cfg, snapshot.NewEngine(), cache, metrics.New(), logger.Nop(), opts)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC) }
	return svc
}
