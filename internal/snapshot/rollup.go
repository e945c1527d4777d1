package snapshot

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/snapboard/internal/contracts"
)

// Rollup sums Value per exact snapshot instant, ascending by time.
// Totals are accumulated in decimal so the output does not depend on input order.
// Non-finite values add nothing to their instant.
func Rollup(snaps []contracts.Snapshot) []contracts.AggregatePoint {
	type bucket struct {
		at    time.Time
		total decimal.Decimal
	}

	// UTC without the monotonic reading: equal instants are equal keys
	buckets := make(map[time.Time]*bucket)
	for _, s := range snaps {
		key := s.SnapshotTime.UTC().Round(0)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{at: key, total: decimal.Zero}
			buckets[key] = b
		}
		b.total = b.total.Add(s.DecimalValue())
	}

	points := make([]contracts.AggregatePoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, contracts.AggregatePoint{
			Timestamp:  b.at,
			TotalValue: b.total.InexactFloat64(),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return points
}
