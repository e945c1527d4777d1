package snapshot

import (
	"time"

	"github.com/wonny/snapboard/internal/contracts"
)

var base = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func snap(hours int, entity string, value float64) contracts.Snapshot {
	return contracts.Snapshot{SnapshotTime: at(hours), Entity: entity, Amount: 1, Value: value}
}

// scenarioSnapshots is the BTC/ETH example: two rows at t=1, one at t=2
func scenarioSnapshots() []contracts.Snapshot {
	return []contracts.Snapshot{
		snap(1, "BTC", 100),
		snap(1, "ETH", 50),
		snap(2, "BTC", 120),
	}
}
