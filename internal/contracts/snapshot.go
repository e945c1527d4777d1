package contracts

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one timestamped holding observation of the portfolio table
// ⭐ 불변식: Value >= 0, Entity != "" (decode 단계에서 검증)
type Snapshot struct {
	SnapshotTime time.Time `json:"snapshot_time" validate:"required"`
	Entity       string    `json:"entity" validate:"required"`
	Amount       float64   `json:"amount"`
	Value        float64   `json:"value" validate:"gte=0"`
}

// AggregatePoint is the total portfolio value at one snapshot instant
type AggregatePoint struct {
	Timestamp  time.Time `json:"timestamp"`
	TotalValue float64   `json:"total_value"`
}

// AllocationSlice is one entity's share of the latest portfolio value
type AllocationSlice struct {
	Entity string  `json:"entity"`
	Value  float64 `json:"value"`
	Share  float64 `json:"share"` // 0.0 ~ 1.0
}

// DecimalValue returns Value as a decimal. NaN and ±Inf count as zero;
// decode rejects them, so they only reach here from hand-built snapshots.
func (s Snapshot) DecimalValue() decimal.Decimal {
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(s.Value)
}

// SumValues adds Value across snapshots in decimal
func SumValues(snaps []Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, s := range snaps {
		total = total.Add(s.DecimalValue())
	}
	return total
}

// TotalValue sums Value across snapshots, same arithmetic as the series rollup
func TotalValue(snaps []Snapshot) float64 {
	return SumValues(snaps).InexactFloat64()
}
