package snapshot

import (
	"github.com/wonny/snapboard/internal/contracts"
)

// =============================================================================
// Engine - 순수 계산기
// =============================================================================

// Engine is the stateless derivation facade handed to consumers.
// ⭐ SSOT: 데이터 조회/설정 로드는 상위 레이어(dashboard)에서 조립
// internal/snapshot은 순수 계산만 담당
type Engine struct{}

// NewEngine creates a derivation engine
func NewEngine() *Engine {
	return &Engine{}
}

// LatestRecords selects rows at the maximum instant
func (e *Engine) LatestRecords(records []contracts.TimestampedRecord) ([]contracts.TimestampedRecord, error) {
	return SelectLatest(records, RecordTime)
}

// LatestRecord resolves ties at the maximum instant last-wins
func (e *Engine) LatestRecord(records []contracts.TimestampedRecord) (contracts.TimestampedRecord, error) {
	return LatestOne(records, RecordTime)
}

// Classify places value against an inclusive band
func (e *Engine) Classify(value float64, band contracts.ThresholdBand) contracts.Classification {
	return Classify(value, band)
}

// ClassifyFlag maps a 0/1 or boolean indicator to a two-state label
func (e *Engine) ClassifyFlag(indicator any) (contracts.Classification, error) {
	return ClassifyFlag(indicator)
}

// Matrix builds the EMA comparison matrix
func (e *Engine) Matrix(rec contracts.Record, layout contracts.MatrixLayout) (*contracts.EmaMatrix, error) {
	return BuildMatrix(rec, layout)
}

// Rollup builds the total-value series
func (e *Engine) Rollup(snaps []contracts.Snapshot) []contracts.AggregatePoint {
	return Rollup(snaps)
}

// CurrentHoldings ranks the latest portfolio snapshot
func (e *Engine) CurrentHoldings(snaps []contracts.Snapshot) ([]contracts.Snapshot, error) {
	return CurrentHoldings(snaps)
}

// Allocation returns value shares of the given holdings
func (e *Engine) Allocation(holdings []contracts.Snapshot) []contracts.AllocationSlice {
	return Allocation(holdings)
}
