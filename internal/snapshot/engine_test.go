package snapshot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/snapboard/internal/contracts"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestEngine_DelegatesToPureFunctions(t *testing.T) {
	e := NewEngine()

	records := []contracts.TimestampedRecord{
		{At: at(1), Record: contracts.Record{"v": 1}},
		{At: at(2), Record: contracts.Record{"v": 2}},
	}
	latest, err := e.LatestRecord(records)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Record["v"])

	assert.Equal(t, contracts.LabelAbove, e.Classify(0.65, contracts.ThresholdBand{Lower: 0.4, Upper: 0.6}).Label)

	holdings, err := e.CurrentHoldings(scenarioSnapshots())
	require.NoError(t, err)
	assert.Len(t, e.Allocation(holdings), 1)
	assert.Len(t, e.Rollup(scenarioSnapshots()), 2)
}
