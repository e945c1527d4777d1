package snapshot

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/snapboard/internal/contracts"
)

func TestRollup_Scenario(t *testing.T) {
	points := Rollup(scenarioSnapshots())

	assert.Equal(t, []contracts.AggregatePoint{
		{Timestamp: at(1), TotalValue: 150},
		{Timestamp: at(2), TotalValue: 120},
	}, points)
}

func TestRollup_Empty(t *testing.T) {
	points := Rollup(nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestRollup_ExactInstantsOnly(t *testing.T) {
	snaps := []contracts.Snapshot{
		snap(1, "BTC", 10),
		{SnapshotTime: at(1).Add(time.Millisecond), Entity: "ETH", Value: 5},
		{SnapshotTime: at(1).In(time.FixedZone("KST", 9*3600)), Entity: "SOL", Value: 1},
	}

	points := Rollup(snaps)
	require.Len(t, points, 2)
	assert.Equal(t, 11.0, points[0].TotalValue)
	assert.Equal(t, 5.0, points[1].TotalValue)
}

func randomSnapshots(rng *rand.Rand, n int) []contracts.Snapshot {
	entities := []string{"BTC", "ETH", "SOL", "SUI", "USDC"}
	snaps := make([]contracts.Snapshot, n)
	for i := range snaps {
		snaps[i] = contracts.Snapshot{
			SnapshotTime: at(rng.Intn(8)),
			Entity:       entities[rng.Intn(len(entities))],
			Amount:       rng.Float64() * 10,
			Value:        rng.Float64() * 10000,
		}
	}
	return snaps
}

func TestRollup_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		snaps := randomSnapshots(rng, 1+rng.Intn(40))
		want := Rollup(snaps)

		shuffled := append([]contracts.Snapshot(nil), snaps...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assert.Equal(t, want, Rollup(shuffled))
		assert.Equal(t, want, Rollup(snaps), "re-running yields the same series")
	}
}

func TestRollup_StrictlyIncreasing(t *testing.T) {
	points := Rollup(randomSnapshots(rand.New(rand.NewSource(3)), 100))
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i-1].Timestamp.Before(points[i].Timestamp))
	}
}

func TestRollup_ConservesValue(t *testing.T) {
	// whole-dollar values: float sums are exact
	snaps := []contracts.Snapshot{
		snap(1, "BTC", 100), snap(1, "ETH", 50), snap(2, "BTC", 120),
		snap(3, "SOL", 7), snap(3, "ETH", 13), snap(2, "USDC", 1),
	}
	assert.Equal(t, contracts.TotalValue(snaps), sumPoints(Rollup(snaps)))

	// arbitrary values: equal up to float rounding
	random := randomSnapshots(rand.New(rand.NewSource(11)), 200)
	assert.InDelta(t, contracts.TotalValue(random), sumPoints(Rollup(random)), 1e-6)
}

func sumPoints(points []contracts.AggregatePoint) float64 {
	total := 0.0
	for _, p := range points {
		total += p.TotalValue
	}
	return total
}

func TestRollup_NonFiniteValues(t *testing.T) {
	snaps := []contracts.Snapshot{
		snap(1, "BTC", 100),
		snap(1, "BAD", math.Inf(1)),
		snap(2, "NAN", math.NaN()),
		snap(2, "ETH", 20),
		snap(3, "NEG", math.Inf(-1)),
	}

	var points []contracts.AggregatePoint
	require.NotPanics(t, func() { points = Rollup(snaps) })

	assert.Equal(t, []contracts.AggregatePoint{
		{Timestamp: at(1), TotalValue: 100},
		{Timestamp: at(2), TotalValue: 20},
		{Timestamp: at(3), TotalValue: 0},
	}, points)
}

func TestRollup_InstantsOutsideNanoRange(t *testing.T) {
	// UnixNano is undefined this far out; both instants must stay separate
	early := time.Date(1200, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2500, 1, 1, 0, 0, 0, 0, time.UTC)
	snaps := []contracts.Snapshot{
		{SnapshotTime: late, Entity: "BTC", Value: 2},
		{SnapshotTime: early, Entity: "BTC", Value: 1},
		{SnapshotTime: late.In(time.FixedZone("KST", 9*3600)), Entity: "ETH", Value: 3},
	}

	assert.Equal(t, []contracts.AggregatePoint{
		{Timestamp: early, TotalValue: 1},
		{Timestamp: late, TotalValue: 5},
	}, Rollup(snaps))
}

func TestRollup_MatchesHoldingsTotal(t *testing.T) {
	// values whose float64 running sum drifts from the decimal sum
	snaps := []contracts.Snapshot{
		snap(1, "A", 0.1), snap(1, "B", 0.2), snap(1, "C", 0.3),
		snap(1, "D", 1234.567), snap(1, "E", 0.7),
	}

	holdings, err := CurrentHoldings(snaps)
	require.NoError(t, err)
	points := Rollup(snaps)
	require.Len(t, points, 1)

	assert.Equal(t, points[0].TotalValue, contracts.TotalValue(holdings))
}
