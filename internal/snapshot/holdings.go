package snapshot

import (
	"sort"

	"github.com/wonny/snapboard/internal/contracts"
)

// CurrentHoldings keeps the latest snapshot instant and ranks it by value, descending.
// Equal values keep their selection order.
func CurrentHoldings(snaps []contracts.Snapshot) ([]contracts.Snapshot, error) {
	if len(snaps) == 0 {
		return nil, contracts.ErrEmptyPortfolio
	}

	latest, err := SelectLatest(snaps, SnapshotTime)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(latest, func(i, j int) bool {
		return latest[i].Value > latest[j].Value
	})

	return latest, nil
}

// Allocation returns each holding's share of the total value, in holding order.
// A zero total yields zero shares; non-finite values get a zero share.
func Allocation(holdings []contracts.Snapshot) []contracts.AllocationSlice {
	total := contracts.SumValues(holdings)

	slices := make([]contracts.AllocationSlice, 0, len(holdings))
	for _, h := range holdings {
		share := 0.0
		if total.IsPositive() {
			share = h.DecimalValue().DivRound(total, 12).InexactFloat64()
		}
		slices = append(slices, contracts.AllocationSlice{
			Entity: h.Entity,
			Value:  h.Value,
			Share:  share,
		})
	}

	return slices
}
