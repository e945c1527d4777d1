package snapshot

import (
	"time"

	"github.com/wonny/snapboard/internal/contracts"
)

// SelectLatest returns every item sharing the maximum instant, in input order.
// Never returns an empty slice for non-empty input.
func SelectLatest[T any](items []T, at func(T) time.Time) ([]T, error) {
	if len(items) == 0 {
		return nil, contracts.ErrEmptyInput
	}

	maxTs := at(items[0])
	for _, item := range items[1:] {
		if ts := at(item); ts.After(maxTs) {
			maxTs = ts
		}
	}

	latest := make([]T, 0, 1)
	for _, item := range items {
		if at(item).Equal(maxTs) {
			latest = append(latest, item)
		}
	}

	return latest, nil
}

// LatestOne resolves ties at the maximum instant last-wins in source order
func LatestOne[T any](items []T, at func(T) time.Time) (T, error) {
	latest, err := SelectLatest(items, at)
	if err != nil {
		var zero T
		return zero, err
	}
	return latest[len(latest)-1], nil
}

// RecordTime is the accessor for decoded source rows
func RecordTime(r contracts.TimestampedRecord) time.Time {
	return r.At
}

// SnapshotTime is the accessor for portfolio snapshots
func SnapshotTime(s contracts.Snapshot) time.Time {
	return s.SnapshotTime
}
