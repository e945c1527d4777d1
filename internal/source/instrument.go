package source

import (
	"context"
	"time"

	"github.com/wonny/snapboard/internal/contracts"
	"github.com/wonny/snapboard/pkg/logger"
	"github.com/wonny/snapboard/pkg/metrics"
)

// instrumented records latency, row counts and failures of every table read
type instrumented struct {
	next    contracts.TableReader
	metrics *metrics.Recorder
	logger  *logger.Logger
}

// Instrument wraps a reader with metrics and debug logging. rec may be nil.
func Instrument(next contracts.TableReader, rec *metrics.Recorder, log *logger.Logger) contracts.TableReader {
	return &instrumented{next: next, metrics: rec, logger: log.WithComponent("source")}
}

func (i *instrumented) FetchAll(ctx context.Context, table string) ([]contracts.Record, error) {
	start := time.Now()
	records, err := i.next.FetchAll(ctx, table)
	elapsed := time.Since(start)

	i.metrics.ObserveFetch(table, elapsed, len(records), err)

	fields := map[string]interface{}{
		"table":    table,
		"rows":     len(records),
		"duration": elapsed,
	}
	if err != nil {
		i.logger.WithFields(fields).WithError(err).Warn("Table fetch failed")
		return nil, err
	}
	i.logger.WithFields(fields).Debug("Table fetched")

	return records, nil
}
