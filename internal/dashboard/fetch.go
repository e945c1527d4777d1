package dashboard

import (
	"context"

	"github.com/wonny/snapboard/internal/contracts"
)

type tableResult struct {
	records []contracts.Record
	err     error
}

// fetchTables reads every table concurrently under one deadline.
// A table that has not answered by the deadline is reported as a FetchError.
func (s *Service) fetchTables(ctx context.Context, tables []string) map[string]tableResult {
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	slots := make([]chan tableResult, len(tables))
	for i, table := range tables {
		slots[i] = make(chan tableResult, 1)
		go func(slot chan<- tableResult, table string) {
			records, err := s.reader.FetchAll(ctx, table)
			slot <- tableResult{records: records, err: err}
		}(slots[i], table)
	}

	results := make(map[string]tableResult, len(tables))
	for i, table := range tables {
		var res tableResult
		select {
		case res = <-slots[i]:
		case <-ctx.Done():
			// 늦게 도착한 결과는 버퍼 채널에 남고 버려짐
			select {
			case res = <-slots[i]:
			default:
				res = tableResult{err: ctx.Err()}
			}
		}
		if res.err != nil {
			res = tableResult{err: &FetchError{Table: table, Err: res.err}}
		}
		results[table] = res
	}

	return results
}
