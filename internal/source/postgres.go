package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/snapboard/internal/contracts"
)

// Querier is the subset of pgxpool.Pool used by the reader
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresReader reads whole tables through pgx.
// Each row is serialized by row_to_json so every column type decodes the same way
// the REST backend sees it.
// ⭐ SSOT: 읽기 전용. INSERT/UPDATE 없음
type PostgresReader struct {
	db Querier
}

// NewPostgresReader creates a table reader over a pool
func NewPostgresReader(db Querier) *PostgresReader {
	return &PostgresReader{db: db}
}

// FetchAll implements contracts.TableReader
func (r *PostgresReader) FetchAll(ctx context.Context, table string) ([]contracts.Record, error) {
	query := fmt.Sprintf(`SELECT row_to_json(t)::text FROM %s t`, QuoteTable(table))

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}

	payloads, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}

	records := make([]contracts.Record, 0, len(payloads))
	for i, payload := range payloads {
		rec, err := decodeRow(payload)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", table, i, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// QuoteTable sanitizes "table" or "schema.table" as a quoted identifier.
// Case is preserved, so mixed-case tables ("EMAs") resolve as created.
func QuoteTable(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

func decodeRow(payload string) (contracts.Record, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var rec contracts.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	return rec, nil
}
