package snapshot

import (
	"errors"
	"fmt"

	"github.com/wonny/snapboard/internal/contracts"
)

// BuildMatrix reads one fast-above-slow flag per (entity, timeframe) from a single record.
// Rows are built independently: a missing or malformed column fails its own row only,
// and the returned error joins the row errors (nil when the matrix is complete).
func BuildMatrix(rec contracts.Record, layout contracts.MatrixLayout) (*contracts.EmaMatrix, error) {
	matrix := &contracts.EmaMatrix{
		Timeframes: append([]string(nil), layout.Timeframes...),
		Rows:       make([]contracts.EmaRow, 0, len(layout.Entities)),
	}

	var errs []error
	for _, entity := range layout.Entities {
		row := buildRow(rec, entity)
		if row.Err != nil {
			errs = append(errs, row.Err)
		}
		matrix.Rows = append(matrix.Rows, row)
	}

	return matrix, errors.Join(errs...)
}

// BuildConventionalMatrix builds with DefaultPattern column names
func BuildConventionalMatrix(rec contracts.Record, entityCount int, timeframes []string) (*contracts.EmaMatrix, error) {
	layout, err := ExpandLayout(entityCount, timeframes, DefaultPattern)
	if err != nil {
		return nil, err
	}
	return BuildMatrix(rec, layout)
}

func buildRow(rec contracts.Record, entity contracts.EntityLayout) contracts.EmaRow {
	row := contracts.EmaRow{Index: entity.Index}

	if !rec.Has(entity.NameField) {
		row.Err = &contracts.MissingFieldError{EntityIndex: entity.Index, Field: entity.NameField}
		return row
	}
	name, err := rec.String(entity.NameField)
	if err != nil {
		row.Err = fmt.Errorf("entity %d: %w", entity.Index, err)
		return row
	}
	row.Entity = name

	cells := make([]contracts.EmaCell, 0, len(entity.Cells))
	for _, src := range entity.Cells {
		above, err := readCell(rec, entity.Index, src)
		if err != nil {
			row.Err = err
			return row
		}
		cells = append(cells, contracts.EmaCell{
			Entity:        name,
			Timeframe:     src.Timeframe,
			FastAboveSlow: above,
		})
	}
	row.Cells = cells

	return row
}

func readCell(rec contracts.Record, index int, src contracts.CellSource) (bool, error) {
	if !src.Derived() {
		if !rec.Has(src.Flag) {
			return false, &contracts.MissingFieldError{EntityIndex: index, Timeframe: src.Timeframe, Field: src.Flag}
		}
		above, err := Indicator(rec[src.Flag])
		if err != nil {
			return false, fmt.Errorf("entity %d timeframe %s: %w", index, src.Timeframe, err)
		}
		return above, nil
	}

	for _, field := range []string{src.Fast, src.Slow} {
		if !rec.Has(field) {
			return false, &contracts.MissingFieldError{EntityIndex: index, Timeframe: src.Timeframe, Field: field}
		}
	}

	fast, err := rec.Float(src.Fast)
	if err != nil {
		return false, fmt.Errorf("entity %d timeframe %s: %w", index, src.Timeframe, err)
	}
	slow, err := rec.Float(src.Slow)
	if err != nil {
		return false, fmt.Errorf("entity %d timeframe %s: %w", index, src.Timeframe, err)
	}

	return fast > slow, nil
}
