package dashboard

import (
	"fmt"

	"github.com/wonny/snapboard/internal/contracts"
	"github.com/wonny/snapboard/internal/dashconfig"
	"github.com/wonny/snapboard/internal/source"
)

func (s *Service) portfolio(res tableResult, cfg dashconfig.Portfolio) ([]contracts.Snapshot, error) {
	if res.err != nil {
		return nil, res.err
	}
	snaps, err := source.DecodeSnapshots(res.records, cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Table, err)
	}
	return snaps, nil
}

func (s *Service) holdingsSection(snaps []contracts.Snapshot, err error) HoldingsSection {
	if err != nil {
		return HoldingsSection{SectionState: stateOf(err)}
	}

	holdings, err := s.engine.CurrentHoldings(snaps)
	if err != nil {
		return HoldingsSection{SectionState: stateOf(err)}
	}

	asOf := holdings[0].SnapshotTime
	return HoldingsSection{
		SectionState: stateOf(nil),
		AsOf:         &asOf,
		TotalValue:   contracts.TotalValue(holdings),
		Holdings:     holdings,
		Allocation:   s.engine.Allocation(holdings),
	}
}

func (s *Service) seriesSection(snaps []contracts.Snapshot, err error) SeriesSection {
	if err != nil {
		return SeriesSection{SectionState: stateOf(err)}
	}
	if len(snaps) == 0 {
		return SeriesSection{SectionState: stateOf(contracts.ErrEmptyPortfolio), Points: []contracts.AggregatePoint{}}
	}

	points := s.engine.Rollup(snaps)
	last := points[len(points)-1].Timestamp
	return SeriesSection{
		SectionState: stateOf(nil),
		Points:       points,
		LastImport:   &last,
	}
}

func (s *Service) panelSection(p dashconfig.Panel, res tableResult) PanelSection {
	section := PanelSection{
		Name:  p.Name,
		Title: p.Title,
		Table: p.Table,
		Field: p.Field,
		Band:  p.Band,
	}

	latest, err := s.latestRow(res, p.Table, p.TimeField)
	if err != nil {
		section.SectionState = stateOf(err)
		return section
	}
	asOf := latest.At
	section.AsOf = &asOf

	var class contracts.Classification
	switch p.Kind {
	case dashconfig.KindFlag:
		var raw any
		if raw, err = latest.Record.Value(p.Field); err == nil {
			class, err = s.engine.ClassifyFlag(raw)
		}
	default:
		var value float64
		if value, err = latest.Record.Float(p.Field); err == nil {
			class = s.engine.Classify(value, *p.Band)
		}
	}
	if err != nil {
		section.SectionState = stateOf(fmt.Errorf("%s.%s: %w", p.Table, p.Field, err))
		return section
	}

	if p.Invert {
		class = class.Inverted()
	}
	section.SectionState = stateOf(nil)
	section.Classification = &class
	return section
}

func (s *Service) emaSection(m *dashconfig.EmaMatrix, layout contracts.MatrixLayout, res tableResult) EmaSection {
	section := EmaSection{Table: m.Table}

	latest, err := s.latestRow(res, m.Table, m.TimeField)
	if err != nil {
		section.SectionState = stateOf(err)
		return section
	}
	asOf := latest.At
	section.AsOf = &asOf

	matrix, err := s.engine.Matrix(latest.Record, layout)
	section.Matrix = matrix
	for _, row := range matrix.Rows {
		if row.Err != nil {
			section.RowErrors = append(section.RowErrors, RowError{Index: row.Index, Error: row.Err.Error()})
		}
	}
	section.SectionState = stateOf(err)
	return section
}

// latestRow decodes a table and picks its single latest row (last-wins on ties)
func (s *Service) latestRow(res tableResult, table, timeField string) (contracts.TimestampedRecord, error) {
	if res.err != nil {
		return contracts.TimestampedRecord{}, res.err
	}

	rows, err := source.DecodeTimestamped(res.records, timeField)
	if err != nil {
		return contracts.TimestampedRecord{}, fmt.Errorf("%s: %w", table, err)
	}

	latest, err := s.engine.LatestRecord(rows)
	if err != nil {
		return contracts.TimestampedRecord{}, fmt.Errorf("%s: %w", table, err)
	}
	return latest, nil
}
