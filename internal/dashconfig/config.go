package dashconfig

import (
	"github.com/wonny/snapboard/internal/contracts"
	"github.com/wonny/snapboard/internal/snapshot"
	"github.com/wonny/snapboard/internal/source"
)

// Panel kinds
const (
	KindThreshold = "threshold"
	KindFlag      = "flag"
)

// Config는 대시보드 파생 지표의 전체 설정
// ⭐ SSOT: 테이블 이름, 밴드, EMA 매트릭스 레이아웃은 여기서만 정의
type Config struct {
	Portfolio Portfolio  `yaml:"portfolio" json:"portfolio"`
	Panels    []Panel    `yaml:"panels" json:"panels"`
	EmaMatrix *EmaMatrix `yaml:"ema_matrix" json:"ema_matrix,omitempty"`
}

// Portfolio points at the holdings snapshot table
type Portfolio struct {
	Table  string                `yaml:"table" json:"table" default:"portfolio_snapshots"`
	Schema source.SnapshotSchema `yaml:"schema" json:"schema"`
}

// Panel classifies one field of the latest row of a table
type Panel struct {
	Name      string                   `yaml:"name" json:"name"`
	Title     string                   `yaml:"title" json:"title,omitempty"`
	Table     string                   `yaml:"table" json:"table"`
	TimeField string                   `yaml:"time_field" json:"time_field" default:"created_at"`
	Field     string                   `yaml:"field" json:"field"`
	Kind      string                   `yaml:"kind" json:"kind" default:"threshold"`
	Band      *contracts.ThresholdBand `yaml:"band" json:"band,omitempty"`
	Invert    bool                     `yaml:"invert" json:"invert,omitempty"` // high values are bad
}

// EmaMatrix is the entity x timeframe comparison read from the latest row of a table
type EmaMatrix struct {
	Table       string                 `yaml:"table" json:"table" default:"EMAs"`
	TimeField   string                 `yaml:"time_field" json:"time_field" default:"created_at"`
	EntityCount int                    `yaml:"entity_count" json:"entity_count"`
	Timeframes  []string               `yaml:"timeframes" json:"timeframes"`
	Pattern     snapshot.LayoutPattern `yaml:"pattern" json:"pattern"`
	Cells       []CellOverride         `yaml:"cells" json:"cells,omitempty"`
}

// CellOverride replaces the pattern-derived columns of one (entity, timeframe) cell
type CellOverride struct {
	Entity    int    `yaml:"entity" json:"entity"` // 0-based
	Timeframe string `yaml:"timeframe" json:"timeframe"`
	Flag      string `yaml:"flag" json:"flag,omitempty"`
	Fast      string `yaml:"fast" json:"fast,omitempty"`
	Slow      string `yaml:"slow" json:"slow,omitempty"`
}

// Tables returns every distinct table the dashboard reads, in first-use order
func (c *Config) Tables() []string {
	seen := make(map[string]bool)
	var tables []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			tables = append(tables, t)
		}
	}

	add(c.Portfolio.Table)
	for _, p := range c.Panels {
		add(p.Table)
	}
	if c.EmaMatrix != nil {
		add(c.EmaMatrix.Table)
	}

	return tables
}

// MatrixLayout expands the pattern, applies cell overrides and validates the result.
// Returns false when no EMA matrix is configured.
func (c *Config) MatrixLayout() (contracts.MatrixLayout, bool, error) {
	m := c.EmaMatrix
	if m == nil {
		return contracts.MatrixLayout{}, false, nil
	}

	pattern := m.Pattern
	if pattern == (snapshot.LayoutPattern{}) {
		pattern = snapshot.DefaultPattern
	}
	layout := snapshot.ExpandPattern(m.EntityCount, m.Timeframes, pattern)

	for _, o := range m.Cells {
		cell, ok := findCell(layout, o.Entity, o.Timeframe)
		if !ok {
			return contracts.MatrixLayout{}, true, ValidationError{
				Field:   "ema_matrix.cells",
				Message: "no cell for entity " + itoa(o.Entity) + " timeframe " + o.Timeframe,
			}
		}
		cell.Flag, cell.Fast, cell.Slow = o.Flag, o.Fast, o.Slow
	}

	if err := snapshot.ValidateLayout(layout); err != nil {
		return contracts.MatrixLayout{}, true, ValidationError{Field: "ema_matrix", Message: err.Error()}
	}
	return layout, true, nil
}

func findCell(layout contracts.MatrixLayout, entity int, tf string) (*contracts.CellSource, bool) {
	if entity < 0 || entity >= len(layout.Entities) {
		return nil, false
	}
	cells := layout.Entities[entity].Cells
	for i := range cells {
		if cells[i].Timeframe == tf {
			return &cells[i], true
		}
	}
	return nil, false
}
