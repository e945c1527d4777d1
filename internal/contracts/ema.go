package contracts

// EmaCell is one fast-above-slow comparison for an entity and timeframe
type EmaCell struct {
	Entity        string `json:"entity"`
	Timeframe     string `json:"timeframe"`
	FastAboveSlow bool   `json:"fast_above_slow"`
}

// EmaRow is one entity's row of the matrix. Err is set when the row could not be built.
type EmaRow struct {
	Index  int       `json:"index"`
	Entity string    `json:"entity,omitempty"`
	Cells  []EmaCell `json:"cells,omitempty"`
	Err    error     `json:"-"`
}

// EmaMatrix holds rows in configured entity order
type EmaMatrix struct {
	Timeframes []string `json:"timeframes"`
	Rows       []EmaRow `json:"rows"`
}

// Cells flattens complete rows, entity-major then timeframe order
func (m *EmaMatrix) Cells() []EmaCell {
	cells := make([]EmaCell, 0, len(m.Rows)*len(m.Timeframes))
	for _, row := range m.Rows {
		if row.Err != nil {
			continue
		}
		cells = append(cells, row.Cells...)
	}
	return cells
}

// Complete reports whether every row was built
func (m *EmaMatrix) Complete() bool {
	for _, row := range m.Rows {
		if row.Err != nil {
			return false
		}
	}
	return true
}

// CellSource names the column(s) behind one cell: either a boolean/0-1 flag,
// or a fast/slow pair compared as fast > slow.
type CellSource struct {
	Timeframe string `json:"timeframe"`
	Flag      string `json:"flag,omitempty"`
	Fast      string `json:"fast,omitempty"`
	Slow      string `json:"slow,omitempty"`
}

// Derived reports whether the cell compares a fast/slow pair
func (c CellSource) Derived() bool {
	return c.Flag == ""
}

// EntityLayout is the resolved column mapping for one tracked entity
type EntityLayout struct {
	Index     int          `json:"index"`
	NameField string       `json:"name_field"`
	Cells     []CellSource `json:"cells"` // same order as MatrixLayout.Timeframes
}

// MatrixLayout is the explicit (entityIndex, timeframe) -> column mapping, resolved once at load
type MatrixLayout struct {
	Timeframes []string       `json:"timeframes"`
	Entities   []EntityLayout `json:"entities"`
}

// EntityCount returns the number of tracked entities
func (l MatrixLayout) EntityCount() int {
	return len(l.Entities)
}
