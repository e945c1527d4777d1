package dashboard

import (
	"time"

	"github.com/wonny/snapboard/internal/contracts"
)

// Status is the outcome of one dashboard section
type Status string

const (
	StatusOK          Status = "ok"
	StatusNoData      Status = "no_data"     // source is empty, nothing to show yet
	StatusMalformed   Status = "malformed"   // rows do not match their schema
	StatusUnavailable Status = "unavailable" // fetch failed or timed out
)

// Section names, also used as metric labels
const (
	SectionHoldings = "holdings"
	SectionSeries   = "series"
	SectionPanel    = "panel"
	SectionEma      = "ema"
)

// SectionState is embedded in every section. Message is set whenever Status != ok.
type SectionState struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the section built cleanly
func (s SectionState) OK() bool {
	return s.Status == StatusOK
}

// Dashboard is one derivation pass over every configured table.
// Sections fail independently; a failed section never hides the others.
type Dashboard struct {
	GeneratedAt time.Time       `json:"generated_at"`
	ConfigHash  string          `json:"config_hash"`
	Holdings    HoldingsSection `json:"holdings"`
	Series      SeriesSection   `json:"series"`
	Panels      []PanelSection  `json:"panels"`
	Ema         *EmaSection     `json:"ema,omitempty"`
}

// HoldingsSection is the ranked latest portfolio snapshot
type HoldingsSection struct {
	SectionState
	AsOf       *time.Time                  `json:"as_of,omitempty"`
	TotalValue float64                     `json:"total_value"`
	Holdings   []contracts.Snapshot        `json:"holdings"`
	Allocation []contracts.AllocationSlice `json:"allocation"`
}

// SeriesSection is the total portfolio value over time
type SeriesSection struct {
	SectionState
	Points     []contracts.AggregatePoint `json:"points"`
	LastImport *time.Time                 `json:"last_import,omitempty"`
}

// PanelSection is one classified field of a table's latest row
type PanelSection struct {
	SectionState
	Name           string                    `json:"name"`
	Title          string                    `json:"title,omitempty"`
	Table          string                    `json:"table"`
	Field          string                    `json:"field"`
	AsOf           *time.Time                `json:"as_of,omitempty"`
	Band           *contracts.ThresholdBand  `json:"band,omitempty"`
	Classification *contracts.Classification `json:"classification,omitempty"`
}

// EmaSection is the EMA comparison matrix. Rows that failed are listed in RowErrors
// while the remaining rows are still returned.
type EmaSection struct {
	SectionState
	Table     string               `json:"table"`
	AsOf      *time.Time           `json:"as_of,omitempty"`
	Matrix    *contracts.EmaMatrix `json:"matrix,omitempty"`
	RowErrors []RowError           `json:"row_errors,omitempty"`
}

// RowError describes one matrix row that could not be built
type RowError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// Panel returns the named panel section
func (d *Dashboard) Panel(name string) (PanelSection, bool) {
	for _, p := range d.Panels {
		if p.Name == name {
			return p, true
		}
	}
	return PanelSection{}, false
}

// Degraded reports whether any section did not build cleanly
func (d *Dashboard) Degraded() bool {
	if !d.Holdings.OK() || !d.Series.OK() {
		return true
	}
	for _, p := range d.Panels {
		if !p.OK() {
			return true
		}
	}
	return d.Ema != nil && !d.Ema.OK()
}
