package source

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/snapboard/internal/contracts"
)

// SnapshotSchema maps Snapshot fields to the portfolio table's columns
type SnapshotSchema struct {
	TimeField   string `yaml:"time_field" json:"time_field" default:"snapshot_time"`
	EntityField string `yaml:"entity_field" json:"entity_field" default:"coin"`
	AmountField string `yaml:"amount_field" json:"amount_field" default:"amount"`
	ValueField  string `yaml:"value_field" json:"value_field" default:"usd_value"`
}

// DefaultSnapshotSchema is the portfolio_snapshots layout
var DefaultSnapshotSchema = SnapshotSchema{
	TimeField:   "snapshot_time",
	EntityField: "coin",
	AmountField: "amount",
	ValueField:  "usd_value",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeTimestamped decodes the instant of every row from tsField.
// The first undecodable row fails the whole table.
func DecodeTimestamped(records []contracts.Record, tsField string) ([]contracts.TimestampedRecord, error) {
	out := make([]contracts.TimestampedRecord, 0, len(records))
	for i, rec := range records {
		at, err := rec.Time(tsField)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, contracts.TimestampedRecord{At: at, Record: rec})
	}
	return out, nil
}

// DecodeSnapshots decodes and validates portfolio rows
func DecodeSnapshots(records []contracts.Record, schema SnapshotSchema) ([]contracts.Snapshot, error) {
	out := make([]contracts.Snapshot, 0, len(records))
	for i, rec := range records {
		snap, err := decodeSnapshot(rec, schema)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, snap)
	}
	return out, nil
}

func decodeSnapshot(rec contracts.Record, schema SnapshotSchema) (contracts.Snapshot, error) {
	var snap contracts.Snapshot
	var err error

	if snap.SnapshotTime, err = rec.Time(schema.TimeField); err != nil {
		return snap, err
	}
	if snap.Entity, err = rec.String(schema.EntityField); err != nil {
		return snap, err
	}
	if snap.Amount, err = finiteFloat(rec, schema.AmountField); err != nil {
		return snap, err
	}
	if snap.Value, err = finiteFloat(rec, schema.ValueField); err != nil {
		return snap, err
	}

	if err := validate.Struct(snap); err != nil {
		return snap, schemaError(err, schema)
	}
	return snap, nil
}

// finiteFloat reads a numeric column and rejects NaN and ±Inf.
// Postgres numeric emits "NaN" and "Infinity" through row_to_json.
func finiteFloat(rec contracts.Record, field string) (float64, error) {
	f, err := rec.Float(field)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &contracts.FieldError{Field: field, Reason: fmt.Sprintf("not a finite number: %v", f)}
	}
	return f, nil
}

// schemaError reports the first validation failure against its source column
func schemaError(err error, schema SnapshotSchema) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	column := map[string]string{
		"SnapshotTime": schema.TimeField,
		"Entity":       schema.EntityField,
		"Amount":       schema.AmountField,
		"Value":        schema.ValueField,
	}[fe.Field()]
	if column == "" {
		column = fe.Field()
	}

	reason := fe.Tag()
	if fe.Param() != "" {
		reason += "=" + fe.Param()
	}
	return &contracts.FieldError{Field: column, Reason: fmt.Sprintf("failed %s (got %v)", reason, fe.Value())}
}
