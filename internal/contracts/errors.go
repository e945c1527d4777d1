package contracts

import (
	"errors"
	"fmt"
)

// Empty-source sentinels. Both mean "no data yet", never "malformed".
var (
	ErrEmptyInput     = errors.New("no records to select from")
	ErrEmptyPortfolio = errors.New("no portfolio snapshots")
)

// ReasonMissing marks a FieldError caused by an absent column
const ReasonMissing = "missing"

// FieldError is a decode failure on one column of a record
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Missing reports whether the field was absent rather than mistyped
func (e *FieldError) Missing() bool {
	return e.Reason == ReasonMissing
}

// InvalidIndicatorError is returned for a flag value other than 0, 1, true or false
type InvalidIndicatorError struct {
	Value any
}

func (e *InvalidIndicatorError) Error() string {
	return fmt.Sprintf("invalid indicator %v (%T): want 0, 1, true or false", e.Value, e.Value)
}

// MissingFieldError reports an EMA matrix cell whose source column is absent.
// Timeframe is empty when the entity name column itself is missing.
type MissingFieldError struct {
	EntityIndex int
	Timeframe   string
	Field       string
}

func (e *MissingFieldError) Error() string {
	if e.Timeframe == "" {
		return fmt.Sprintf("entity %d: missing name field %q", e.EntityIndex, e.Field)
	}
	return fmt.Sprintf("entity %d timeframe %s: missing field %q", e.EntityIndex, e.Timeframe, e.Field)
}

// IsNoData reports whether err means the source simply has nothing yet
func IsNoData(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrEmptyPortfolio)
}

// IsMalformed reports whether err comes from data that does not match its schema
func IsMalformed(err error) bool {
	var fieldErr *FieldError
	var indicatorErr *InvalidIndicatorError
	var missingErr *MissingFieldError
	return errors.As(err, &fieldErr) || errors.As(err, &indicatorErr) || errors.As(err, &missingErr)
}
