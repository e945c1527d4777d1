package contracts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one untyped row of a source table, keyed by column name
// ⭐ SSOT: 외부 저장소 행은 decode 단계 전까지 이 타입으로만 다룸
type Record map[string]any

// TimestampedRecord is a Record whose snapshot instant has been decoded
type TimestampedRecord struct {
	At     time.Time `json:"at"`
	Record Record    `json:"record"`
}

// Has reports whether field is present with a non-nil value
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// Value returns the raw value of field or a *FieldError when absent
func (r Record) Value(field string) (any, error) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, &FieldError{Field: field, Reason: ReasonMissing}
	}
	return v, nil
}

// Float reads a numeric field. Numeric strings are accepted.
func (r Record) Float(field string) (float64, error) {
	v, err := r.Value(field)
	if err != nil {
		return 0, err
	}

	if f, ok := Number(v); ok {
		return f, nil
	}
	if s, ok := v.(string); ok {
		f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr == nil {
			return f, nil
		}
	}

	return 0, &FieldError{Field: field, Reason: fmt.Sprintf("not a number: %v", v)}
}

// Bool reads a boolean field. Numeric 0/1 are accepted.
func (r Record) Bool(field string) (bool, error) {
	v, err := r.Value(field)
	if err != nil {
		return false, err
	}

	if b, ok := v.(bool); ok {
		return b, nil
	}
	if f, ok := Number(v); ok && (f == 0 || f == 1) {
		return f == 1, nil
	}

	return false, &FieldError{Field: field, Reason: fmt.Sprintf("not a boolean: %v", v)}
}

// String reads a text field
func (r Record) String(field string) (string, error) {
	v, err := r.Value(field)
	if err != nil {
		return "", err
	}

	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case fmt.Stringer:
		return s.String(), nil
	}

	return "", &FieldError{Field: field, Reason: fmt.Sprintf("not text: %T", v)}
}

// timestamp layouts emitted by row_to_json and PostgREST
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Time reads an instant. Strings without a zone are taken as UTC,
// numbers as unix seconds.
func (r Record) Time(field string) (time.Time, error) {
	v, err := r.Value(field)
	if err != nil {
		return time.Time{}, err
	}

	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, perr := time.Parse(layout, s); perr == nil {
				return parsed.UTC(), nil
			}
		}
	default:
		if secs, ok := Number(v); ok {
			whole := int64(secs)
			nanos := int64((secs - float64(whole)) * float64(time.Second))
			return time.Unix(whole, nanos).UTC(), nil
		}
	}

	return time.Time{}, &FieldError{Field: field, Reason: fmt.Sprintf("not a timestamp: %v", v)}
}

// Number converts the numeric kinds a reader may produce. Strings and bools are rejected.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
