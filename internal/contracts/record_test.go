package contracts

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Float(t *testing.T) {
	rec := Record{
		"f64":    0.65,
		"int":    3,
		"number": json.Number("120.5"),
		"text":   " 42.5 ",
		"word":   "high",
		"flag":   true,
		"nil":    nil,
	}

	tests := []struct {
		field   string
		want    float64
		wantErr bool
		missing bool
	}{
		{field: "f64", want: 0.65},
		{field: "int", want: 3},
		{field: "number", want: 120.5},
		{field: "text", want: 42.5},
		{field: "word", wantErr: true},
		{field: "flag", wantErr: true},
		{field: "nil", wantErr: true, missing: true},
		{field: "absent", wantErr: true, missing: true},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := rec.Float(tt.field)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.Equal(t, tt.missing, fieldErr.Missing())
		})
	}
}

func TestRecord_Time(t *testing.T) {
	want := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  time.Time
	}{
		{"time value", want.In(time.FixedZone("KST", 9*3600)), want},
		{"rfc3339 offset", "2025-03-01T21:30:00+09:00", want},
		{"row_to_json timestamptz", "2025-03-01T12:30:00+00:00", want},
		{"no zone", "2025-03-01T12:30:00", want},
		{"postgres text", "2025-03-01 12:30:00+00", want},
		{"fractional", "2025-03-01T12:30:00.000000Z", want},
		{"unix seconds", json.Number("1740832200"), want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Record{"created_at": tt.value}.Time("created_at")
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := Record{"created_at": "yesterday"}.Time("created_at")
	assert.Error(t, err)
}

func TestRecord_String(t *testing.T) {
	rec := Record{"coin": "BTC", "n": json.Number("7"), "b": false}

	s, err := rec.String("coin")
	require.NoError(t, err)
	assert.Equal(t, "BTC", s)

	s, err = rec.String("n")
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	_, err = rec.String("b")
	assert.Error(t, err)
}

func TestNumber(t *testing.T) {
	for _, v := range []any{1, int64(1), float32(1), 1.0, json.Number("1"), uint8(1)} {
		f, ok := Number(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, 1.0, f)
	}

	for _, v := range []any{"1", true, nil, json.Number("x")} {
		_, ok := Number(v)
		assert.False(t, ok, "%T", v)
	}
}

func TestRecord_Bool(t *testing.T) {
	rec := Record{"t": true, "one": json.Number("1"), "zero": 0, "half": 0.5, "s": "true"}

	b, err := rec.Bool("t")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = rec.Bool("one")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = rec.Bool("zero")
	require.NoError(t, err)
	assert.False(t, b)

	for _, field := range []string{"half", "s", "absent"} {
		_, err = rec.Bool(field)
		assert.Error(t, err, field)
	}
}
