package dashconfig

import (
	"fmt"
	"math"
	"strconv"
)

// ValidationError 검증 실패 (로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
// 실패 시 error 반환 (설정 로드 중단, 이전 설정 유지)
func Validate(cfg *Config) error {
	// === Portfolio ===
	if cfg.Portfolio.Table == "" {
		return ValidationError{"portfolio.table", "required"}
	}
	s := cfg.Portfolio.Schema
	for field, column := range map[string]string{
		"portfolio.schema.time_field":   s.TimeField,
		"portfolio.schema.entity_field": s.EntityField,
		"portfolio.schema.amount_field": s.AmountField,
		"portfolio.schema.value_field":  s.ValueField,
	} {
		if column == "" {
			return ValidationError{field, "required"}
		}
	}

	// === Panels ===
	names := make(map[string]bool, len(cfg.Panels))
	for i, p := range cfg.Panels {
		prefix := "panels[" + strconv.Itoa(i) + "]"
		if p.Name == "" {
			return ValidationError{prefix + ".name", "required"}
		}
		if names[p.Name] {
			return ValidationError{prefix + ".name", fmt.Sprintf("duplicate panel %q", p.Name)}
		}
		names[p.Name] = true

		if p.Table == "" {
			return ValidationError{prefix + ".table", "required"}
		}
		if p.Field == "" {
			return ValidationError{prefix + ".field", "required"}
		}
		if p.TimeField == "" {
			return ValidationError{prefix + ".time_field", "required"}
		}

		switch p.Kind {
		case KindThreshold:
			if p.Band == nil {
				return ValidationError{prefix + ".band", "required for threshold panels"}
			}
			if math.IsNaN(p.Band.Lower) || math.IsNaN(p.Band.Upper) {
				return ValidationError{prefix + ".band", "must be numeric"}
			}
			if err := p.Band.Validate(); err != nil {
				return ValidationError{prefix + ".band", err.Error()}
			}
		case KindFlag:
			if p.Band != nil {
				return ValidationError{prefix + ".band", "not allowed for flag panels"}
			}
		default:
			return ValidationError{prefix + ".kind", fmt.Sprintf("must be %s or %s, got %q", KindThreshold, KindFlag, p.Kind)}
		}
	}

	// === EMA matrix ===
	if m := cfg.EmaMatrix; m != nil {
		if m.Table == "" {
			return ValidationError{"ema_matrix.table", "required"}
		}
		if m.EntityCount <= 0 {
			return ValidationError{"ema_matrix.entity_count", "must be > 0"}
		}
		if len(m.Timeframes) == 0 {
			return ValidationError{"ema_matrix.timeframes", "required"}
		}
		if _, _, err := cfg.MatrixLayout(); err != nil {
			return err
		}
	}

	return nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
