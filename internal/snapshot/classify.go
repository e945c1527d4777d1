package snapshot

import (
	"github.com/wonny/snapboard/internal/contracts"
)

// Classify places value against an inclusive band. Total over all values.
func Classify(value float64, band contracts.ThresholdBand) contracts.Classification {
	switch {
	case value < band.Lower:
		return contracts.Classification{Label: contracts.LabelBelow, Severity: contracts.SeverityNegative, RawValue: value}
	case value > band.Upper:
		return contracts.Classification{Label: contracts.LabelAbove, Severity: contracts.SeverityPositive, RawValue: value}
	default:
		return contracts.Classification{Label: contracts.LabelWithin, Severity: contracts.SeverityNeutral, RawValue: value}
	}
}

// ClassifyFlag maps a 0/1 or boolean indicator to StateA (true) or StateB (false)
func ClassifyFlag(indicator any) (contracts.Classification, error) {
	state, err := Indicator(indicator)
	if err != nil {
		return contracts.Classification{}, err
	}

	if state {
		return contracts.Classification{Label: contracts.LabelStateA, Severity: contracts.SeverityPositive, RawValue: 1}, nil
	}
	return contracts.Classification{Label: contracts.LabelStateB, Severity: contracts.SeverityNegative, RawValue: 0}, nil
}

// Indicator coerces a raw flag: numeric 1/0 or bool. Anything else is an InvalidIndicatorError.
func Indicator(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}

	if f, ok := contracts.Number(v); ok {
		switch f {
		case 1:
			return true, nil
		case 0:
			return false, nil
		}
	}

	return false, &contracts.InvalidIndicatorError{Value: v}
}
