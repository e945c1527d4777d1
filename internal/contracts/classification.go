package contracts

import "fmt"

// Label is the outcome of a threshold or flag classification
type Label string

const (
	LabelBelow  Label = "below"
	LabelWithin Label = "within"
	LabelAbove  Label = "above"

	// flag states
	LabelStateA Label = "favorable"
	LabelStateB Label = "unfavorable"
)

// Severity is the display tone attached to a label
type Severity string

const (
	SeverityNegative Severity = "negative"
	SeverityNeutral  Severity = "neutral"
	SeverityPositive Severity = "positive"
)

// ThresholdBand is an inclusive (lower, upper) band
type ThresholdBand struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Validate checks lower <= upper
func (b ThresholdBand) Validate() error {
	if b.Lower > b.Upper {
		return fmt.Errorf("band lower %v > upper %v", b.Lower, b.Upper)
	}
	return nil
}

// Classification is derived on every read and never persisted
type Classification struct {
	Label    Label    `json:"label"`
	Severity Severity `json:"severity"`
	RawValue float64  `json:"raw_value"`
}

// Inverted swaps negative and positive severity, for metrics where high is bad
func (c Classification) Inverted() Classification {
	switch c.Severity {
	case SeverityNegative:
		c.Severity = SeverityPositive
	case SeverityPositive:
		c.Severity = SeverityNegative
	}
	return c
}
