package profile

import (
	"fmt"
)

// Criterion selects which outlier rule drives chart highlighting
type Criterion string

const (
	CriterionNone   Criterion = ""
	CriterionIQR    Criterion = "IQR"
	CriterionZScore Criterion = "Z-score"
)

// Valid reports whether the criterion is known
func (c Criterion) Valid() bool {
	return c == CriterionNone || c == CriterionIQR || c == CriterionZScore
}

// Defaults shared by configuration and the evaluator
const (
	DefaultIQRMultiplier   = 1.5
	DefaultZScoreThreshold = 3.0
)

// OutlierConfig parameterizes series evaluation
type OutlierConfig struct {
	Criterion       Criterion `json:"criterion,omitempty"`
	IQRMultiplier   float64   `json:"multiplier,omitempty"`
	ZScoreThreshold float64   `json:"threshold,omitempty"`
}

// Normalize fills zero-valued parameters with their defaults
func (c OutlierConfig) Normalize() OutlierConfig {
	if c.IQRMultiplier == 0 {
		c.IQRMultiplier = DefaultIQRMultiplier
	}
	if c.ZScoreThreshold == 0 {
		c.ZScoreThreshold = DefaultZScoreThreshold
	}
	return c
}

// Validate checks the configuration once, at pipeline start
func (c OutlierConfig) Validate() error {
	if !c.Criterion.Valid() {
		return fmt.Errorf("unknown outlier criterion: %q", c.Criterion)
	}
	if c.IQRMultiplier < 0 {
		return fmt.Errorf("IQR multiplier must be non-negative, got %v", c.IQRMultiplier)
	}
	if c.ZScoreThreshold < 0 {
		return fmt.Errorf("Z-score threshold must be non-negative, got %v", c.ZScoreThreshold)
	}
	return nil
}

// Bounds is the (lower, upper) pair a renderer uses to mark the acceptable
// range on a chart
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Evaluation is the descriptive-statistics record for one aggregated series
type Evaluation struct {
	Mean             float64 `json:"mean"`
	Std              float64 `json:"std"` // sample standard deviation; 0 means a constant series
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	Q1               float64 `json:"q1"`
	Q3               float64 `json:"q3"`
	OutlierPctIQR    float64 `json:"outlier_pct_iqr"`
	OutlierPctZScore float64 `json:"outlier_pct_zscore"`
	Highlight        *Bounds `json:"highlight_bounds,omitempty"`
}

// Range returns max - min
func (e Evaluation) Range() float64 {
	return e.Max - e.Min
}

// IQR returns q3 - q1
func (e Evaluation) IQR() float64 {
	return e.Q3 - e.Q1
}
