package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"timeprof/domain/core"
	"timeprof/domain/profile"
)

// EvaluateSeries computes descriptive statistics and outlier percentages
// for one aggregated series (one value per time bucket). NaN entries mark
// statistics that were undefined on their bucket and are dropped before
// evaluation; a series with nothing left is core.ErrEmptySeries.
//
// The function is pure: it never mutates its input and has no side
// effects. Standard deviation is the sample (Bessel-corrected) form, and a
// constant series legitimately evaluates to std == 0.
func EvaluateSeries(series []float64, cfg profile.OutlierConfig) (profile.Evaluation, error) {
	cfg = cfg.Normalize()

	values := dropNaN(series)
	n := len(values)
	if n == 0 {
		return profile.Evaluation{}, core.ErrEmptySeries
	}

	mean, _ := stats.Mean(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	std := 0.0
	if n > 1 {
		std, _ = stats.StandardDeviationSample(values)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)

	iqr := q3 - q1
	lower := q1 - cfg.IQRMultiplier*iqr
	upper := q3 + cfg.IQRMultiplier*iqr

	outliersIQR := 0
	outliersZ := 0
	for _, v := range values {
		if v < lower || v > upper {
			outliersIQR++
		}
		if std > 0 && math.Abs(v-mean)/std > cfg.ZScoreThreshold {
			outliersZ++
		}
	}

	eval := profile.Evaluation{
		Mean:             mean,
		Std:              std,
		Min:              min,
		Max:              max,
		Q1:               q1,
		Q3:               q3,
		OutlierPctIQR:    100 * float64(outliersIQR) / float64(n),
		OutlierPctZScore: 100 * float64(outliersZ) / float64(n),
	}

	switch cfg.Criterion {
	case profile.CriterionIQR:
		eval.Highlight = &profile.Bounds{Lower: lower, Upper: upper}
	case profile.CriterionZScore:
		eval.Highlight = &profile.Bounds{
			Lower: mean - cfg.ZScoreThreshold*std,
			Upper: mean + cfg.ZScoreThreshold*std,
		}
	}

	return eval, nil
}

// quantile computes the p-quantile of sorted data with linear interpolation
// between order statistics. Neither montanaflynn's Percentile nor gonum's
// CumulantKinds implement this interpolation rule, so it lives here.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func dropNaN(series []float64) []float64 {
	values := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}
