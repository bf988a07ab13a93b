package profiling

import (
	"errors"
	"math"
	"testing"

	"timeprof/domain/core"
	"timeprof/domain/profile"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluateSeries_IQROutlier(t *testing.T) {
	// One extreme value among five ordinary ones
	series := []float64{1, 2, 3, 4, 5, 100}
	cfg := profile.OutlierConfig{Criterion: profile.CriterionIQR}

	eval, err := EvaluateSeries(series, cfg)
	if err != nil {
		t.Fatalf("EvaluateSeries failed: %v", err)
	}

	if !almostEqual(eval.Q1, 2.25) {
		t.Errorf("Q1 = %v, want 2.25", eval.Q1)
	}
	if !almostEqual(eval.Q3, 4.75) {
		t.Errorf("Q3 = %v, want 4.75", eval.Q3)
	}
	if !almostEqual(eval.IQR(), 2.5) {
		t.Errorf("IQR = %v, want 2.5", eval.IQR())
	}
	if eval.Highlight == nil {
		t.Fatal("expected highlight bounds for IQR criterion")
	}
	if !almostEqual(eval.Highlight.Lower, -1.5) || !almostEqual(eval.Highlight.Upper, 8.5) {
		t.Errorf("bounds = (%v, %v), want (-1.5, 8.5)", eval.Highlight.Lower, eval.Highlight.Upper)
	}
	// 100 is the sole outlier out of six values
	want := 100.0 / 6.0
	if !almostEqual(eval.OutlierPctIQR, want) {
		t.Errorf("OutlierPctIQR = %v, want %v", eval.OutlierPctIQR, want)
	}
	if eval.Min != 1 || eval.Max != 100 {
		t.Errorf("range = [%v, %v], want [1, 100]", eval.Min, eval.Max)
	}
}

func TestEvaluateSeries_ConstantSeries(t *testing.T) {
	eval, err := EvaluateSeries([]float64{5, 5, 5, 5}, profile.OutlierConfig{})
	if err != nil {
		t.Fatalf("EvaluateSeries failed: %v", err)
	}
	if eval.Std != 0 {
		t.Errorf("Std = %v, want 0 for constant series", eval.Std)
	}
	if eval.OutlierPctZScore != 0 {
		t.Errorf("OutlierPctZScore = %v, want 0 when std == 0", eval.OutlierPctZScore)
	}
}

func TestEvaluateSeries_ZScoreHighlight(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	cfg := profile.OutlierConfig{Criterion: profile.CriterionZScore, ZScoreThreshold: 2.0}

	eval, err := EvaluateSeries(series, cfg)
	if err != nil {
		t.Fatalf("EvaluateSeries failed: %v", err)
	}
	if eval.Highlight == nil {
		t.Fatal("expected highlight bounds for Z-score criterion")
	}
	wantLower := eval.Mean - 2.0*eval.Std
	wantUpper := eval.Mean + 2.0*eval.Std
	if !almostEqual(eval.Highlight.Lower, wantLower) || !almostEqual(eval.Highlight.Upper, wantUpper) {
		t.Errorf("bounds = (%v, %v), want (%v, %v)",
			eval.Highlight.Lower, eval.Highlight.Upper, wantLower, wantUpper)
	}
	if eval.Highlight.Lower > eval.Highlight.Upper {
		t.Error("lower bound must not exceed upper bound")
	}
}

func TestEvaluateSeries_NoCriterionNoBounds(t *testing.T) {
	eval, err := EvaluateSeries([]float64{1, 2, 3}, profile.OutlierConfig{})
	if err != nil {
		t.Fatalf("EvaluateSeries failed: %v", err)
	}
	if eval.Highlight != nil {
		t.Errorf("expected nil highlight bounds without a criterion, got %+v", eval.Highlight)
	}
}

func TestEvaluateSeries_EmptySeries(t *testing.T) {
	if _, err := EvaluateSeries(nil, profile.OutlierConfig{}); !errors.Is(err, core.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
	// All-NaN means every bucket lacked the statistic
	nan := math.NaN()
	if _, err := EvaluateSeries([]float64{nan, nan}, profile.OutlierConfig{}); !errors.Is(err, core.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries for all-NaN series, got %v", err)
	}
}

func TestEvaluateSeries_NaNEntriesDropped(t *testing.T) {
	series := []float64{1, math.NaN(), 3}
	eval, err := EvaluateSeries(series, profile.OutlierConfig{})
	if err != nil {
		t.Fatalf("EvaluateSeries failed: %v", err)
	}
	if !almostEqual(eval.Mean, 2) {
		t.Errorf("Mean = %v, want 2 after dropping NaN", eval.Mean)
	}
}

func TestEvaluateSeries_PercentagesBounded(t *testing.T) {
	cases := [][]float64{
		{1},
		{1, 1, 1, 100, -100},
		{0, 0, 0, 0, 1e9},
		{-5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5},
	}
	for _, series := range cases {
		eval, err := EvaluateSeries(series, profile.OutlierConfig{})
		if err != nil {
			t.Fatalf("EvaluateSeries(%v) failed: %v", series, err)
		}
		if eval.OutlierPctIQR < 0 || eval.OutlierPctIQR > 100 {
			t.Errorf("OutlierPctIQR = %v out of [0, 100] for %v", eval.OutlierPctIQR, series)
		}
		if eval.OutlierPctZScore < 0 || eval.OutlierPctZScore > 100 {
			t.Errorf("OutlierPctZScore = %v out of [0, 100] for %v", eval.OutlierPctZScore, series)
		}
	}
}

func TestEvaluateSeries_SmallSeriesQuantiles(t *testing.T) {
	// n < 4 still yields interpolated, possibly degenerate quantiles
	eval, err := EvaluateSeries([]float64{10, 20}, profile.OutlierConfig{})
	if err != nil {
		t.Fatalf("EvaluateSeries failed: %v", err)
	}
	if !almostEqual(eval.Q1, 12.5) || !almostEqual(eval.Q3, 17.5) {
		t.Errorf("quantiles = (%v, %v), want (12.5, 17.5)", eval.Q1, eval.Q3)
	}

	single, err := EvaluateSeries([]float64{7}, profile.OutlierConfig{})
	if err != nil {
		t.Fatalf("EvaluateSeries failed: %v", err)
	}
	if single.Q1 != 7 || single.Q3 != 7 {
		t.Errorf("single-value quantiles = (%v, %v), want (7, 7)", single.Q1, single.Q3)
	}
	if single.Std != 0 {
		t.Errorf("single-value std = %v, want 0", single.Std)
	}
}
