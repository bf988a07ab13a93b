package profile

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestTable_Sorted(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
	}
	sorted := &Table{Buckets: []time.Time{day(1), day(2), day(3)}}
	if !sorted.Sorted() {
		t.Error("ascending buckets reported unsorted")
	}
	unsorted := &Table{Buckets: []time.Time{day(2), day(1)}}
	if unsorted.Sorted() {
		t.Error("descending buckets reported sorted")
	}
	dup := &Table{Buckets: []time.Time{day(1), day(1), day(2)}}
	if dup.Sorted() {
		t.Error("duplicate buckets reported sorted")
	}
	empty := &Table{}
	if !empty.Sorted() || empty.Len() != 0 {
		t.Error("empty table must be trivially sorted")
	}
}

func TestTable_JSONRoundTrip(t *testing.T) {
	table := &Table{
		Buckets: []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		Columns: []string{"amount" + SuffixStd},
		Values:  map[string][]float64{"amount" + SuffixStd: {math.NaN()}},
	}
	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), "null") {
		t.Errorf("undefined statistic must encode as null, got %s", data)
	}

	var decoded Table
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	series, ok := decoded.Series("amount" + SuffixStd)
	if !ok || len(series) != 1 || !math.IsNaN(series[0]) {
		t.Errorf("null must decode back to NaN, got %v", series)
	}
}

func TestColumnMeta_DtypeNullOnWire(t *testing.T) {
	data, err := json.Marshal(ColumnMeta{Column: "channel"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"dtype":null`) {
		t.Errorf("non-numeric dtype must encode as null, got %s", data)
	}

	dtype := "float"
	data, err = json.Marshal(ColumnMeta{Column: "amount", Dtype: &dtype, IsNumeric: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"dtype":"float"`) {
		t.Errorf("numeric dtype must carry the type name, got %s", data)
	}
}

func TestPlan_Fingerprint(t *testing.T) {
	plan := Plan{Exprs: []AggExpr{
		{Name: CountColumn, Kind: AggCount},
		{Name: "amount" + SuffixMean, Column: "amount", Kind: AggMean},
	}}
	same := Plan{Exprs: []AggExpr{
		{Name: CountColumn, Kind: AggCount},
		{Name: "amount" + SuffixMean, Column: "amount", Kind: AggMean},
	}}
	if plan.Fingerprint() != same.Fingerprint() {
		t.Error("identical plans must share a fingerprint")
	}

	reordered := Plan{Exprs: []AggExpr{same.Exprs[1], same.Exprs[0]}}
	if plan.Fingerprint() == reordered.Fingerprint() {
		t.Error("expression order must be part of the fingerprint")
	}
}

func TestOutlierConfig_Normalize(t *testing.T) {
	cfg := OutlierConfig{Criterion: CriterionIQR}.Normalize()
	if cfg.IQRMultiplier != DefaultIQRMultiplier {
		t.Errorf("multiplier = %v, want default", cfg.IQRMultiplier)
	}
	if cfg.ZScoreThreshold != DefaultZScoreThreshold {
		t.Errorf("threshold = %v, want default", cfg.ZScoreThreshold)
	}

	custom := OutlierConfig{IQRMultiplier: 2.5, ZScoreThreshold: 2.0}.Normalize()
	if custom.IQRMultiplier != 2.5 || custom.ZScoreThreshold != 2.0 {
		t.Errorf("explicit parameters overwritten: %+v", custom)
	}
}

func TestOutlierConfig_Validate(t *testing.T) {
	for _, c := range []Criterion{CriterionNone, CriterionIQR, CriterionZScore} {
		if err := (OutlierConfig{Criterion: c}.Normalize()).Validate(); err != nil {
			t.Errorf("criterion %q rejected: %v", c, err)
		}
	}
	if err := (OutlierConfig{Criterion: "mad"}).Validate(); err == nil {
		t.Error("unknown criterion must be rejected")
	}
	if err := (OutlierConfig{IQRMultiplier: -1}).Validate(); err == nil {
		t.Error("negative multiplier must be rejected")
	}
}

func TestEvaluation_DerivedValues(t *testing.T) {
	e := Evaluation{Min: 2, Max: 10, Q1: 4, Q3: 7}
	if e.Range() != 8 {
		t.Errorf("Range = %v, want 8", e.Range())
	}
	if e.IQR() != 3 {
		t.Errorf("IQR = %v, want 3", e.IQR())
	}
}
