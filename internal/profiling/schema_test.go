package profiling

import (
	"testing"

	"timeprof/domain/schema"
)

func TestClassify(t *testing.T) {
	cases := map[schema.ElementType]ColumnClass{
		schema.Date:     ClassTemporal,
		schema.Datetime: ClassTemporal,
		schema.Integer:  ClassNumeric,
		schema.Float:    ClassNumeric,
		schema.Boolean:  ClassOther,
		schema.String:   ClassOther,
		schema.Other:    ClassOther,
	}
	for tp, want := range cases {
		if got := Classify(tp); got != want {
			t.Errorf("Classify(%s) = %s, want %s", tp, got, want)
		}
	}
}

func TestBuildPlan_ClassificationDrivesExtras(t *testing.T) {
	s, err := schema.New([]schema.Column{
		{Name: "flag", Type: schema.Boolean},
		{Name: "amount", Type: schema.Float},
	})
	if err != nil {
		t.Fatalf("schema.New failed: %v", err)
	}
	plan, _ := BuildPlan(s, "", nil)

	names := map[string]bool{}
	for _, n := range plan.Names() {
		names[n] = true
	}
	if !names["amount__std"] {
		t.Error("numeric-classed column missing its extras")
	}
	// booleans widen for filters but are not numeric-classed for profiling
	if names["flag__std"] {
		t.Error("non-numeric-classed column must not get numeric extras")
	}
}
