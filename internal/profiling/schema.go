package profiling

import (
	"timeprof/domain/frame"
	"timeprof/domain/schema"
	"timeprof/internal"
)

// ColumnClass is the planner-facing classification of a column
type ColumnClass string

const (
	ClassTemporal ColumnClass = "temporal"
	ClassNumeric  ColumnClass = "numeric"
	ClassOther    ColumnClass = "other"
)

// Classify maps an element type onto the planner's three-way classification
func Classify(t schema.ElementType) ColumnClass {
	switch {
	case t.IsTemporal():
		return ClassTemporal
	case t.IsNumeric():
		return ClassNumeric
	default:
		return ClassOther
	}
}

// InspectSchema derives the schema of the loaded dataset and logs its
// layout. The result is only valid until the next filter or transform
// step; callers re-derive after any mutation.
func InspectSchema(fr *frame.Frame, log *internal.Logger) schema.Schema {
	s := fr.Schema()
	if log != nil {
		log.Debug("schema (%d columns, %d rows):\n%s", s.Len(), fr.NumRows(), s.String())
	}
	return s
}
