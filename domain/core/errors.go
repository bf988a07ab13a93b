package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural errors, fatal for the whole run
	ErrNoTemporalColumn     = errors.New("no temporal column to bucket by")
	ErrInvalidTemporalValue = errors.New("invalid temporal value")
	ErrAggregation          = errors.New("aggregation failed")

	// Collaborator boundary errors, surfaced before the pipeline starts
	ErrUnsupportedSourceFormat = errors.New("unsupported source format")
	ErrUnsupportedTransform    = errors.New("unsupported transform")

	// Recoverable errors, logged and worked around
	ErrMissingTargetColumn = errors.New("target column not found")
	ErrNonBinaryTarget     = errors.New("target column is not binary")

	// Branch-local errors, fail one evaluation section only
	ErrEmptySeries = errors.New("empty series")
)

// Error constructors with context
func NewInvalidTemporalValueError(column, raw string) error {
	return fmt.Errorf("%w: column %s, value %q", ErrInvalidTemporalValue, column, raw)
}

func NewAggregationError(exprName string, err error) error {
	return fmt.Errorf("%w: expression %s: %v", ErrAggregation, exprName, err)
}

func NewUnsupportedTransformError(detail string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedTransform, detail)
}

func NewMissingTargetColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrMissingTargetColumn, column)
}

func NewNonBinaryTargetError(column string) error {
	return fmt.Errorf("%w: column %q has more than 2 distinct values", ErrNonBinaryTarget, column)
}

// IsFatal reports whether an error aborts the whole run rather than a
// single evaluation branch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoTemporalColumn) ||
		errors.Is(err, ErrInvalidTemporalValue) ||
		errors.Is(err, ErrAggregation) ||
		errors.Is(err, ErrUnsupportedSourceFormat) ||
		errors.Is(err, ErrUnsupportedTransform)
}

// IsRecoverable reports whether an error is logged as a warning and the
// run proceeds without the affected feature.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrMissingTargetColumn) ||
		errors.Is(err, ErrNonBinaryTarget)
}

// IsBranchError reports whether an error is confined to one evaluation
// section; sibling sections continue.
func IsBranchError(err error) bool {
	return errors.Is(err, ErrEmptySeries)
}
