package ports

import (
	"context"

	"timeprof/domain/frame"
)

// DatasetSource loads a tabular dataset into memory. Implementations cover
// spreadsheet files, CSV, and database queries; an unreadable or unknown
// format surfaces core.ErrUnsupportedSourceFormat before the pipeline runs.
type DatasetSource interface {
	Read(ctx context.Context) (*frame.Frame, error)
}
