package ports

import (
	"timeprof/domain/profile"
)

// Reporter consumes a completed run: the aggregated table, the column
// metadata, and the per-section evaluations
type Reporter interface {
	Write(result *profile.RunResult) error
}
