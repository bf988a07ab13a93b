package profiling

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"timeprof/domain/core"
	"timeprof/domain/frame"
	"timeprof/domain/profile"
	"timeprof/domain/schema"
	"timeprof/internal"
)

// Accepted layouts for strict parsing of textual temporal keys. The first
// matching layout wins for the whole column; mixing layouts within one
// column is a hard failure.
var temporalLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseInterval parses a bucket-width literal: an integer count followed by
// a unit, one of m (minutes), h (hours), d (days), w (weeks).
func ParseInterval(lit string) (time.Duration, error) {
	lit = strings.TrimSpace(lit)
	if lit == "" {
		return 0, fmt.Errorf("empty time interval")
	}
	unit := lit[len(lit)-1:]
	count, err := strconv.Atoi(lit[:len(lit)-1])
	if err != nil || count <= 0 {
		return 0, fmt.Errorf("invalid time interval %q", lit)
	}
	switch unit {
	case "m":
		return time.Duration(count) * time.Minute, nil
	case "h":
		return time.Duration(count) * time.Hour, nil
	case "d":
		return time.Duration(count) * 24 * time.Hour, nil
	case "w":
		return time.Duration(count) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid time interval unit %q in %q", unit, lit)
	}
}

// ResolveTemporalKey determines the time axis of the frame, converts a
// textual key to a temporal type (strict parsing), truncates every value
// down to the start of its bucket, and renames the column to the
// pipeline-internal key. It returns the source column name that was
// resolved.
//
// With no explicit key the first date/datetime column in declared order is
// used; if none exists the pipeline cannot proceed and
// core.ErrNoTemporalColumn is returned.
func ResolveTemporalKey(fr *frame.Frame, explicit string, interval time.Duration, log *internal.Logger) (string, error) {
	s := fr.Schema()

	key := explicit
	if key != "" {
		t, ok := s.TypeOf(key)
		if !ok {
			return "", fmt.Errorf("%w: configured column %q not in schema", core.ErrNoTemporalColumn, key)
		}
		if t == schema.String {
			if err := parseTemporalColumn(fr, key); err != nil {
				return "", err
			}
		} else if !t.IsTemporal() {
			return "", fmt.Errorf("%w: column %q has type %s", core.ErrNoTemporalColumn, key, t)
		}
	} else {
		auto, ok := s.FirstTemporal()
		if !ok {
			if log != nil {
				log.Debug("schema:\n%s", s.String())
			}
			return "", core.ErrNoTemporalColumn
		}
		key = auto
	}
	if log != nil {
		log.Info("temporal key: %q, bucket width: %s", key, interval)
	}

	truncateColumn(fr, key, interval)
	if err := fr.RenameColumn(key, profile.TimeColumn); err != nil {
		return "", err
	}
	return key, nil
}

// parseTemporalColumn converts a string column to datetime in place.
// Parsing is strict: a single malformed value fails the run rather than
// becoming a silent null.
func parseTemporalColumn(fr *frame.Frame, name string) error {
	col, _ := fr.Column(name)
	values := make([]any, len(col.Values))
	layout := ""
	for i := range col.Values {
		if col.IsNull(i) {
			continue
		}
		raw, ok := col.StringAt(i)
		if !ok {
			return core.NewInvalidTemporalValueError(name, fmt.Sprint(col.Values[i]))
		}
		if layout == "" {
			for _, l := range temporalLayouts {
				if _, err := time.Parse(l, raw); err == nil {
					layout = l
					break
				}
			}
			if layout == "" {
				return core.NewInvalidTemporalValueError(name, raw)
			}
		}
		t, err := time.Parse(layout, raw)
		if err != nil {
			return core.NewInvalidTemporalValueError(name, raw)
		}
		values[i] = t
	}
	return fr.SetColumn(frame.Column{Name: name, Type: schema.Datetime, Values: values})
}

// truncateColumn rounds every value down to the start of its bucket.
// Truncation is explicit by the configured width, in UTC; day-width
// buckets get the date type.
func truncateColumn(fr *frame.Frame, name string, interval time.Duration) {
	col, _ := fr.Column(name)
	elemType := schema.Datetime
	if interval%(24*time.Hour) == 0 {
		elemType = schema.Date
	}
	values := make([]any, len(col.Values))
	for i := range col.Values {
		if t, ok := col.TimeAt(i); ok {
			values[i] = t.UTC().Truncate(interval)
		}
	}
	fr.SetColumn(frame.Column{Name: name, Type: elemType, Values: values})
}
