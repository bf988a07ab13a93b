// Package postgres loads query results into a frame, so databases can be
// profiled the same way as files.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"timeprof/domain/frame"
	"timeprof/domain/schema"
	"timeprof/internal"
)

// Source reads one SQL query into memory
type Source struct {
	db    *sqlx.DB
	query string
	log   *internal.Logger
}

// Open connects to the database. The caller owns expansion of any $VAR
// placeholder in the URI (see config.ExpandEnv).
func Open(uri, query string, log *internal.Logger) (*Source, error) {
	db, err := sqlx.Open("postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Source{db: db, query: query, log: log}, nil
}

// Close releases the connection pool
func (s *Source) Close() error {
	return s.db.Close()
}

// Read executes the query and materializes the result as a frame. Column
// types map from the driver's database type names; anything unrecognized
// is kept as a string column.
func (s *Source) Read(ctx context.Context) (*frame.Frame, error) {
	start := time.Now()
	rows, err := s.db.QueryxContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	columns := make([]frame.Column, len(types))
	for i, ct := range types {
		columns[i] = frame.Column{
			Name: ct.Name(),
			Type: elementType(ct.DatabaseTypeName()),
		}
	}

	count := 0
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		for i := range columns {
			columns[i].Values = append(columns[i].Values, convert(values[i], columns[i].Type))
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query iteration failed: %w", err)
	}
	s.log.Info("loaded %d rows from database in %s", count, time.Since(start))

	return frame.New(columns)
}

func elementType(dbType string) schema.ElementType {
	switch strings.ToUpper(dbType) {
	case "INT2", "INT4", "INT8", "SERIAL", "BIGSERIAL":
		return schema.Integer
	case "FLOAT4", "FLOAT8", "NUMERIC", "DECIMAL":
		return schema.Float
	case "BOOL":
		return schema.Boolean
	case "DATE":
		return schema.Date
	case "TIMESTAMP", "TIMESTAMPTZ":
		return schema.Datetime
	case "TEXT", "VARCHAR", "CHAR", "BPCHAR", "UUID":
		return schema.String
	default:
		return schema.Other
	}
}

// convert normalizes driver values to the frame's value conventions
func convert(v any, elemType schema.ElementType) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		s := string(val)
		if elemType == schema.Float {
			// NUMERIC arrives as text from lib/pq
			var f float64
			if _, err := fmt.Sscanf(s, "%g", &f); err == nil {
				return f
			}
		}
		return s
	case time.Time:
		return val
	case int64:
		return val
	case float64:
		return val
	case bool:
		return val
	default:
		return fmt.Sprint(val)
	}
}
