package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"timeprof/domain/core"
	"timeprof/domain/frame"
	"timeprof/internal"
)

// DataReader loads Excel and CSV files into a frame
type DataReader struct {
	filePath string
	format   string // "xlsx" or "csv"
	log      *internal.Logger
}

// NewDataReader creates a reader for the given file. The format is taken
// from the extension unless overridden; anything but xlsx/csv is rejected
// at read time with core.ErrUnsupportedSourceFormat.
func NewDataReader(filePath, format string, log *internal.Logger) *DataReader {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	return &DataReader{filePath: filePath, format: strings.ToLower(format), log: log}
}

// Read loads the file into a typed frame
func (r *DataReader) Read(_ context.Context) (*frame.Frame, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", r.filePath)
	}

	var rows [][]string
	var err error
	switch r.format {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("%w: %q (supported: xlsx, csv)", core.ErrUnsupportedSourceFormat, r.format)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s must have a header row and at least one data row", r.filePath)
	}
	return buildFrame(rows[0], rows[1:])
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", r.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	r.log.Debug("read %d rows from %s in %s", len(rows), r.filePath, time.Since(start))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.log.Debug("read %d rows from %s", len(rows), r.filePath)
	return rows, nil
}

// buildFrame turns header + raw string rows into typed columns. An empty
// cell is a missing value.
func buildFrame(header []string, records [][]string) (*frame.Frame, error) {
	columns := make([]frame.Column, 0, len(header))
	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", col+1)
		}
		raw := make([]string, len(records))
		for i, rec := range records {
			if col < len(rec) {
				raw[i] = strings.TrimSpace(rec[col])
			}
		}
		columns = append(columns, inferColumn(name, raw))
	}
	return frame.New(columns)
}
