package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"timeprof/domain/core"
	"timeprof/domain/schema"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead_CSV(t *testing.T) {
	path := writeCSV(t, "order_date,amount,qty,active,note\n"+
		"2024-01-01,12.5,3,true,first\n"+
		"2024-01-02,,4,false,\n"+
		"2024-01-03,7.25,5,yes,last\n")

	fr, err := NewDataReader(path, "", nil).Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if fr.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", fr.NumRows())
	}

	s := fr.Schema()
	for name, want := range map[string]schema.ElementType{
		"order_date": schema.Date,
		"amount":     schema.Float,
		"qty":        schema.Integer,
		"active":     schema.Boolean,
		"note":       schema.String,
	} {
		got, ok := s.TypeOf(name)
		if !ok {
			t.Fatalf("column %s missing", name)
		}
		if got != want {
			t.Errorf("column %s inferred as %s, want %s", name, got, want)
		}
	}

	dates, _ := fr.Column("order_date")
	if d, ok := dates.TimeAt(0); !ok || !d.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("order_date row 0 = %v", dates.Values[0])
	}
	amounts, _ := fr.Column("amount")
	if !amounts.IsNull(1) {
		t.Error("empty cell must be a missing value")
	}
	if v, _ := amounts.FloatAt(2); v != 7.25 {
		t.Errorf("amount row 2 = %v, want 7.25", v)
	}
}

func TestRead_MixedColumnFallsBackToString(t *testing.T) {
	path := writeCSV(t, "code\n42\nabc\n")
	fr, err := NewDataReader(path, "", nil).Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got, _ := fr.Schema().TypeOf("code")
	if got != schema.String {
		t.Errorf("mixed column inferred as %s, want string", got)
	}
}

func TestRead_BlankHeaderGetsPositionalName(t *testing.T) {
	path := writeCSV(t, "a,,c\n1,2,3\n")
	fr, err := NewDataReader(path, "", nil).Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, ok := fr.Column("column_2"); !ok {
		t.Errorf("blank header not renamed, columns = %v", fr.Schema().Names())
	}
}

func TestRead_RaggedRows(t *testing.T) {
	// short rows pad with missing values rather than failing
	path := writeCSV(t, "a,b\n1,2\n3\n")
	fr, err := NewDataReader(path, "", nil).Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	b, _ := fr.Column("b")
	if !b.IsNull(1) {
		t.Error("missing trailing cell must be null")
	}
}

func TestRead_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range [][]any{
		{"day", "amount"},
		{"2024-01-01", 10},
		{"2024-01-02", 20},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	fr, err := NewDataReader(path, "", nil).Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if fr.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", fr.NumRows())
	}
	got, _ := fr.Schema().TypeOf("day")
	if got != schema.Date {
		t.Errorf("day inferred as %s, want date", got)
	}
}

func TestRead_UnsupportedFormat(t *testing.T) {
	path := writeCSV(t, "a\n1\n")
	_, err := NewDataReader(path, "parquet", nil).Read(context.Background())
	if !errors.Is(err, core.ErrUnsupportedSourceFormat) {
		t.Errorf("error = %v, want ErrUnsupportedSourceFormat", err)
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv"), "", nil).Read(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "a,b\n")
	_, err := NewDataReader(path, "", nil).Read(context.Background())
	if err == nil {
		t.Fatal("expected error for a file without data rows")
	}
}
