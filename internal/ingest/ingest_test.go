package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadInfersKindsAndFoldsMissing(t *testing.T) {
	raw := "id,score,city,date\n" +
		"1,3.5,Paris,2024-01-02\n" +
		"2,NA,Lyon,2024-01-03\n" +
		"3,4.5,,2024-01-04\n"
	tbl, err := Load(writeFixture(t, "data.csv", []byte(raw)), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Name != "data.csv" {
		t.Fatalf("name = %q", tbl.Name)
	}
	if tbl.Encoding != "utf-8" {
		t.Fatalf("encoding = %q", tbl.Encoding)
	}
	if tbl.Rows() != 3 || len(tbl.Columns) != 4 {
		t.Fatalf("shape = %dx%d", tbl.Rows(), len(tbl.Columns))
	}
	if tbl.SkippedRows != 0 {
		t.Fatalf("skipped = %d", tbl.SkippedRows)
	}

	score := tbl.Column("score")
	if score == nil || score.Kind != dataset.KindNumeric {
		t.Fatalf("score column = %+v", score)
	}
	if score.Values[1] != "" {
		t.Fatalf("NA not folded to missing: %q", score.Values[1])
	}
	city := tbl.Column("city")
	if city.Kind != dataset.KindCategorical || city.Values[2] != "" {
		t.Fatalf("city column = %+v", city)
	}
	// Dates stay categorical until preprocessing coerces the date column.
	if date := tbl.Column("date"); date.Kind != dataset.KindCategorical {
		t.Fatalf("date kind = %s", date.Kind)
	}
}

func TestLoadSkipsRowsWithWrongFieldCount(t *testing.T) {
	raw := "a,b\n1,2\n3,4,5\n6\n7,8\n"
	tbl, err := Load(writeFixture(t, "ragged.csv", []byte(raw)), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Rows())
	}
	if tbl.SkippedRows != 2 {
		t.Fatalf("skipped = %d, want 2", tbl.SkippedRows)
	}
	a := tbl.Column("a")
	if a.Values[0] != "1" || a.Values[1] != "7" {
		t.Fatalf("column a = %v", a.Values)
	}
}

func TestLoadSniffsTSVAndHonorsDelimiterOverride(t *testing.T) {
	tsv := "a\tb\n1\tx\n"
	tbl, err := Load(writeFixture(t, "data.tsv", []byte(tsv)), Options{})
	if err != nil {
		t.Fatalf("Load tsv: %v", err)
	}
	if len(tbl.Columns) != 2 || tbl.Column("b").Values[0] != "x" {
		t.Fatalf("tsv columns = %+v", tbl.Columns)
	}

	semi := "a;b\n1;2\n"
	tbl, err = Load(writeFixture(t, "semi.csv", []byte(semi)), Options{Delimiter: ';'})
	if err != nil {
		t.Fatalf("Load semicolon: %v", err)
	}
	if len(tbl.Columns) != 2 || tbl.Column("b").Values[0] != "2" {
		t.Fatalf("semicolon columns = %+v", tbl.Columns)
	}
}

func TestLoadFatalErrors(t *testing.T) {
	var ierr *Error

	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	if !errors.As(err, &ierr) {
		t.Fatalf("missing file: expected ingest error, got %v", err)
	}

	_, err = Load(writeFixture(t, "empty.csv", nil), Options{})
	if !errors.As(err, &ierr) || ierr.Reason != "empty file" {
		t.Fatalf("empty file: got %v", err)
	}

	_, err = Load(writeFixture(t, "headeronly.csv", []byte("a,b\n")), Options{})
	if !errors.As(err, &ierr) || ierr.Reason != "no data rows" {
		t.Fatalf("header only: got %v", err)
	}
}
