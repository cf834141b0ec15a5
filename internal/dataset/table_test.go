package dataset

import (
	"testing"
)

func TestNormalizeCell(t *testing.T) {
	cases := map[string]string{
		"  7.5 ":  "7.5",
		"NA":      "",
		"n/a":     "",
		"NaN":     "",
		"null":    "",
		"None":    "",
		"":        "",
		"  ":      "",
		"Nairobi": "Nairobi",
	}
	for in, want := range cases {
		if got := NormalizeCell(in); got != want {
			t.Fatalf("NormalizeCell(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	if v, ok := ParseNumber("  -3.25 "); !ok || v != -3.25 {
		t.Fatalf("ParseNumber(-3.25) = %v, %v", v, ok)
	}
	if v, ok := ParseNumber("1e3"); !ok || v != 1000 {
		t.Fatalf("ParseNumber(1e3) = %v, %v", v, ok)
	}
	for _, bad := range []string{"", "abc", "NaN", "Inf", "-inf", "12,5"} {
		if _, ok := ParseNumber(bad); ok {
			t.Fatalf("ParseNumber(%q) accepted", bad)
		}
	}
}

func TestFormatNumberRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1, -1.5, 0.1, 2.675, 1e-9, 123456.789} {
		got, ok := ParseNumber(FormatNumber(f))
		if !ok || got != f {
			t.Fatalf("round trip %v -> %q -> %v, ok=%v", f, FormatNumber(f), got, ok)
		}
	}
}

func TestParseAndFormatTime(t *testing.T) {
	tm, ok := ParseTime("2024-03-05")
	if !ok {
		t.Fatalf("ParseTime date failed")
	}
	if got := FormatTime(tm); got != "2024-03-05" {
		t.Fatalf("FormatTime date = %q", got)
	}
	tm, ok = ParseTime("05/03/2024")
	if !ok {
		t.Fatalf("ParseTime dd/mm failed")
	}
	if got := FormatTime(tm); got != "2024-03-05" {
		t.Fatalf("FormatTime dd/mm = %q", got)
	}
	tm, ok = ParseTime("2024-03-05 14:30:00")
	if !ok {
		t.Fatalf("ParseTime datetime failed")
	}
	if got := FormatTime(tm); got != "2024-03-05 14:30:00" {
		t.Fatalf("FormatTime datetime = %q", got)
	}
	// Canonical renderings reparse to themselves.
	again, ok := ParseTime(FormatTime(tm))
	if !ok || FormatTime(again) != FormatTime(tm) {
		t.Fatalf("canonical rendering unstable: %q vs %q", FormatTime(again), FormatTime(tm))
	}
	if _, ok := ParseTime("not a date"); ok {
		t.Fatalf("ParseTime accepted garbage")
	}
}

func TestInferKind(t *testing.T) {
	if k := InferKind([]string{"1", "2.5", ""}); k != KindNumeric {
		t.Fatalf("numeric column inferred as %s", k)
	}
	if k := InferKind([]string{"1", "two", "3"}); k != KindCategorical {
		t.Fatalf("mixed column inferred as %s", k)
	}
	if k := InferKind([]string{"", "", ""}); k != KindNumeric {
		t.Fatalf("all-missing column inferred as %s", k)
	}
}

func TestNumericMatrix(t *testing.T) {
	tbl := &Table{
		Name: "t.csv",
		Columns: []Column{
			{Name: "a", Kind: KindNumeric, Values: []string{"1", "2", "3"}},
			{Name: "city", Kind: KindCategorical, Values: []string{"x", "y", "z"}},
			{Name: "b", Kind: KindNumeric, Values: []string{"4", "", "6"}},
			{Name: "c", Kind: KindNumeric, Values: []string{"7", "8", "9"}},
		},
	}
	if tbl.Rows() != 3 {
		t.Fatalf("rows = %d", tbl.Rows())
	}
	names, rows := tbl.NumericMatrix()
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Fatalf("names = %v", names)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[1][0] != 2 || rows[1][1] != 8 {
		t.Fatalf("row 1 = %v", rows[1])
	}
	if col := tbl.Column("b"); col == nil || col.MissingCount() != 1 {
		t.Fatalf("column b lookup/missing failed")
	}
	if tbl.Column("nope") != nil {
		t.Fatalf("expected nil for unknown column")
	}
}
