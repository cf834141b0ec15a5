package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the value domain inferred for a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
)

// Column is a named, typed slice of cell values. The empty string marks a
// missing cell; every other value is stored exactly as parsed.
type Column struct {
	Name   string
	Kind   Kind
	Values []string
}

// Table holds one dataset column-major. All columns share the same length.
type Table struct {
	Name        string
	Encoding    string
	Columns     []Column
	Labels      []int // cluster label per row, assigned after clustering
	SkippedRows int
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// NumericMatrix returns the table rows restricted to numeric columns in which
// every cell parses. Columns that still carry missing cells (a numeric column
// with no imputation basis) are left out so callers get a complete matrix.
func (t *Table) NumericMatrix() (names []string, rows [][]float64) {
	var idx []int
	for i := range t.Columns {
		c := &t.Columns[i]
		if c.Kind != KindNumeric {
			continue
		}
		complete := true
		for _, v := range c.Values {
			if _, ok := ParseNumber(v); !ok {
				complete = false
				break
			}
		}
		if complete {
			idx = append(idx, i)
			names = append(names, c.Name)
		}
	}
	if len(idx) == 0 {
		return nil, nil
	}
	n := t.Rows()
	rows = make([][]float64, n)
	for r := 0; r < n; r++ {
		row := make([]float64, len(idx))
		for j, ci := range idx {
			x, _ := ParseNumber(t.Columns[ci].Values[r])
			row[j] = x
		}
		rows[r] = row
	}
	return names, rows
}

// MissingCount returns the number of missing cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

// Numbers returns the parsed values of the column, skipping cells that are
// missing or do not parse.
func (c *Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if x, ok := ParseNumber(v); ok {
			out = append(out, x)
		}
	}
	return out
}

// IsMissing reports whether a canonical cell value marks a missing entry.
func IsMissing(v string) bool { return v == "" }

// naTokens lists the conventional spellings of a missing cell. NormalizeCell
// folds them all into the canonical empty string.
var naTokens = map[string]bool{
	"na": true, "n/a": true, "nan": true, "null": true, "none": true,
}

// NormalizeCell trims a raw cell and canonicalizes missing-value tokens.
func NormalizeCell(s string) string {
	s = strings.TrimSpace(s)
	if naTokens[strings.ToLower(s)] {
		return ""
	}
	return s
}

// ParseNumber parses a cell as a finite float64. Missing cells and NaN/Inf
// spellings do not count as numbers.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders a float with the shortest exact representation, so a
// written value parses back to the same float.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// ParseTime parses a cell against the accepted date layouts.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTime renders a parsed date in a canonical layout that reparses to
// the same rendering. Date-only values stay date-only.
func FormatTime(t time.Time) string {
	if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// InferKind classifies a column: numeric when every non-missing cell parses
// as a number (an all-missing column counts as numeric, matching a column of
// pure missing markers), categorical otherwise. Datetime is never inferred
// here; the preprocessor assigns it when it coerces the date column.
func InferKind(values []string) Kind {
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		if _, ok := ParseNumber(v); !ok {
			return KindCategorical
		}
	}
	return KindNumeric
}
