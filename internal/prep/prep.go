package prep

import (
	"sort"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// DateColumn is the column name the cleaner coerces to datetime when present.
const DateColumn = "date"

// Unknown replaces missing cells in categorical columns.
const Unknown = "Unknown"

// Clean normalizes a table in place, in a fixed order: the date column is
// coerced to datetime (unparseable cells become missing), categorical
// columns have missing cells filled with Unknown, and numeric columns have
// missing cells filled with the column median. Clean is deterministic and
// running it twice leaves the table unchanged.
func Clean(t *dataset.Table) {
	for i := range t.Columns {
		if t.Columns[i].Name == DateColumn {
			coerceDates(&t.Columns[i])
		}
	}
	for i := range t.Columns {
		c := &t.Columns[i]
		switch c.Kind {
		case dataset.KindCategorical:
			fillUnknown(c)
		case dataset.KindNumeric:
			imputeMedian(c)
		}
	}
}

func coerceDates(c *dataset.Column) {
	c.Kind = dataset.KindDatetime
	for i, v := range c.Values {
		if dataset.IsMissing(v) {
			continue
		}
		if ts, ok := dataset.ParseTime(v); ok {
			c.Values[i] = dataset.FormatTime(ts)
		} else {
			c.Values[i] = ""
		}
	}
}

func fillUnknown(c *dataset.Column) {
	for i, v := range c.Values {
		if dataset.IsMissing(v) {
			c.Values[i] = Unknown
		}
	}
}

// imputeMedian fills missing numeric cells with the column median. A column
// with no parsed values at all has no imputation basis and is left alone.
func imputeMedian(c *dataset.Column) {
	vals := c.Numbers()
	if len(vals) == 0 {
		return
	}
	fill := dataset.FormatNumber(median(vals))
	for i, v := range c.Values {
		if dataset.IsMissing(v) {
			c.Values[i] = fill
		}
	}
}

// median returns the middle of the values, averaging the two central ones
// for even counts.
func median(vals []float64) float64 {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}
