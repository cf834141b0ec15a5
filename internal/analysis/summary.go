package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// NumericStats holds the conventional count/mean/std/min/quartiles/max set
// for one numeric column. Std is the sample standard deviation. The JSON
// keys keep the familiar percentile spelling.
type NumericStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"25%"`
	Median float64 `json:"50%"`
	Q75    float64 `json:"75%"`
	Max    float64 `json:"max"`
}

// CorrMatrix is a symmetric Pearson correlation matrix across numeric
// columns, clamped to [-1, 1] with an identity diagonal.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Summary describes a table: shape, per-column types and missing counts, and
// numeric statistics. It is plain data and building it never fails.
type Summary struct {
	TotalRows      int                     `json:"total_rows"`
	TotalColumns   int                     `json:"total_columns"`
	ColumnTypes    map[string]string       `json:"column_types"`
	MissingValues  map[string]int          `json:"missing_values"`
	NumericSummary map[string]NumericStats `json:"numeric_summary"`

	// ColumnOrder preserves table order for rendering. Correlations feed the
	// report; neither belongs in the narrative payload.
	ColumnOrder  []string    `json:"-"`
	Correlations *CorrMatrix `json:"-"`
}

// Summarize computes the summary of a table. Numeric columns without a
// single parsed value carry no stats, so the result always marshals to
// finite JSON. Only complete numeric columns join the correlation matrix.
func Summarize(t *dataset.Table) Summary {
	s := Summary{
		TotalRows:      t.Rows(),
		TotalColumns:   len(t.Columns),
		ColumnTypes:    make(map[string]string, len(t.Columns)),
		MissingValues:  make(map[string]int, len(t.Columns)),
		NumericSummary: make(map[string]NumericStats),
		ColumnOrder:    t.ColumnNames(),
	}
	var corrNames []string
	var corrCols [][]float64
	for i := range t.Columns {
		c := &t.Columns[i]
		s.ColumnTypes[c.Name] = string(c.Kind)
		s.MissingValues[c.Name] = c.MissingCount()
		if c.Kind != dataset.KindNumeric {
			continue
		}
		vals := c.Numbers()
		if len(vals) == 0 {
			continue
		}
		s.NumericSummary[c.Name] = describe(vals)
		if len(vals) == len(c.Values) {
			corrNames = append(corrNames, c.Name)
			corrCols = append(corrCols, vals)
		}
	}
	s.Correlations = correlate(corrNames, corrCols)
	return s
}

func describe(vals []float64) NumericStats {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	st := NumericStats{
		Count:  n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	st.Mean = sum / float64(n)
	if n > 1 {
		var m2 float64
		for _, v := range vals {
			d := v - st.Mean
			m2 += d * d
		}
		st.Std = math.Sqrt(m2 / float64(n-1))
	}
	return st
}

// quantile interpolates linearly between the order statistics of a sorted
// slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// correlate builds the Pearson matrix over the given columns. Fewer than two
// columns yield no matrix.
func correlate(names []string, cols [][]float64) *CorrMatrix {
	if len(names) < 2 {
		return nil
	}
	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pearson(cols[i], cols[j])
			mat[i][j], mat[j][i] = r, r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}

// pearson returns 0 for degenerate inputs (zero variance, short columns)
// rather than NaN.
func pearson(a, b []float64) float64 {
	n := len(a)
	if n < 2 || n != len(b) {
		return 0
	}
	var ma, mb float64
	for i := 0; i < n; i++ {
		ma += a[i]
		mb += b[i]
	}
	ma /= float64(n)
	mb /= float64(n)
	var num, da2, db2 float64
	for i := 0; i < n; i++ {
		da := a[i] - ma
		db := b[i] - mb
		num += da * db
		da2 += da * da
		db2 += db * db
	}
	denom := math.Sqrt(da2 * db2)
	if denom == 0 {
		return 0
	}
	r := num / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
