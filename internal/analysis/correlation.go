package analysis

import (
	"math"

	"github.com/KaramelBytes/dqreport/internal/table"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]; NaN when undefined
}

// Correlation computes pairwise-complete Pearson coefficients between the
// named numeric columns of t. Names missing from t, or not numeric, yield a
// row and column of NaN so matrices of two tables stay aligned.
func Correlation(t *table.Table, names []string) *CorrMatrix {
	cols := make([]*table.Column, len(names))
	for i, n := range names {
		if c, ok := t.Find(n); ok && c.Kind == table.Numeric {
			cols[i] = c
		}
	}
	m := &CorrMatrix{Columns: append([]string(nil), names...), Values: make([][]float64, len(names))}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(names))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairwise(cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// NumericCorrelation is Correlation over every numeric column of t.
func NumericCorrelation(t *table.Table) *CorrMatrix {
	var names []string
	for _, c := range t.NumericColumns() {
		names = append(names, c.Name)
	}
	return Correlation(t, names)
}

func pairwise(a, b *table.Column) float64 {
	if a == nil || b == nil {
		return math.NaN()
	}
	var xs, ys []float64
	for i := range a.Nums {
		if a.Missing[i] || b.Missing[i] {
			continue
		}
		xs = append(xs, a.Nums[i])
		ys = append(ys, b.Nums[i])
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return math.Max(-1, math.Min(1, r))
}
