// Package analysis computes per-table and per-column data-quality statistics.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/dqreport/internal/table"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

const (
	completenessWeight = 0.6
	duplicateWeight    = 0.4
	topValuesLimit     = 5
	tukeyK             = 1.5
)

// Compute derives TableStats from a loaded table.
func Compute(t *table.Table) *TableStats {
	rows, cols := t.Rows(), t.Cols()
	s := &TableStats{
		Shape:       [2]int{rows, cols},
		Columns:     t.Names(),
		DTypes:      make(map[string]string, cols),
		ColumnStats: make(map[string]*ColumnStats, cols),
	}
	s.MemoryBytes = MemoryEstimate(t)
	s.MemoryUsage = fmt.Sprintf("%.2f KB", float64(s.MemoryBytes)/1024)

	for _, c := range t.Columns {
		cs := columnStats(c, rows)
		s.DTypes[c.Name] = c.DType
		s.ColumnStats[c.Name] = cs
		s.TotalMissing += cs.MissingCount
	}
	if cells := rows * cols; cells > 0 {
		s.MissingPercentage = float64(s.TotalMissing) / float64(cells) * 100
	}
	s.DuplicateRows = DuplicateRows(t)
	s.QualityScore = QualityScore(100-s.MissingPercentage, s.DuplicateRows, rows)
	return s
}

// QualityScore combines completeness (percent) and the duplicate-free share
// of rows: 0.6*completeness + 0.4*(1-duplicates/rows)*100. An empty table
// scores 100 on the duplicate component.
func QualityScore(completenessPct float64, duplicates, rows int) float64 {
	dupScore := 100.0
	if rows > 0 {
		dupScore = (1 - float64(duplicates)/float64(rows)) * 100
	}
	return completenessPct*completenessWeight + dupScore*duplicateWeight
}

// DuplicateRows counts rows equal to an earlier row.
func DuplicateRows(t *table.Table) int {
	seen := make(map[string]struct{}, t.Rows())
	dups := 0
	for i := 0; i < t.Rows(); i++ {
		k := t.RowKey(i)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// MemoryEstimate approximates the in-memory footprint of a dataframe
// holding t: a fixed index, 8 bytes per numeric cell and boxed strings for
// object cells.
func MemoryEstimate(t *table.Table) int64 {
	const (
		indexBytes  = 128
		numericCell = 8
		objectRef   = 8
		stringHead  = 49
		missingCell = 24
	)
	total := int64(indexBytes)
	for _, c := range t.Columns {
		if c.Kind == table.Numeric {
			total += int64(numericCell * len(c.Missing))
			continue
		}
		for i, s := range c.Strs {
			total += objectRef
			if c.Missing[i] {
				total += missingCell
				continue
			}
			total += int64(stringHead + len(s))
		}
	}
	return total
}

func columnStats(c *table.Column, rows int) *ColumnStats {
	miss := c.MissingCount()
	cs := &ColumnStats{
		MissingCount: miss,
		Completeness: 100,
		UniqueValues: c.Unique(),
		DType:        c.DType,
	}
	if rows > 0 {
		cs.MissingPercentage = float64(miss) / float64(rows) * 100
		cs.Completeness = float64(rows-miss) / float64(rows) * 100
	}
	if c.Kind == table.Numeric {
		cs.NumericStats = numericStats(c.Floats(), rows)
	} else {
		cs.CategoricalStats = categoricalStats(c)
	}
	return cs
}

func numericStats(vals []float64, rows int) *NumericStats {
	ns := &NumericStats{}
	if len(vals) == 0 {
		return ns
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	// montanaflynn/stats only errors on empty input, which is excluded above.
	mean, _ := stats.Mean(vals)
	median, _ := stats.Median(vals)
	lo, _ := stats.Min(vals)
	hi, _ := stats.Max(vals)
	ns.Mean = ptr(mean)
	ns.Median = ptr(median)
	ns.Min = ptr(lo)
	ns.Max = ptr(hi)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	ns.Q25 = ptr(q1)
	ns.Q75 = ptr(q3)

	if len(vals) >= 2 {
		sd, _ := stats.StandardDeviationSample(vals)
		ns.Std = ptr(sd)
	}
	ns.Skewness = Skewness(vals)
	ns.Kurtosis = Kurtosis(vals)

	n := TukeyOutliers(vals, q1, q3)
	ns.OutliersCount = &n
	pct := 0.0
	if rows > 0 {
		pct = float64(n) / float64(rows) * 100
	}
	ns.OutliersPercentage = &pct
	return ns
}

// TukeyOutliers counts values outside [q1-1.5*IQR, q3+1.5*IQR].
func TukeyOutliers(vals []float64, q1, q3 float64) int {
	iqr := q3 - q1
	lo, hi := q1-tukeyK*iqr, q3+tukeyK*iqr
	n := 0
	for _, v := range vals {
		if v < lo || v > hi {
			n++
		}
	}
	return n
}

// TukeyFence returns the inlier bounds of vals.
func TukeyFence(vals []float64) (lo, hi float64) {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - tukeyK*iqr, q3 + tukeyK*iqr
}

// Skewness is the adjusted Fisher-Pearson coefficient; nil below 3 values.
func Skewness(vals []float64) *float64 {
	if len(vals) < 3 {
		return nil
	}
	if constant(vals) {
		return ptr(0)
	}
	return finite(stat.Skew(vals, nil))
}

// Kurtosis is the bias-corrected excess kurtosis; nil below 4 values.
func Kurtosis(vals []float64) *float64 {
	if len(vals) < 4 {
		return nil
	}
	if constant(vals) {
		return ptr(0)
	}
	return finite(stat.ExKurtosis(vals, nil))
}

func categoricalStats(c *table.Column) *CategoricalStats {
	counts := c.ValueCounts()
	cs := &CategoricalStats{TopValues: TopValues{}}
	if len(counts) == 0 {
		return cs
	}
	top := counts
	if len(top) > topValuesLimit {
		top = top[:topValuesLimit]
	}
	cs.TopValues = append(TopValues(nil), top...)
	cs.FrequencyOfMostCommon = counts[0].Count

	// Among equally frequent values the lowest sorts first.
	mode := counts[0].Value
	for _, vc := range counts[1:] {
		if vc.Count < counts[0].Count {
			break
		}
		if vc.Value < mode {
			mode = vc.Value
		}
	}
	cs.MostFrequent = &mode
	return cs
}

// Quantile returns the q-quantile of vals with linear interpolation between
// closest ranks.
func Quantile(vals []float64, q float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return quantile(sorted, q)
}

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

func constant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func ptr(v float64) *float64 { return &v }
