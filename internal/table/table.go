// Package table holds the in-memory tabular model shared by the loader,
// the statistics engine and the chart renderer.
package table

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind classifies a column for statistics purposes.
type Kind int

const (
	Categorical Kind = iota
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Column is one typed column. Every slice has one entry per row.
type Column struct {
	Name  string
	Kind  Kind
	DType string // int64|float64|bool|object
	// Nums is populated for numeric columns; NaN marks a missing cell.
	Nums []float64
	// Strs holds the trimmed source text; empty for missing cells.
	Strs    []string
	Missing []bool
}

// Table is an ordered set of equally sized columns.
type Table struct {
	Name    string
	Path    string
	Columns []*Column
	rows    int
}

// New assembles a table, taking the row count from the first column.
func New(name string, cols []*Column) *Table {
	t := &Table{Name: name, Columns: cols}
	if len(cols) > 0 {
		t.rows = len(cols[0].Missing)
	}
	return t
}

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.Columns) }

// Names returns column names in file order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column returns the column with the exact name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find looks up the first of names present in the table. Each candidate is
// tried exactly first and then case-insensitively, since raw and cleaned
// extracts disagree on casing.
func (t *Table) Find(names ...string) (*Column, bool) {
	if t == nil {
		return nil, false
	}
	for _, n := range names {
		if c := t.Column(n); c != nil {
			return c, true
		}
		for _, c := range t.Columns {
			if strings.EqualFold(c.Name, n) {
				return c, true
			}
		}
	}
	return nil, false
}

// NumericColumns returns numeric columns in file order.
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.Kind == Numeric {
			out = append(out, c)
		}
	}
	return out
}

// CategoricalColumns returns object columns in file order.
func (t *Table) CategoricalColumns() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.Kind == Categorical {
			out = append(out, c)
		}
	}
	return out
}

// TotalMissing counts missing cells across the table.
func (t *Table) TotalMissing() int {
	n := 0
	for _, c := range t.Columns {
		n += c.MissingCount()
	}
	return n
}

// IncompleteRows counts rows with at least one missing cell.
func (t *Table) IncompleteRows() int {
	n := 0
	for i := 0; i < t.rows; i++ {
		for _, c := range t.Columns {
			if c.Missing[i] {
				n++
				break
			}
		}
	}
	return n
}

// RowKey renders row i as a comparable key; missing cells compare equal.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, c := range t.Columns {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		switch {
		case c.Missing[i]:
			b.WriteString("\x00nan")
		case c.Kind == Numeric:
			b.WriteString(strconv.FormatFloat(c.Nums[i], 'g', -1, 64))
		default:
			b.WriteString(c.Strs[i])
		}
	}
	return b.String()
}

// MissingCount returns the number of missing cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// Floats returns the non-missing numeric values in row order.
func (c *Column) Floats() []float64 {
	if c.Kind != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.Nums))
	for i, v := range c.Nums {
		if c.Missing[i] || math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Values returns the non-missing values as text in row order.
func (c *Column) Values() []string {
	out := make([]string, 0, len(c.Strs))
	for i, s := range c.Strs {
		if c.Missing[i] {
			continue
		}
		out = append(out, c.text(i, s))
	}
	return out
}

func (c *Column) text(i int, s string) string {
	if c.Kind == Numeric && c.DType != "bool" {
		return strconv.FormatFloat(c.Nums[i], 'g', -1, 64)
	}
	return s
}

// ValueCount is one entry of a frequency table.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts tallies non-missing values, most frequent first. Ties keep
// first-seen order.
func (c *Column) ValueCounts() []ValueCount {
	idx := map[string]int{}
	var out []ValueCount
	for _, v := range c.Values() {
		if k, ok := idx[v]; ok {
			out[k].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Unique counts distinct non-missing values.
func (c *Column) Unique() int {
	seen := map[string]struct{}{}
	for _, v := range c.Values() {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Filter returns the non-missing numeric values of c on rows where key equals want.
func (c *Column) Filter(key *Column, want string) []float64 {
	var out []float64
	for i := range c.Nums {
		if c.Missing[i] || key.Missing[i] || key.text(i, key.Strs[i]) != want {
			continue
		}
		out = append(out, c.Nums[i])
	}
	return out
}
