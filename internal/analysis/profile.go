package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/dqreport/internal/table"
)

// Profile is a markdown-friendly single-table summary.
type Profile struct {
	Name    string
	Path    string
	Stats   *TableStats
	Order   []string
	Corr    *CorrMatrix
	Samples [][]string
}

// NewProfile computes statistics for t and keeps the first sampleRows rows.
func NewProfile(t *table.Table, sampleRows int) *Profile {
	p := &Profile{
		Name:  t.Name,
		Path:  t.Path,
		Stats: Compute(t),
		Order: t.Names(),
		Corr:  NumericCorrelation(t),
	}
	for i := 0; i < t.Rows() && i < sampleRows; i++ {
		row := make([]string, t.Cols())
		for j, c := range t.Columns {
			if !c.Missing[i] {
				row[j] = c.Strs[i]
			}
		}
		p.Samples = append(p.Samples, row)
	}
	return p
}

// Markdown renders the profile.
func (p *Profile) Markdown() string {
	s := p.Stats
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Path != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Path))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows()))
	b.WriteString(fmt.Sprintf("Columns: %d\n", s.Cols()))
	b.WriteString(fmt.Sprintf("Memory: %s\n", s.MemoryUsage))
	b.WriteString(fmt.Sprintf("Missing: %d (%.2f%%)\n", s.TotalMissing, s.MissingPercentage))
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n", s.DuplicateRows))
	b.WriteString(fmt.Sprintf("Quality score: %.2f\n\n", s.QualityScore))

	b.WriteString("[SCHEMA]\n")
	for _, name := range p.Order {
		c := s.ColumnStats[name]
		if c == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %s (unique %d, missing %.1f%%)", safeName(name), c.DType, c.UniqueValues, c.MissingPercentage))
		switch {
		case c.IsNumeric() && c.Mean != nil:
			b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, median %.4g", *c.Min, *c.Max, *c.Mean, *c.Median))
			if c.Std != nil {
				b.WriteString(fmt.Sprintf(", std %.4g", *c.Std))
			}
			if c.OutliersCount != nil && *c.OutliersCount > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d outside 1.5×IQR", *c.OutliersCount))
			}
		case c.CategoricalStats != nil && len(c.TopValues) > 0:
			b.WriteString(" — top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
		}
		b.WriteString("\n")
	}

	if p.Corr != nil && len(p.Corr.Columns) >= 2 {
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(p.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if r := p.Corr.Values[i][j]; !math.IsNaN(r) {
					pairs = append(pairs, pr{A: p.Corr.Columns[i], B: p.Corr.Columns[j], R: r})
				}
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		if len(pairs) > 0 {
			b.WriteString("\n[CORRELATIONS]\n")
		}
		for i := 0; i < len(pairs) && i < 10; i++ {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pairs[i].A, pairs[i].B, pairs[i].R))
		}
	}

	if len(p.Samples) > 0 {
		b.WriteString("\n[HEAD ROWS]\n| ")
		for i, name := range p.Order {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(name))
		}
		b.WriteString(" |\n|")
		for range p.Order {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
		for _, row := range p.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				if r := []rune(val); len(r) > 80 {
					val = string(r[:77]) + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
