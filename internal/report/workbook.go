package report

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/dataset"
	"github.com/KaramelBytes/dqreport/internal/utils"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var (
	summaryHeader = []any{"Dataset", "Version", "Records", "Columns", "Memory", "Missing", "Missing %", "Duplicates", "Quality Score"}
	columnHeader  = []any{"Version", "Column", "DType", "Missing", "Missing %", "Completeness", "Unique",
		"Mean", "Median", "Std", "Min", "Max", "Q25", "Q75", "Skewness", "Kurtosis", "Outliers", "Most Frequent", "Frequency"}
)

// WriteWorkbook writes a Summary sheet with one row per dataset version and
// a sheet per dataset listing column statistics.
func WriteWorkbook(path string, r analysis.Result, order []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	rows := [][]any{summaryHeader}
	for _, name := range r.Names(order) {
		for _, v := range versions(r[name]) {
			s := v.stats
			rows = append(rows, []any{name, v.name, s.Rows(), s.Cols(), s.MemoryUsage,
				s.TotalMissing, round2(s.MissingPercentage), s.DuplicateRows, round2(s.QualityScore)})
		}
	}
	if err := writeRows(f, summarySheet, rows, bold); err != nil {
		return err
	}

	for _, name := range r.Names(order) {
		sheet := sheetName(name)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("new sheet %s: %w", sheet, err)
		}
		rows := [][]any{columnHeader}
		for _, v := range versions(r[name]) {
			for _, col := range v.stats.Columns {
				if c := v.stats.ColumnStats[col]; c != nil {
					rows = append(rows, columnRow(v.name, col, c))
				}
			}
		}
		if err := writeRows(f, sheet, rows, bold); err != nil {
			return err
		}
	}

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

type version struct {
	name  string
	stats *analysis.TableStats
}

func versions(d *analysis.DatasetStats) []version {
	var out []version
	if d == nil {
		return out
	}
	if d.Raw != nil {
		out = append(out, version{dataset.Raw, d.Raw})
	}
	if d.Cleaned != nil {
		out = append(out, version{dataset.Cleaned, d.Cleaned})
	}
	return out
}

func columnRow(ver, col string, c *analysis.ColumnStats) []any {
	row := []any{ver, col, c.DType, c.MissingCount, round2(c.MissingPercentage), round2(c.Completeness), c.UniqueValues}
	if c.NumericStats != nil {
		n := c.NumericStats
		for _, p := range []*float64{n.Mean, n.Median, n.Std, n.Min, n.Max, n.Q25, n.Q75, n.Skewness, n.Kurtosis} {
			row = append(row, cell(p))
		}
		outliers := any("")
		if n.OutliersCount != nil {
			outliers = *n.OutliersCount
		}
		return append(row, outliers, "", "")
	}
	for i := 0; i < 10; i++ {
		row = append(row, "")
	}
	mode := ""
	if c.CategoricalStats != nil && c.MostFrequent != nil {
		mode = *c.MostFrequent
	}
	freq := 0
	if c.CategoricalStats != nil {
		freq = c.FrequencyOfMostCommon
	}
	return append(row, mode, freq)
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	end, _ := excelize.ColumnNumberToName(len(rows[0]))
	return f.SetColWidth(sheet, "A", end, 16)
}

// sheetName trims to the 31-character limit and drops characters Excel rejects.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	if len(name) > 31 {
		name = name[:31]
	}
	if strings.EqualFold(name, summarySheet) {
		name += "_data"
	}
	return name
}

func cell(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
