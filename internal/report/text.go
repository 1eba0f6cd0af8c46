package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/utils"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rule = strings.Repeat("=", 80)

// Totals sums record counts over the datasets present in r.
type Totals struct {
	Raw, Cleaned int
}

// Removed is the number of records dropped by cleaning.
func (t Totals) Removed() int { return t.Raw - t.Cleaned }

// Retention is the cleaned share of raw records in percent; 0 without raw records.
func (t Totals) Retention() float64 {
	if t.Raw == 0 {
		return 0
	}
	return float64(t.Cleaned) / float64(t.Raw) * 100
}

// Sum computes Totals over every version present in r.
func Sum(r analysis.Result) Totals {
	var t Totals
	for _, d := range r {
		if d.Raw != nil {
			t.Raw += d.Raw.Rows()
		}
		if d.Cleaned != nil {
			t.Cleaned += d.Cleaned.Rows()
		}
	}
	return t
}

// Text renders the human-readable summary. Datasets follow order, then any
// remaining names alphabetically.
func Text(r analysis.Result, order []string, meta Meta) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	line := func(format string, a ...any) {
		b.WriteString(p.Sprintf(format, a...))
		b.WriteByte('\n')
	}

	line("%s", rule)
	line("DATA ANALYSIS SUMMARY REPORT")
	line("%s", rule)
	line("\nGenerated on: %s", meta.Generated.Format("2006-01-02 15:04:05"))
	if meta.RunID != "" {
		line("Run ID: %s", meta.RunID)
	}
	line("\nTotal Datasets Analyzed: %d", len(r))

	tot := Sum(r)
	line("\n--- OVERALL STATISTICS ---")
	line("Total Raw Records: %d", tot.Raw)
	line("Total Cleaned Records: %d", tot.Cleaned)
	line("Records Removed: %d", tot.Removed())
	line("Data Retention Rate: %.2f%%", tot.Retention())

	for _, name := range r.Names(order) {
		d := r[name]
		line("\n%s", rule)
		line("DATASET: %s", strings.ToUpper(name))
		line("%s", rule)
		if !d.Complete() {
			line("\nIncomplete: only one version could be analyzed.")
			continue
		}
		block := func(title string, s *analysis.TableStats) {
			line("\n--- %s ---", title)
			line("Records: %d", s.Rows())
			line("Columns: %d", s.Cols())
			line("Missing Values: %d (%.2f%%)", s.TotalMissing, s.MissingPercentage)
			line("Duplicates: %d", s.DuplicateRows)
			line("Quality Score: %.2f%%", s.QualityScore)
		}
		block("RAW DATA", d.Raw)
		block("CLEANED DATA", d.Cleaned)

		line("\n--- IMPROVEMENTS ---")
		line("Missing Values Reduced: %.2f%%", d.Raw.MissingPercentage-d.Cleaned.MissingPercentage)
		line("Duplicates Removed: %d", d.Raw.DuplicateRows-d.Cleaned.DuplicateRows)
		line("Quality Score Improved: %.2f%%", d.Cleaned.QualityScore-d.Raw.QualityScore)
	}

	line("\n%s", rule)
	line("END OF REPORT")
	b.WriteString(rule)
	return b.String()
}

// WriteText renders Text to path.
func WriteText(path string, r analysis.Result, order []string, meta Meta) error {
	if err := utils.SafeWriteFile(path, []byte(Text(r, order, meta))); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
