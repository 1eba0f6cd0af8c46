// Package insights derives templated findings from an analysis result.
package insights

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/dataset"
	"github.com/KaramelBytes/dqreport/internal/report"
	"github.com/KaramelBytes/dqreport/internal/table"
	"github.com/KaramelBytes/dqreport/internal/utils"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FileName is the insights document written under the visualization directory.
const FileName = "insights.json"

// Thresholds gate the templated sentences.
type Thresholds struct {
	ExcellentQuality       float64 // cleaned quality at or above
	SignificantImprovement float64 // quality delta strictly above
	MinimalLossPct         float64 // removed percentage strictly below
}

// DefaultThresholds returns 95 / 5 / 5.
func DefaultThresholds() Thresholds {
	return Thresholds{ExcellentQuality: 95, SignificantImprovement: 5, MinimalLossPct: 5}
}

// Report is the insights document.
type Report struct {
	RunID       string              `json:"run_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Overall     Overall             `json:"overall"`
	Datasets    map[string]*Dataset `json:"datasets"`
}

// Overall aggregates every dataset with both versions analyzed.
type Overall struct {
	TotalRecordsRaw           int      `json:"total_records_raw"`
	TotalRecordsCleaned       int      `json:"total_records_cleaned"`
	OverallQualityImprovement float64  `json:"overall_quality_improvement"`
	KeyFindings               []string `json:"key_findings"`
}

// Dataset holds the findings for one dataset.
type Dataset struct {
	QualityImprovement        float64  `json:"quality_improvement"`
	DataCleaningEffectiveness float64  `json:"data_cleaning_effectiveness"`
	RecordsRemoved            int      `json:"records_removed"`
	RecordsRemovedPercentage  float64  `json:"records_removed_percentage"`
	KeyInsights               []string `json:"key_insights"`
}

// Effectiveness is the share of raw missing cells eliminated, in percent.
// A raw table without missing cells counts as one missing cell.
func Effectiveness(rawMissing, cleanedMissing int) float64 {
	return (1 - float64(cleanedMissing)/float64(max(rawMissing, 1))) * 100
}

// Generate builds the insights document. Datasets lacking either version are
// left out.
func Generate(r analysis.Result, order []string, th Thresholds, meta report.Meta) *Report {
	p := message.NewPrinter(language.English)
	rep := &Report{
		RunID:       meta.RunID,
		GeneratedAt: meta.Generated,
		Datasets:    map[string]*Dataset{},
	}

	var (
		improvementSum float64
		completed      int
		fullyComplete  int
	)
	for _, name := range r.Names(order) {
		d := r[name]
		if !d.Complete() {
			continue
		}
		ds := forDataset(name, d, th, p)
		rep.Datasets[name] = ds

		rep.Overall.TotalRecordsRaw += d.Raw.Rows()
		rep.Overall.TotalRecordsCleaned += d.Cleaned.Rows()
		improvementSum += ds.QualityImprovement
		completed++
		if d.Cleaned.TotalMissing == 0 {
			fullyComplete++
		}
	}
	if completed > 0 {
		rep.Overall.OverallQualityImprovement = improvementSum / float64(completed)
	}

	o := &rep.Overall
	o.KeyFindings = []string{
		p.Sprintf("Processed %d records across %d datasets", o.TotalRecordsRaw, completed),
		p.Sprintf("Maintained %d clean records", o.TotalRecordsCleaned),
		fmt.Sprintf("Average quality improvement: %+.1f points", o.OverallQualityImprovement),
		completenessFinding(fullyComplete, completed),
	}
	return rep
}

func completenessFinding(full, total int) string {
	switch {
	case total == 0:
		return "No datasets had both raw and cleaned versions to compare"
	case full == total:
		return "All datasets achieved 100% data completeness after cleaning"
	case full == 0:
		return "No dataset reached 100% data completeness after cleaning"
	default:
		return fmt.Sprintf("%d of %d datasets achieved 100%% data completeness after cleaning", full, total)
	}
}

func forDataset(name string, d *analysis.DatasetStats, th Thresholds, p *message.Printer) *Dataset {
	raw, cleaned := d.Raw, d.Cleaned
	ds := &Dataset{
		QualityImprovement:        cleaned.QualityScore - raw.QualityScore,
		DataCleaningEffectiveness: Effectiveness(raw.TotalMissing, cleaned.TotalMissing),
		RecordsRemoved:            raw.Rows() - cleaned.Rows(),
		KeyInsights:               []string{},
	}
	if raw.Rows() > 0 {
		ds.RecordsRemovedPercentage = float64(ds.RecordsRemoved) / float64(raw.Rows()) * 100
	}

	if cleaned.QualityScore >= th.ExcellentQuality {
		ds.KeyInsights = append(ds.KeyInsights, "Excellent data quality after cleaning")
	}
	if ds.QualityImprovement > th.SignificantImprovement {
		ds.KeyInsights = append(ds.KeyInsights, fmt.Sprintf("Significant quality improvement: +%.1f points", ds.QualityImprovement))
	}
	if raw.TotalMissing > 0 && cleaned.TotalMissing == 0 {
		ds.KeyInsights = append(ds.KeyInsights, "All missing values successfully handled")
	}
	if ds.RecordsRemovedPercentage < th.MinimalLossPct {
		ds.KeyInsights = append(ds.KeyInsights, "Minimal data loss during cleaning process")
	}
	if s, ok := specific(name, cleaned, p); ok {
		ds.KeyInsights = append(ds.KeyInsights, s)
	}
	return ds
}

// specific returns the canned sentence of a catalog dataset when its column
// is present in the cleaned statistics.
func specific(name string, s *analysis.TableStats, p *message.Printer) (string, bool) {
	switch name {
	case dataset.Field:
		if top, ok := topValue(s, "failuremode"); ok {
			return p.Sprintf("Most common failure mode: %s (%d occurrences)", top.Value, top.Count), true
		}
	case dataset.Manufacturing:
		if c, ok := s.Column("producedqty"); ok && c.NumericStats != nil && c.Mean != nil {
			return p.Sprintf("Average production quantity: %.0f units", *c.Mean), true
		}
	case dataset.Sales:
		if top, ok := topValue(s, "channel"); ok {
			return p.Sprintf("Primary sales channel: %s (%d orders)", top.Value, top.Count), true
		}
	case dataset.Testing:
		if c, ok := s.Column("status"); ok && c.CategoricalStats != nil {
			pass, _ := c.TopValues.Get("PASS")
			rate := 0.0
			if s.Rows() > 0 {
				rate = float64(pass) / float64(s.Rows()) * 100
			}
			return fmt.Sprintf("Test pass rate: %.1f%%", rate), true
		}
	}
	return "", false
}

func topValue(s *analysis.TableStats, column string) (table.ValueCount, bool) {
	c, ok := s.Column(column)
	if !ok || c.CategoricalStats == nil {
		return table.ValueCount{}, false
	}
	return c.TopValues.Max()
}

// Write stores the document as indented JSON.
func Write(path string, rep *Report) error {
	b, err := utils.PrettyJSON(rep)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
