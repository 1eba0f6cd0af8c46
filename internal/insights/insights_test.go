package insights

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/report"
	"github.com/KaramelBytes/dqreport/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableStats(rows, missing int, quality float64) *analysis.TableStats {
	return &analysis.TableStats{
		Shape:        [2]int{rows, 4},
		TotalMissing: missing,
		QualityScore: quality,
		ColumnStats:  map[string]*analysis.ColumnStats{},
	}
}

func categorical(counts ...table.ValueCount) *analysis.ColumnStats {
	return &analysis.ColumnStats{
		DType:            "object",
		CategoricalStats: &analysis.CategoricalStats{TopValues: counts},
	}
}

var meta = report.Meta{RunID: "run-7", Generated: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}

func TestAllMissingHandled(t *testing.T) {
	r := analysis.Result{
		"field": {Raw: tableStats(1000, 50, 88), Cleaned: tableStats(990, 0, 99.5)},
	}
	rep := Generate(r, nil, DefaultThresholds(), meta)
	ds := rep.Datasets["field"]
	require.NotNil(t, ds)

	assert.InDelta(t, 100.0, ds.DataCleaningEffectiveness, 1e-9)
	assert.InDelta(t, 11.5, ds.QualityImprovement, 1e-9)
	assert.Equal(t, 10, ds.RecordsRemoved)
	assert.InDelta(t, 1.0, ds.RecordsRemovedPercentage, 1e-9)
	assert.Equal(t, []string{
		"Excellent data quality after cleaning",
		"Significant quality improvement: +11.5 points",
		"All missing values successfully handled",
		"Minimal data loss during cleaning process",
	}, ds.KeyInsights)
	assert.Equal(t, "run-7", rep.RunID)
}

func TestEffectiveness(t *testing.T) {
	assert.InDelta(t, 100.0, Effectiveness(50, 0), 1e-9)
	assert.InDelta(t, 100.0, Effectiveness(0, 0), 1e-9)
	assert.InDelta(t, 75.0, Effectiveness(40, 10), 1e-9)
	assert.InDelta(t, -200.0, Effectiveness(0, 3), 1e-9)
}

func TestThresholdsAreStrict(t *testing.T) {
	r := analysis.Result{
		"sales": {Raw: tableStats(100, 0, 90), Cleaned: tableStats(95, 0, 95)},
	}
	ds := Generate(r, nil, DefaultThresholds(), meta).Datasets["sales"]
	assert.Contains(t, ds.KeyInsights, "Excellent data quality after cleaning")
	assert.NotContains(t, strings.Join(ds.KeyInsights, "|"), "Significant")
	assert.NotContains(t, ds.KeyInsights, "All missing values successfully handled")
	assert.NotContains(t, ds.KeyInsights, "Minimal data loss during cleaning process")
}

func TestDatasetSpecificSentences(t *testing.T) {
	field := tableStats(10, 0, 100)
	field.ColumnStats["failureMode"] = categorical(
		table.ValueCount{Value: "Overheat", Count: 4},
		table.ValueCount{Value: "Crack", Count: 4},
	)
	manu := tableStats(10, 0, 100)
	mean := 1234.4
	manu.ColumnStats["producedqty"] = &analysis.ColumnStats{DType: "float64", NumericStats: &analysis.NumericStats{Mean: &mean}}
	sales := tableStats(10, 0, 100)
	sales.ColumnStats["channel"] = categorical(table.ValueCount{Value: "Online", Count: 7})
	tst := tableStats(8, 0, 100)
	tst.ColumnStats["status"] = categorical(
		table.ValueCount{Value: "PASS", Count: 6},
		table.ValueCount{Value: "FAIL", Count: 2},
	)

	r := analysis.Result{
		"field":         {Raw: tableStats(10, 0, 100), Cleaned: field},
		"manufacturing": {Raw: tableStats(10, 0, 100), Cleaned: manu},
		"sales":         {Raw: tableStats(10, 0, 100), Cleaned: sales},
		"testing":       {Raw: tableStats(8, 0, 100), Cleaned: tst},
	}
	rep := Generate(r, nil, DefaultThresholds(), meta)
	assert.Contains(t, rep.Datasets["field"].KeyInsights, "Most common failure mode: Overheat (4 occurrences)")
	assert.Contains(t, rep.Datasets["manufacturing"].KeyInsights, "Average production quantity: 1,234 units")
	assert.Contains(t, rep.Datasets["sales"].KeyInsights, "Primary sales channel: Online (7 orders)")
	assert.Contains(t, rep.Datasets["testing"].KeyInsights, "Test pass rate: 75.0%")
}

func TestMissingColumnsSkipSentences(t *testing.T) {
	r := analysis.Result{
		"field": {Raw: tableStats(10, 0, 100), Cleaned: tableStats(10, 0, 100)},
	}
	ds := Generate(r, nil, DefaultThresholds(), meta).Datasets["field"]
	for _, s := range ds.KeyInsights {
		assert.NotContains(t, s, "failure mode")
	}
}

func TestOverall(t *testing.T) {
	r := analysis.Result{
		"field":   {Raw: tableStats(2000, 10, 90), Cleaned: tableStats(1500, 0, 100)},
		"sales":   {Raw: tableStats(500, 10, 94), Cleaned: tableStats(500, 2, 96)},
		"testing": {Raw: tableStats(10, 0, 100)},
	}
	rep := Generate(r, []string{"field", "sales", "testing"}, DefaultThresholds(), meta)
	o := rep.Overall
	assert.Equal(t, 2500, o.TotalRecordsRaw)
	assert.Equal(t, 2000, o.TotalRecordsCleaned)
	assert.InDelta(t, 6.0, o.OverallQualityImprovement, 1e-9)
	assert.Equal(t, []string{
		"Processed 2,500 records across 2 datasets",
		"Maintained 2,000 clean records",
		"Average quality improvement: +6.0 points",
		"1 of 2 datasets achieved 100% data completeness after cleaning",
	}, o.KeyFindings)
	assert.NotContains(t, rep.Datasets, "testing")
}

func TestCompletenessFinding(t *testing.T) {
	assert.Equal(t, "All datasets achieved 100% data completeness after cleaning", completenessFinding(4, 4))
	assert.Equal(t, "No dataset reached 100% data completeness after cleaning", completenessFinding(0, 4))
}

func TestWrite(t *testing.T) {
	r := analysis.Result{
		"field": {Raw: tableStats(10, 5, 80), Cleaned: tableStats(10, 0, 100)},
	}
	path := filepath.Join(t.TempDir(), "viz", FileName)
	require.NoError(t, Write(path, Generate(r, nil, DefaultThresholds(), meta)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "run-7", doc["run_id"])
	assert.Contains(t, doc, "overall")
	ds := doc["datasets"].(map[string]any)["field"].(map[string]any)
	assert.InDelta(t, 100.0, ds["data_cleaning_effectiveness"], 1e-9)
}
