package report

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func statsOf(t *testing.T, csv string) *analysis.TableStats {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv), "fixture", ',')
	require.NoError(t, err)
	return analysis.Compute(tbl)
}

func fixtureResult(t *testing.T) analysis.Result {
	var raw strings.Builder
	raw.WriteString("id,channel,qty\n")
	for i := 0; i < 1200; i++ {
		qty := "5"
		if i%10 == 0 {
			qty = ""
		}
		raw.WriteString(strings.Join([]string{strconv.Itoa(i), "Online", qty}, ",") + "\n")
	}
	raw.WriteString("0,Online,\n")
	return analysis.Result{
		"sales": {
			Raw:     statsOf(t, raw.String()),
			Cleaned: statsOf(t, "id,channel,qty\n1,Online,5\n2,Retail,3\n"),
		},
		"testing": {
			Raw: statsOf(t, "status\nPASS\n"),
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := fixtureResult(t)
	path := filepath.Join(t.TempDir(), JSONFile)
	require.NoError(t, WriteJSON(path, r))

	back, err := ReadJSON(path)
	require.NoError(t, err)
	for name, d := range r {
		got := back[name]
		require.NotNil(t, got, name)
		for _, pair := range [][2]*analysis.TableStats{{d.Raw, got.Raw}, {d.Cleaned, got.Cleaned}} {
			want, have := pair[0], pair[1]
			if want == nil {
				assert.Nil(t, have)
				continue
			}
			assert.Equal(t, want.Shape, have.Shape)
			assert.Equal(t, want.TotalMissing, have.TotalMissing)
			assert.Equal(t, want.MissingPercentage, have.MissingPercentage)
			assert.Equal(t, want.DuplicateRows, have.DuplicateRows)
			assert.Equal(t, want.QualityScore, have.QualityScore)
			assert.Equal(t, want.Columns, have.Columns)
		}
	}
	channel, ok := back["sales"].Cleaned.Column("CHANNEL")
	require.True(t, ok)
	assert.Equal(t, 1, channel.FrequencyOfMostCommon)
	assert.Equal(t, "Online", *channel.MostFrequent)
}

func TestMetaRoundTrip(t *testing.T) {
	m := NewMeta(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
	path := filepath.Join(t.TempDir(), MetaFile)
	require.NoError(t, WriteMeta(path, m))

	back, err := ReadMeta(path)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, back.RunID)
	assert.True(t, m.Generated.Equal(back.Generated))

	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
	_, err = ReadMeta(path)
	assert.Error(t, err)
}

func TestReadJSONMissingFile(t *testing.T) {
	_, err := ReadJSON(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestText(t *testing.T) {
	r := fixtureResult(t)
	meta := Meta{RunID: "run-1", Generated: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	txt := Text(r, []string{"sales", "testing"}, meta)

	for _, want := range []string{
		"DATA ANALYSIS SUMMARY REPORT",
		"Generated on: 2024-03-01 09:30:00",
		"Run ID: run-1",
		"Total Datasets Analyzed: 2",
		"Total Raw Records: 1,202",
		"Total Cleaned Records: 2",
		"Records Removed: 1,200",
		"DATASET: SALES",
		"Records: 1,201",
		"Duplicates: 1",
		"Quality Score: 100.00%",
		"Duplicates Removed: 1",
		"DATASET: TESTING",
		"END OF REPORT",
	} {
		assert.Contains(t, txt, want)
	}
	assert.Less(t, strings.Index(txt, "DATASET: SALES"), strings.Index(txt, "DATASET: TESTING"))
}

func TestRetentionGuardsZero(t *testing.T) {
	assert.Equal(t, 0.0, Totals{}.Retention())
	assert.InDelta(t, 50.0, Totals{Raw: 4, Cleaned: 2}.Retention(), 1e-9)
	assert.Contains(t, Text(analysis.Result{}, nil, NewMeta(time.Now())), "Data Retention Rate: 0.00%")
}

func TestWriteWorkbook(t *testing.T) {
	r := fixtureResult(t)
	path := filepath.Join(t.TempDir(), "out", WorkbookFile)
	require.NoError(t, WriteWorkbook(path, r, []string{"sales", "testing"}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Summary", "sales", "testing"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"sales", "raw", "1201"}, rows[1][:3])
	assert.Equal(t, "cleaned", rows[2][1])

	cols, err := f.GetRows("sales")
	require.NoError(t, err)
	assert.Equal(t, "Most Frequent", cols[0][17])
	assert.Len(t, cols, 1+3+3)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "a_b", sheetName("a/b"))
	assert.Equal(t, "summary_data", sheetName("summary"))
	assert.Len(t, sheetName(strings.Repeat("x", 40)), 31)
}
