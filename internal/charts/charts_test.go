package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/dataset"
	"github.com/KaramelBytes/dqreport/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, name, body string) *table.Table {
	t.Helper()
	tb, err := table.ReadCSV(strings.NewReader(body), name, ',')
	require.NoError(t, err)
	tb.Name = name
	return tb
}

func lowRes() Options {
	opt := DefaultOptions()
	opt.DPI = 30
	return opt
}

const salesRaw = `channel,qty,unitprice,totalprice,productid
Online,1,10.5,10.5,P1
Retail,2,,40,P2
Online,,7,21,P1
Wholesale,10,3,30,P3
Online,1,10.5,10.5,P1
`

const salesCleaned = `channel,qty,unitprice,totalprice,productid
Online,1,10.5,10.5,P1
Retail,2,20,40,P2
Online,3,7,21,P1
Wholesale,10,3,30,P3
`

func salesPair(t *testing.T) *dataset.Pair {
	return &dataset.Pair{
		Name:    dataset.Sales,
		Raw:     mustTable(t, dataset.Sales, salesRaw),
		Cleaned: mustTable(t, dataset.Sales, salesCleaned),
	}
}

func TestMissingMatrixBucketsRows(t *testing.T) {
	tb := mustTable(t, "m", "a,b\n,1\n2,2\n3,3\n4,4\n,5\n")
	m := missingMatrix(tb, 2)
	require.Len(t, m, 2)
	// rows 3-4 hold one missing cell, drawn at the bottom
	assert.InDelta(t, 0.5, m[0][0], 1e-9)
	// rows 0-2 hold one missing cell, drawn at the top
	assert.InDelta(t, 1.0/3, m[1][0], 1e-9)
	assert.Zero(t, m[0][1])
	assert.Zero(t, m[1][1])
}

func TestMissingMatrixKeepsRowsUnderLimit(t *testing.T) {
	tb := mustTable(t, "m", "a\n1\nNA\n3\n")
	m := missingMatrix(tb, 100)
	require.Len(t, m, 3)
	assert.Equal(t, []float64{0}, m[0])
	assert.Equal(t, []float64{1}, m[1])
	assert.Equal(t, []float64{0}, m[2])
}

func TestHistogramClosesLastBin(t *testing.T) {
	h := histogram([]float64{0, 1, 2, 3, 4}, 2, 0, 4, red)
	require.Len(t, h.Bins, 2)
	assert.Equal(t, 2.0, h.Bins[0].Weight)
	assert.Equal(t, 3.0, h.Bins[1].Weight)
}

func TestBinRange(t *testing.T) {
	lo, hi, ok := binRange([]float64{3, 1}, []float64{7})
	require.True(t, ok)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 7.0, hi)

	lo, hi, ok = binRange([]float64{2})
	require.True(t, ok)
	assert.Equal(t, 1.5, lo)
	assert.Equal(t, 2.5, hi)

	_, _, ok = binRange(nil)
	assert.False(t, ok)
}

func TestSortByValue(t *testing.T) {
	vc := []table.ValueCount{{Value: "3", Count: 1}, {Value: "10", Count: 5}, {Value: "1", Count: 2}}
	sortByValue(vc)
	assert.Equal(t, "1", vc[0].Value)
	assert.Equal(t, "3", vc[1].Value)
	assert.Equal(t, "10", vc[2].Value)

	vc = []table.ValueCount{{Value: "high", Count: 1}, {Value: "critical", Count: 2}}
	sortByValue(vc)
	assert.Equal(t, "critical", vc[0].Value)
}

func TestPassRates(t *testing.T) {
	tb := mustTable(t, "testing", "testname,status\nVoltage,PASS\nTorque,FAIL\nVoltage,FAIL\nTorque,FAIL\n,PASS\n")
	names, rates, ok := passRates(tb)
	require.True(t, ok)
	assert.Equal(t, []string{"Voltage", "Torque"}, names)
	assert.Equal(t, []float64{50, 0}, rates)

	_, _, ok = passRates(mustTable(t, "testing", "status\nPASS\n"))
	assert.False(t, ok)
}

func TestRenderComparisonWritesEveryChart(t *testing.T) {
	dir := t.TempDir()
	res := RenderComparison(salesPair(t), nil, lowRes(), dir)
	require.Len(t, res, 6)
	for i, r := range res {
		assert.Equal(t, ComparisonFiles(dataset.Sales)[i], r.Chart)
		require.NoError(t, r.Err, r.Chart)
		info, err := os.Stat(filepath.Join(dir, r.Chart))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestRenderComparisonSkipsCorrelationWithOneNumericColumn(t *testing.T) {
	pair := &dataset.Pair{
		Name:    "field",
		Raw:     mustTable(t, "field", "severity,location\n1,North\n2,\n"),
		Cleaned: mustTable(t, "field", "severity,location\n1,North\n2,South\n"),
	}
	res := RenderComparison(pair, nil, lowRes(), t.TempDir())
	require.Len(t, res, 6)
	for _, r := range res {
		if r.Chart == "field"+CorrelationChart {
			assert.True(t, r.Skipped())
			assert.Empty(t, r.Path)
			continue
		}
		assert.NoError(t, r.Err, r.Chart)
	}
}

func TestRenderComparisonNeedsBothVersions(t *testing.T) {
	pair := &dataset.Pair{Name: "sales", Raw: mustTable(t, "sales", salesRaw)}
	assert.Nil(t, RenderComparison(pair, nil, lowRes(), t.TempDir()))
}

func TestRenderDashboardsSkipsMissingDatasets(t *testing.T) {
	pair := salesPair(t)
	r := analysis.Result{dataset.Sales: {
		Raw:     analysis.Compute(pair.Raw),
		Cleaned: analysis.Compute(pair.Cleaned),
	}}
	dir := t.TempDir()
	res := RenderDashboards(r, map[string]*dataset.Pair{dataset.Sales: pair}, lowRes(), dir)
	require.Len(t, res, 6)

	byName := map[string]Result{}
	for _, x := range res {
		byName[x.Chart] = x
	}
	for _, name := range []string{QualityDashboard, SalesDashboard, ComprehensiveSummary} {
		require.NoError(t, byName[name].Err, name)
		assert.FileExists(t, filepath.Join(dir, name))
	}
	for _, name := range []string{FieldDashboard, ManufacturingBoard, TestingDashboard} {
		assert.True(t, byName[name].Skipped(), name)
		assert.NoFileExists(t, filepath.Join(dir, name))
	}
}

func TestDashboardLeavesAbsentPanelsBlank(t *testing.T) {
	pair := &dataset.Pair{
		Name:    dataset.Testing,
		Raw:     mustTable(t, dataset.Testing, "testname,status\nVoltage,PASS\n"),
		Cleaned: mustTable(t, dataset.Testing, "testname,status\nVoltage,PASS\nVoltage,FAIL\n"),
	}
	f, err := testingDashboard(pair, lowRes())
	require.NoError(t, err)
	assert.NotNil(t, f.panels[0].plot)
	assert.True(t, f.panels[1].square)
	assert.Nil(t, f.panels[2].plot, "no measurement values")
	assert.Nil(t, f.panels[3].plot, "no unit column")
	assert.NotNil(t, f.panels[4].plot)
	assert.NotNil(t, f.panels[5].plot)
}

func TestRenderDashboardsWithoutCompleteDatasets(t *testing.T) {
	res := RenderDashboards(analysis.Result{}, nil, lowRes(), t.TempDir())
	for _, r := range res {
		assert.True(t, r.Skipped(), r.Chart)
	}
}
