package table

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var fieldRows = []string{
	"reportId,failureMode,severity,cost,location",
	"R1,Overheat,3,10.5,North",
	"R2,Crack,2,,South",
	"R3,Overheat,3,12.0,",
	"R4,Leak,NA,9.25,North",
	"R1,Overheat,3,10.5,North",
}

func writeFile(t *testing.T, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func TestLoadCSVTypesAndMissing(t *testing.T) {
	path := writeFile(t, "field.csv", fieldRows)

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "field", tbl.Name)
	assert.Equal(t, path, tbl.Path)
	assert.Equal(t, 5, tbl.Rows())
	assert.Equal(t, 5, tbl.Cols())
	assert.Equal(t, []string{"reportId", "failureMode", "severity", "cost", "location"}, tbl.Names())

	sev := tbl.Column("severity")
	require.NotNil(t, sev)
	assert.Equal(t, Numeric, sev.Kind)
	assert.Equal(t, "float64", sev.DType, "int column with a gap widens to float64")
	assert.Equal(t, 1, sev.MissingCount())
	assert.True(t, math.IsNaN(sev.Nums[3]))

	cost := tbl.Column("cost")
	assert.Equal(t, "float64", cost.DType)
	assert.Equal(t, []float64{10.5, 12.0, 9.25, 10.5}, cost.Floats())

	loc := tbl.Column("location")
	assert.Equal(t, Categorical, loc.Kind)
	assert.Equal(t, "object", loc.DType)
	assert.Equal(t, 1, loc.MissingCount())

	assert.Equal(t, 3, tbl.TotalMissing())
	assert.Equal(t, 3, tbl.IncompleteRows())
}

func TestFindIsCaseInsensitive(t *testing.T) {
	tbl, err := Load(writeFile(t, "f.csv", fieldRows))
	require.NoError(t, err)

	c, ok := tbl.Find("failuremode")
	require.True(t, ok)
	assert.Equal(t, "failureMode", c.Name)

	c, ok = tbl.Find("absent", "LOCATION")
	require.True(t, ok)
	assert.Equal(t, "location", c.Name)

	_, ok = tbl.Find("shift")
	assert.False(t, ok)
}

func TestValueCountsOrdersByCountThenFirstSeen(t *testing.T) {
	tbl, err := Load(writeFile(t, "f.csv", fieldRows))
	require.NoError(t, err)

	vc := tbl.Column("failureMode").ValueCounts()
	require.Len(t, vc, 3)
	assert.Equal(t, ValueCount{Value: "Overheat", Count: 3}, vc[0])
	assert.Equal(t, ValueCount{Value: "Crack", Count: 1}, vc[1])
	assert.Equal(t, ValueCount{Value: "Leak", Count: 1}, vc[2])
	assert.Equal(t, 3, tbl.Column("failureMode").Unique())
}

func TestRowKeyMatchesDuplicates(t *testing.T) {
	tbl, err := Load(writeFile(t, "f.csv", fieldRows))
	require.NoError(t, err)
	assert.Equal(t, tbl.RowKey(0), tbl.RowKey(4))
	assert.NotEqual(t, tbl.RowKey(0), tbl.RowKey(2))
}

func TestHeaderOnlyCSV(t *testing.T) {
	tbl, err := Load(writeFile(t, "empty.csv", []string{"a,b,c"}))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
	assert.Equal(t, 3, tbl.Cols())
	assert.Equal(t, "object", tbl.Column("b").DType)
}

func TestRepeatedHeadersAreSuffixed(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("id,id,b,id,,\n,1,x,4,5,6\n,2,y,5,6,7\n"), "dup", ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "id.1", "b", "id.2", "Unnamed: 4", "Unnamed: 5"}, tbl.Names())
	assert.Equal(t, 2, tbl.Column("id").MissingCount())
	assert.Equal(t, 0, tbl.Column("id.1").MissingCount())
	assert.Equal(t, Numeric, tbl.Column("id.2").Kind)
}

func TestCapitalizedBoolsAreNumeric(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("flag,mixed\nTrue,TRUE\nFalse,maybe\n,False\n"), "b", ',')
	require.NoError(t, err)

	flag := tbl.Column("flag")
	assert.Equal(t, Numeric, flag.Kind)
	assert.Equal(t, "bool", flag.DType)
	assert.Equal(t, []float64{1, 0}, flag.Floats())
	assert.Equal(t, []string{"True", "False"}, flag.Values())

	mixed := tbl.Column("mixed")
	assert.Equal(t, "object", mixed.DType)
	assert.Equal(t, []string{"TRUE", "maybe", "False"}, mixed.Values())
}

func TestRaggedRowsArePadded(t *testing.T) {
	tbl, err := Load(writeFile(t, "ragged.csv", []string{"a,b", "1,x", "2"}))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, 1, tbl.Column("b").MissingCount())
}

func TestFilterByKey(t *testing.T) {
	tbl, err := Load(writeFile(t, "f.csv", fieldRows))
	require.NoError(t, err)
	got := tbl.Column("cost").Filter(tbl.Column("location"), "North")
	assert.Equal(t, []float64{10.5, 9.25, 10.5}, got)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"orderId", "channel", "qty"},
		{"O1", "Online", 2},
		{"O2", "Retail", 5},
		{"O3", "Online", nil},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Rows())
	qty := tbl.Column("qty")
	require.NotNil(t, qty)
	assert.Equal(t, Numeric, qty.Kind)
	assert.Equal(t, []float64{2, 5}, qty.Floats())
	assert.Equal(t, 1, qty.MissingCount())
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load("data.parquet")
	require.ErrorIs(t, err, ErrUnsupported)
}
