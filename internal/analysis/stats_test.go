package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KaramelBytes/dqreport/internal/table"
)

func mustTable(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv), "fixture", ',')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestQualityScoreWithDuplicates(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,val\n")
	for i := 0; i < 98; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, i*2)
	}
	b.WriteString("0,0\n1,2\n")
	s := Compute(mustTable(t, b.String()))
	if s.Rows() != 100 || s.DuplicateRows != 2 {
		t.Fatalf("rows=%d dups=%d", s.Rows(), s.DuplicateRows)
	}
	if !almostEqual(s.QualityScore, 99.2, 1e-9) {
		t.Fatalf("quality = %v, want 99.2", s.QualityScore)
	}
}

func TestQualityScoreEmptyTable(t *testing.T) {
	if got := QualityScore(100, 0, 0); got != 100 {
		t.Fatalf("empty table quality = %v", got)
	}
	s := Compute(mustTable(t, "a,b\n"))
	if s.Rows() != 0 || s.Cols() != 2 || s.QualityScore != 100 || s.MissingPercentage != 0 {
		t.Fatalf("unexpected zero-row stats: %+v", s)
	}
	if c := s.ColumnStats["a"]; c.Completeness != 100 || c.DType != "object" {
		t.Fatalf("zero-row column: %+v", c)
	}
}

func TestComputeMissingAndBounds(t *testing.T) {
	s := Compute(mustTable(t, "id,mode,qty\n1,A,10\n2,,NA\n3,B,\n3,B,\n"))
	sum := 0
	for _, c := range s.ColumnStats {
		sum += c.MissingCount
	}
	if s.TotalMissing != sum || s.TotalMissing != 4 {
		t.Fatalf("total missing %d, column sum %d", s.TotalMissing, sum)
	}
	if !almostEqual(s.MissingPercentage, 4.0/12*100, 1e-9) {
		t.Fatalf("missing pct = %v", s.MissingPercentage)
	}
	if s.DuplicateRows != 1 {
		t.Fatalf("dups = %d", s.DuplicateRows)
	}
	if s.QualityScore < 0 || s.QualityScore > 100 {
		t.Fatalf("quality out of range: %v", s.QualityScore)
	}
	qty := s.ColumnStats["qty"]
	if qty.DType != "float64" || !almostEqual(qty.MissingPercentage, 75, 1e-9) || !almostEqual(qty.Completeness, 25, 1e-9) {
		t.Fatalf("qty stats: %+v", qty)
	}
	if qty.Std != nil || qty.Skewness != nil {
		t.Fatalf("single value should have nil std and skew")
	}
	if s.DTypes["id"] != "int64" {
		t.Fatalf("id dtype = %s", s.DTypes["id"])
	}
}

func TestNumericStats(t *testing.T) {
	s := Compute(mustTable(t, "v\n1\n2\n3\n10\n"))
	c := s.ColumnStats["v"]
	if !c.IsNumeric() {
		t.Fatalf("v should be numeric")
	}
	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"mean", c.Mean, 4},
		{"median", c.Median, 2.5},
		{"std", c.Std, math.Sqrt(50.0 / 3)},
		{"min", c.Min, 1},
		{"max", c.Max, 10},
		{"q25", c.Q25, 1.75},
		{"q75", c.Q75, 4.75},
		{"skewness", c.Skewness, 1.7636},
	}
	for _, ck := range checks {
		if ck.got == nil || !almostEqual(*ck.got, ck.want, 1e-3) {
			t.Fatalf("%s = %v, want %v", ck.name, ck.got, ck.want)
		}
	}
	if c.Kurtosis == nil {
		t.Fatalf("kurtosis should be set for 4 values")
	}
}

func TestOutliers(t *testing.T) {
	s := Compute(mustTable(t, "v,k\n1,5\n2,5\n3,5\n4,5\n100,5\n"))
	v := s.ColumnStats["v"]
	if *v.OutliersCount != 1 || !almostEqual(*v.OutliersPercentage, 20, 1e-9) {
		t.Fatalf("outliers = %d (%.2f%%)", *v.OutliersCount, *v.OutliersPercentage)
	}
	k := s.ColumnStats["k"]
	if *k.OutliersCount != 0 {
		t.Fatalf("constant column outliers = %d", *k.OutliersCount)
	}
	if *k.Skewness != 0 || *k.Kurtosis != 0 || *k.Std != 0 {
		t.Fatalf("constant column moments: skew=%v kurt=%v std=%v", *k.Skewness, *k.Kurtosis, *k.Std)
	}
	if lo, hi := TukeyFence([]float64{1, 2, 3, 4, 100}); lo != -1 || hi != 7 {
		t.Fatalf("fence = [%v, %v]", lo, hi)
	}
}

func TestAllMissingNumericIsObject(t *testing.T) {
	s := Compute(mustTable(t, "a,b\n1,\n2,NA\n"))
	b := s.ColumnStats["b"]
	if b.IsNumeric() || b.DType != "object" || b.MissingCount != 2 {
		t.Fatalf("all-missing column: %+v", b)
	}
	if b.MostFrequent != nil || len(b.TopValues) != 0 {
		t.Fatalf("all-missing column should have no mode")
	}
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"top_values":{}`) || !strings.Contains(string(raw), `"most_frequent":null`) {
		t.Fatalf("json = %s", raw)
	}
}

func TestCategoricalStats(t *testing.T) {
	s := Compute(mustTable(t, "c\nb\na\nb\na\nc\n"))
	c := s.ColumnStats["c"]
	if c.IsNumeric() {
		t.Fatalf("c should be categorical")
	}
	if *c.MostFrequent != "a" || c.FrequencyOfMostCommon != 2 {
		t.Fatalf("mode = %s (%d)", *c.MostFrequent, c.FrequencyOfMostCommon)
	}
	want := []string{"b", "a", "c"}
	for i, vc := range c.TopValues {
		if vc.Value != want[i] {
			t.Fatalf("top_values[%d] = %s, want %s", i, vc.Value, want[i])
		}
	}
	raw, _ := json.Marshal(c.TopValues)
	if string(raw) != `{"b":2,"a":2,"c":1}` {
		t.Fatalf("top_values json = %s", raw)
	}
	var back TopValues
	if err := json.Unmarshal(raw, &back); err != nil || len(back) != 3 || back[2].Value != "c" {
		t.Fatalf("round trip: %v %+v", err, back)
	}
}

func TestMemoryEstimate(t *testing.T) {
	tbl := mustTable(t, "n,s\n1,ab\n2,\n")
	if got := MemoryEstimate(tbl); got != 128+16+(8+49+2)+(8+24) {
		t.Fatalf("memory = %d", got)
	}
	if s := Compute(tbl); s.MemoryUsage != "0.23 KB" {
		t.Fatalf("memory usage = %s", s.MemoryUsage)
	}
}

func TestCorrelation(t *testing.T) {
	tbl := mustTable(t, "x,y,z,k\n1,2,3,1\n2,4,1,1\n3,6,2,1\n4,,5,1\n")
	m := Correlation(tbl, []string{"x", "y", "missing"})
	if !almostEqual(m.Values[0][1], 1, 1e-12) || !almostEqual(m.Values[0][0], 1, 1e-12) {
		t.Fatalf("corr = %v", m.Values)
	}
	if !math.IsNaN(m.Values[2][0]) || !math.IsNaN(m.Values[0][2]) {
		t.Fatalf("absent column should be NaN: %v", m.Values)
	}
	if r := NumericCorrelation(tbl); !math.IsNaN(r.Values[3][3]) {
		t.Fatalf("constant column should have undefined correlation")
	}
}

func TestTotalMissingMatchesColumnSums(t *testing.T) {
	s := Compute(mustTable(t, "id,id,b\n,1,x\n,2,y\n7,3,z\n"))
	if len(s.ColumnStats) != len(s.Columns) {
		t.Fatalf("column_stats has %d entries for %d columns", len(s.ColumnStats), len(s.Columns))
	}
	sum := 0
	for _, c := range s.ColumnStats {
		sum += c.MissingCount
	}
	if sum != s.TotalMissing || sum != 2 {
		t.Fatalf("total_missing = %d, column sum = %d, want 2", s.TotalMissing, sum)
	}
}

func TestProfileTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 100)
	md := NewProfile(mustTable(t, "note\n"+long+"\n"), 1).Markdown()
	if !utf8.ValidString(md) {
		t.Fatalf("markdown is not valid UTF-8")
	}
	if !strings.Contains(md, strings.Repeat("é", 77)+"...") {
		t.Fatalf("long value not truncated to 77 runes:\n%s", md)
	}
}

func TestProfileMarkdown(t *testing.T) {
	tbl := mustTable(t, "id,mode,qty\n1,A,10\n2,B,12\n3,A,\n")
	tbl.Path = "fixture.csv"
	md := NewProfile(tbl, 2).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: fixture.csv",
		"Rows: 3",
		"- mode: object",
		"A(2), B(1)",
		"- qty: float64",
		"[CORRELATIONS]",
		"| id | mode | qty |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}
