package charts

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/dataset"
	"github.com/KaramelBytes/dqreport/internal/insights"
	"github.com/KaramelBytes/dqreport/internal/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Aggregate chart file names.
const (
	QualityDashboard     = "quality_dashboard.png"
	FieldDashboard       = "field_analysis.png"
	ManufacturingBoard   = "manufacturing_analysis.png"
	SalesDashboard       = "sales_analysis.png"
	TestingDashboard     = "testing_analysis.png"
	ComprehensiveSummary = "comprehensive_summary.png"
)

// RenderDashboards draws the aggregate charts. Statistics come from r; the
// dataset dashboards read rows from pairs and are skipped unless both
// versions are loaded.
func RenderDashboards(r analysis.Result, pairs map[string]*dataset.Pair, opt Options, dir string) []Result {
	names := completeNames(r, opt.Order)
	return render(dir, opt.dpi(), slog.Default(), []chart{
		{QualityDashboard, func() (*figure, error) { return qualityDashboard(r, names) }},
		{FieldDashboard, func() (*figure, error) { return fieldDashboard(pairs[dataset.Field], opt) }},
		{ManufacturingBoard, func() (*figure, error) { return manufacturingDashboard(pairs[dataset.Manufacturing], opt) }},
		{SalesDashboard, func() (*figure, error) { return salesDashboard(pairs[dataset.Sales], opt) }},
		{TestingDashboard, func() (*figure, error) { return testingDashboard(pairs[dataset.Testing], opt) }},
		{ComprehensiveSummary, func() (*figure, error) { return comprehensive(r, names, opt) }},
	})
}

func completeNames(r analysis.Result, order []string) []string {
	var out []string
	for _, n := range r.Names(order) {
		if r[n].Complete() {
			out = append(out, n)
		}
	}
	return out
}

func qualityDashboard(r analysis.Result, names []string) (*figure, error) {
	if len(names) == 0 {
		return nil, skipped("no dataset has both versions")
	}
	labels := make([]string, len(names))
	metric := func(f func(*analysis.TableStats) float64) (raw, cleaned []float64) {
		for _, n := range names {
			raw = append(raw, f(r[n].Raw))
			cleaned = append(cleaned, f(r[n].Cleaned))
		}
		return raw, cleaned
	}
	for i, n := range names {
		labels[i] = title(n)
	}

	panels := []struct {
		title, ylabel, format string
		value                 func(*analysis.TableStats) float64
		rawColor, cleanColor  color.NRGBA
	}{
		{"Missing Data Percentage Comparison", "Missing Data %", "%.1f%%",
			func(s *analysis.TableStats) float64 { return s.MissingPercentage }, red, green},
		{"Data Quality Score Comparison", "Quality Score", "%.1f",
			func(s *analysis.TableStats) float64 { return s.QualityScore }, amber, gold},
		{"Record Count Comparison", "Record Count", "%.0f",
			func(s *analysis.TableStats) float64 { return float64(s.Rows()) }, blue, green},
		{"Total Missing Values Comparison", "Total Missing Values", "%.0f",
			func(s *analysis.TableStats) float64 { return float64(s.TotalMissing) }, red, green},
	}

	f := newFigure("Data Quality Overview - All Datasets", 2, 2, 16*vg.Inch, 12*vg.Inch)
	for i, pn := range panels {
		raw, cleaned := metric(pn.value)
		p := newPlot(pn.title, "Dataset", pn.ylabel)
		p.Add(plotter.NewGrid())
		err := groupedBars(p, labels, []series{
			{"Raw", raw, alpha(pn.rawColor, 0.8)},
			{"Cleaned", cleaned, alpha(pn.cleanColor, 0.8)},
		}, pn.format)
		if err != nil {
			return nil, err
		}
		top := maxOf(append(raw, cleaned...)...)
		if i == 1 {
			p.Y.Min = math.Min(85, minOf(append(raw, cleaned...)...)-5)
			p.Y.Max = 105
		} else {
			p.Y.Min = 0
			p.Y.Max = math.Max(top*1.15, 1)
		}
		f.set(i/2, i%2, p)
	}
	return f, nil
}

func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// counts returns the frequency table of the column of t matching name.
func counts(t *table.Table, name string) ([]table.ValueCount, bool) {
	c, ok := t.Find(name)
	if !ok {
		return nil, false
	}
	vc := c.ValueCounts()
	return vc, len(vc) > 0
}

// firstSeen returns the distinct non-missing values of c in row order.
func firstSeen(c *table.Column) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range c.Values() {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// groupedBoxes splits the numeric column value by the levels of key.
func groupedBoxes(t *table.Table, value, key, title, xlabel, ylabel string, colors []color.Color) (*plot.Plot, error) {
	vc, ok1 := t.Find(value)
	kc, ok2 := t.Find(key)
	if !ok1 || !ok2 || vc.Kind != table.Numeric {
		return nil, nil
	}
	var groups []boxGroup
	for i, level := range firstSeen(kc) {
		groups = append(groups, boxGroup{name: level, values: vc.Filter(kc, level), fill: alpha(toNRGBA(pick(colors, i)), 0.7)})
	}
	p, err := boxPlot(title, ylabel, groups)
	if p != nil {
		p.X.Label.Text = xlabel
	}
	return p, err
}

// labelledBars draws one colored bar per frequency entry.
func labelledBars(title, xlabel, ylabel string, vc []table.ValueCount, colors []color.Color, horizontal bool) (*plot.Plot, error) {
	if len(vc) == 0 {
		return nil, nil
	}
	names := make([]string, len(vc))
	values := make([]float64, len(vc))
	for i, e := range vc {
		names[i], values[i] = e.Value, float64(e.Count)
	}
	p := newPlot(title, xlabel, ylabel)
	p.Add(plotter.NewGrid())
	if err := coloredBars(p, values, colors, horizontal); err != nil {
		return nil, err
	}
	if err := valueLabels(p, values, "%.0f", horizontal, vg.Point{}); err != nil {
		return nil, err
	}
	if horizontal {
		p.NominalY(names...)
		p.X.Min, p.X.Max = 0, maxOf(values...)*1.15
	} else {
		p.NominalX(names...)
		p.Y.Min, p.Y.Max = 0, maxOf(values...)*1.15
	}
	return p, nil
}

func numeric(t *table.Table, name string) ([]float64, bool) {
	c, ok := t.Find(name)
	if !ok || c.Kind != table.Numeric {
		return nil, false
	}
	return c.Floats(), true
}

func valuePie(title string, vc []table.ValueCount, colors []color.Color, explode float64) (*plot.Plot, error) {
	w := make([]wedge, len(vc))
	for i, e := range vc {
		w[i] = wedge{label: e.Value, value: float64(e.Count)}
	}
	return pieChart(title, w, colors, explode, percent)
}

// dashboard lays out six optional panels on a 2x3 grid; a nil panel leaves
// its cell blank. Cells listed in square keep a 1:1 aspect.
func dashboard(heading string, square []int, build ...func() (*plot.Plot, error)) (*figure, error) {
	f := newFigure(heading, 2, 3, 18*vg.Inch, 12*vg.Inch)
	for i, b := range build {
		p, err := b()
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		if slices.Contains(square, i) {
			f.setSquare(i/3, i%3, p)
			continue
		}
		f.set(i/3, i%3, p)
	}
	return f, nil
}

// present reports whether both versions of a dataset dashboard are loaded.
func present(pair *dataset.Pair) bool {
	return pair.Complete()
}

func fieldDashboard(pair *dataset.Pair, opt Options) (*figure, error) {
	if !present(pair) {
		return nil, skipped("field dataset needs both versions")
	}
	raw, cleaned := pair.Raw, pair.Cleaned
	return dashboard("Field Reports Analysis", []int{4},
		func() (*plot.Plot, error) {
			vc, ok := counts(raw, "failureMode")
			if !ok {
				return nil, nil
			}
			return countBars("Top Failure Modes (Raw)", "Count", top(vc, 10), alpha(red, 0.8), true)
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "failuremode")
			if !ok {
				return nil, nil
			}
			return countBars("Top Failure Modes (Cleaned)", "Count", top(vc, 10), alpha(green, 0.8), true)
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "severity")
			if !ok {
				return nil, nil
			}
			sortByValue(vc)
			return labelledBars("Severity Distribution", "Severity Level", "Count", vc,
				[]color.Color{hex("#10b981"), hex("#3b82f6"), hex("#f59e0b"), hex("#ef4444"), hex("#7f1d1d")}, false)
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "location")
			if !ok {
				return nil, nil
			}
			return countBars("Top 10 Locations", "Count", top(vc, 10), alpha(blue, 0.8), false)
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "reportedby")
			if !ok {
				return nil, nil
			}
			return valuePie("Reports by Source", vc, []color.Color{gold, blue}, 0)
		},
		func() (*plot.Plot, error) { return completenessBars(cleaned, "reportid", "serialno") },
	)
}

// sortByValue orders a frequency table by its values, numerically when every
// value parses as a number.
func sortByValue(vc []table.ValueCount) {
	nums := make([]float64, len(vc))
	allNum := true
	for i, e := range vc {
		f, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			allNum = false
			break
		}
		nums[i] = f
	}
	if allNum {
		idx := make([]int, len(vc))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return nums[idx[a]] < nums[idx[b]] })
		sorted := make([]table.ValueCount, len(vc))
		for i, j := range idx {
			sorted[i] = vc[j]
		}
		copy(vc, sorted)
		return
	}
	sort.SliceStable(vc, func(a, b int) bool { return vc[a].Value < vc[b].Value })
}

func completenessBars(t *table.Table, exclude ...string) (*plot.Plot, error) {
	if t == nil || t.Cols() == 0 {
		return nil, nil
	}
	var (
		names  []string
		values []float64
	)
	for _, c := range t.Columns {
		skip := false
		for _, e := range exclude {
			if strings.EqualFold(c.Name, e) {
				skip = true
			}
		}
		if skip {
			continue
		}
		pct := 100.0
		if t.Rows() > 0 {
			pct = (1 - float64(c.MissingCount())/float64(t.Rows())) * 100
		}
		names = append(names, c.Name)
		values = append(values, pct)
	}
	if len(names) == 0 {
		return nil, nil
	}
	p := newPlot("Data Completeness by Column", "Completeness %", "")
	p.Add(plotter.NewGrid())
	if err := singleBars(p, values, alpha(green, 0.8), true); err != nil {
		return nil, err
	}
	if err := valueLabels(p, values, "%.1f%%", true, vg.Point{}); err != nil {
		return nil, err
	}
	p.NominalY(names...)
	p.X.Min = math.Min(95, minOf(values...)-1)
	p.X.Max = 101
	return p, nil
}

func manufacturingDashboard(pair *dataset.Pair, opt Options) (*figure, error) {
	if !present(pair) {
		return nil, skipped("manufacturing dataset needs both versions")
	}
	raw, cleaned := pair.Raw, pair.Cleaned
	shiftColors := []color.Color{alpha(amber, 0.8), alpha(blue, 0.8), alpha(navy, 0.8)}
	return dashboard("Manufacturing Data Analysis", nil,
		func() (*plot.Plot, error) {
			vals, ok := numeric(cleaned, "producedqty")
			if !ok {
				return nil, nil
			}
			return histPlot("Production Quantity Distribution", "Produced Quantity", vals, opt.bins(), alpha(gold, 0.7), true, "%.0f")
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "shift")
			if !ok {
				return nil, nil
			}
			return labelledBars("Production by Shift", "Shift", "Count", vc, shiftColors, false)
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(raw, "machineId")
			if !ok {
				return nil, nil
			}
			return countBars("Top 10 Machine Utilization", "Usage Count", top(vc, 10), alpha(blue, 0.8), false)
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(raw, "operatorId")
			if !ok {
				return nil, nil
			}
			return countBars("Top 10 Operators by Production Count", "Production Count", top(vc, 10), alpha(green, 0.8), true)
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "productid")
			if !ok {
				return nil, nil
			}
			return countBars("Top 10 Products Manufactured", "Count", top(vc, 10), alpha(gold, 0.8), false)
		},
		func() (*plot.Plot, error) {
			return groupedBoxes(cleaned, "producedqty", "shift", "Production Quantity by Shift", "Shift", "Produced Quantity", []color.Color{amber, blue, navy})
		},
	)
}

func salesDashboard(pair *dataset.Pair, opt Options) (*figure, error) {
	if !present(pair) {
		return nil, skipped("sales dataset needs both versions")
	}
	cleaned := pair.Cleaned
	channelColors := []color.Color{gold, blue, amber}
	return dashboard("Sales Data Analysis", []int{0},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "channel")
			if !ok {
				return nil, nil
			}
			return valuePie("Sales Distribution by Channel", vc, channelColors, 0.05)
		},
		func() (*plot.Plot, error) {
			vals, ok := numeric(cleaned, "unitprice")
			if !ok {
				return nil, nil
			}
			return histPlot("Unit Price Distribution", "Unit Price", vals, opt.bins(), alpha(green, 0.7), true, "$%.2f")
		},
		func() (*plot.Plot, error) {
			vals, ok := numeric(cleaned, "qty")
			if !ok {
				return nil, nil
			}
			return histPlot("Order Quantity Distribution", "Quantity", vals, opt.bins(), alpha(blue, 0.7), false, "")
		},
		func() (*plot.Plot, error) {
			vals, ok := numeric(cleaned, "totalprice")
			if !ok || len(vals) == 0 {
				return nil, nil
			}
			lo, hi := analysis.TukeyFence(vals)
			return histPlot("Total Price Distribution (Outliers Removed)", "Total Price", iqrFilter(vals, lo, hi), opt.bins(), alpha(red, 0.7), false, "")
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "productid")
			if !ok {
				return nil, nil
			}
			return countBars("Top 10 Products by Order Count", "Order Count", top(vc, 10), alpha(gold, 0.8), false)
		},
		func() (*plot.Plot, error) {
			return groupedBoxes(cleaned, "totalprice", "channel", "Sales Value by Channel", "Channel", "Total Price", channelColors)
		},
	)
}

// passRates returns the share of PASS statuses per test name in first-seen order.
func passRates(t *table.Table) (names []string, rates []float64, ok bool) {
	test, ok1 := t.Find("testname")
	status, ok2 := t.Find("status")
	if !ok1 || !ok2 {
		return nil, nil, false
	}
	total := map[string]int{}
	pass := map[string]int{}
	for i := 0; i < t.Rows(); i++ {
		if test.Missing[i] {
			continue
		}
		k := test.Strs[i]
		if _, ok := total[k]; !ok {
			names = append(names, k)
		}
		total[k]++
		if !status.Missing[i] && status.Strs[i] == "PASS" {
			pass[k]++
		}
	}
	for _, n := range names {
		rates = append(rates, float64(pass[n])/float64(total[n])*100)
	}
	return names, rates, len(names) > 0
}

func testingDashboard(pair *dataset.Pair, opt Options) (*figure, error) {
	if !present(pair) {
		return nil, skipped("testing dataset needs both versions")
	}
	raw, cleaned := pair.Raw, pair.Cleaned
	five := []color.Color{alpha(gold, 0.8), alpha(blue, 0.8), alpha(green, 0.8), alpha(amber, 0.8), alpha(red, 0.8)}
	return dashboard("Testing Data Analysis", []int{1},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "testname")
			if !ok {
				return nil, nil
			}
			p, err := labelledBars("Test Type Distribution", "Test Type", "Count", vc, five, false)
			if p != nil {
				rotateX(p)
			}
			return p, err
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "status")
			if !ok {
				return nil, nil
			}
			return valuePie("Test Results: Pass vs Fail", vc, []color.Color{green, red}, 0.05)
		},
		func() (*plot.Plot, error) {
			vals, ok := numeric(cleaned, "measurementvalue")
			if !ok || len(vals) == 0 {
				return nil, nil
			}
			lo, hi := analysis.Quantile(vals, 0.01), analysis.Quantile(vals, 0.99)
			return histPlot("Measurement Value Distribution (99% Range)", "Measurement Value", iqrFilter(vals, lo, hi), opt.bins(), alpha(blue, 0.7), false, "")
		},
		func() (*plot.Plot, error) {
			vc, ok := counts(cleaned, "unit")
			if !ok {
				return nil, nil
			}
			return labelledBars("Measurement Unit Distribution", "Count", "", vc, five, true)
		},
		func() (*plot.Plot, error) { return passRateBars(cleaned) },
		func() (*plot.Plot, error) { return rawVsCleaned(raw, cleaned) },
	)
}

func passRateBars(t *table.Table) (*plot.Plot, error) {
	names, rates, ok := passRates(t)
	if !ok {
		return nil, nil
	}
	colors := make([]color.Color, len(rates))
	for i, r := range rates {
		switch {
		case r >= 80:
			colors[i] = alpha(green, 0.8)
		case r >= 60:
			colors[i] = alpha(amber, 0.8)
		default:
			colors[i] = alpha(red, 0.8)
		}
	}
	p := newPlot("Pass Rate by Test Type", "", "Pass Rate %")
	p.Add(plotter.NewGrid())
	if err := coloredBars(p, rates, colors, false); err != nil {
		return nil, err
	}
	if err := valueLabels(p, rates, "%.1f%%", false, vg.Point{}); err != nil {
		return nil, err
	}
	target, err := hline(80, -0.5, float64(len(rates))-0.5, alpha(hex("#ff0000"), 0.5))
	if err != nil {
		return nil, err
	}
	p.Add(target)
	p.Legend.Add("80% Target", target)
	p.Legend.Top = true
	p.NominalX(names...)
	rotateX(p)
	p.Y.Min, p.Y.Max = 0, 105
	return p, nil
}

func rawVsCleaned(raw, cleaned *table.Table) (*plot.Plot, error) {
	if raw == nil || cleaned == nil {
		return nil, nil
	}
	metrics := func(t *table.Table) []float64 {
		return []float64{float64(t.Rows()), float64(t.TotalMissing()), float64(t.Rows() - t.IncompleteRows())}
	}
	p := newPlot("Data Quality Comparison", "Metric", "Count")
	p.Add(plotter.NewGrid())
	err := groupedBars(p, []string{"Total Records", "Missing Values", "Complete Data"}, []series{
		{"Raw", metrics(raw), alpha(amber, 0.8)},
		{"Cleaned", metrics(cleaned), alpha(green, 0.8)},
	}, "%.0f")
	if err != nil {
		return nil, err
	}
	p.Y.Min = 0
	p.Y.Max = math.Max(1, maxOf(append(metrics(raw), metrics(cleaned)...)...)*1.15)
	return p, nil
}

// radarValues returns completeness, quality, normalized record count and
// cleaning effectiveness of one dataset.
func radarValues(d *analysis.DatasetStats, base float64) []float64 {
	c := d.Cleaned
	return []float64{
		100 - c.MissingPercentage,
		c.QualityScore,
		float64(c.Rows()) / base * 100,
		insights.Effectiveness(d.Raw.TotalMissing, c.TotalMissing),
	}
}

func summaryLines(name string, d *analysis.DatasetStats, pr *message.Printer) []string {
	raw, c := d.Raw, d.Cleaned
	return []string{
		strings.ToUpper(name) + " DATASET SUMMARY",
		"",
		"Records:",
		pr.Sprintf("  Raw: %d", raw.Rows()),
		pr.Sprintf("  Cleaned: %d", c.Rows()),
		pr.Sprintf("  Removed: %d", raw.Rows()-c.Rows()),
		"",
		"Data Quality:",
		fmt.Sprintf("  Raw Quality Score: %.1f/100", raw.QualityScore),
		fmt.Sprintf("  Cleaned Quality Score: %.1f/100", c.QualityScore),
		fmt.Sprintf("  Improvement: %+.1f", c.QualityScore-raw.QualityScore),
		"",
		"Missing Data:",
		fmt.Sprintf("  Raw Missing: %d values (%.2f%%)", raw.TotalMissing, raw.MissingPercentage),
		fmt.Sprintf("  Cleaned Missing: %d values (%.2f%%)", c.TotalMissing, c.MissingPercentage),
		"",
		fmt.Sprintf("Columns: %d", raw.Cols()),
		fmt.Sprintf("Memory: %s (raw), %s (cleaned)", raw.MemoryUsage, c.MemoryUsage),
	}
}

func comprehensive(r analysis.Result, names []string, opt Options) (*figure, error) {
	if len(names) == 0 {
		return nil, skipped("no dataset has both versions")
	}
	pr := message.NewPrinter(language.English)
	f := newFigure("Comprehensive Data Analysis Summary", 3, 2, 20*vg.Inch, 15*vg.Inch)

	base := float64(opt.RadarRecordBase)
	if base <= 0 {
		for _, n := range names {
			base = math.Max(base, float64(r[n].Cleaned.Rows()))
		}
	}
	base = math.Max(base, 1)
	var data []radarSeries
	var rawTotal, cleanedTotal int
	for _, n := range names {
		data = append(data, radarSeries{name: title(n), values: radarValues(r[n], base)})
		rawTotal += r[n].Raw.Rows()
		cleanedTotal += r[n].Cleaned.Rows()
	}
	radar, err := radarChart("Overall Data Quality Metrics",
		[]string{"Completeness", "Quality Score", "Record Count\n(Normalized)", "Data Cleaning\nEffectiveness"}, data)
	if err != nil {
		return nil, err
	}
	f.setSquare(0, 0, radar)

	sum := float64(cleanedTotal + max(rawTotal-cleanedTotal, 0))
	pie, err := pieChart(pr.Sprintf("Overall Data Processing\nTotal: %d records", rawTotal),
		[]wedge{{"Cleaned Records", float64(cleanedTotal)}, {"Removed Records", float64(rawTotal - cleanedTotal)}},
		[]color.Color{green, red}, 0,
		func(share float64) string { return fmt.Sprintf("%.1f%%\n(%d)", share, int(math.Round(share/100*sum))) })
	if err != nil {
		return nil, err
	}
	if pie != nil {
		f.setSquare(0, 1, pie)
	}

	for i, n := range names {
		if i >= 4 {
			break
		}
		f.set(1+i/2, i%2, textPanel(title(n)+" Dataset", summaryLines(n, r[n], pr)))
	}
	return f, nil
}
