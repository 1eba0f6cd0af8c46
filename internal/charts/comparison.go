package charts

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/dataset"
	"github.com/KaramelBytes/dqreport/internal/logging"
	"github.com/KaramelBytes/dqreport/internal/table"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Per-dataset chart file suffixes.
const (
	QualityComparison = "_quality_comparison.png"
	MissingHeatmap    = "_missing_values_heatmap.png"
	Distributions     = "_distributions.png"
	Categorical       = "_categorical.png"
	CorrelationChart  = "_correlation.png"
	Outliers          = "_outliers.png"
)

// ComparisonFiles lists the per-dataset chart names for name.
func ComparisonFiles(name string) []string {
	return []string{
		name + QualityComparison,
		name + MissingHeatmap,
		name + Distributions,
		name + Categorical,
		name + CorrelationChart,
		name + Outliers,
	}
}

// RenderComparison draws the raw-versus-cleaned charts of one dataset into
// dir. Both versions must be loaded; st may be nil and is then computed.
func RenderComparison(pair *dataset.Pair, st *analysis.DatasetStats, opt Options, dir string) []Result {
	if !pair.Complete() {
		return nil
	}
	if !st.Complete() {
		st = &analysis.DatasetStats{Raw: analysis.Compute(pair.Raw), Cleaned: analysis.Compute(pair.Cleaned)}
	}
	name := pair.Name
	heading := strings.ToUpper(name)
	log := logging.Dataset(name, "")

	return render(dir, opt.dpi(), log, []chart{
		{name + QualityComparison, func() (*figure, error) { return qualityComparison(heading, st) }},
		{name + MissingHeatmap, func() (*figure, error) { return missingHeatmap(heading, pair, opt) }},
		{name + Distributions, func() (*figure, error) { return distributions(heading, pair, opt) }},
		{name + Categorical, func() (*figure, error) { return categoricalBars(heading, pair, opt) }},
		{name + CorrelationChart, func() (*figure, error) { return correlationHeatmaps(heading, pair) }},
		{name + Outliers, func() (*figure, error) { return outlierBoxes(heading, pair, opt) }},
	})
}

func duplicatePct(s *analysis.TableStats) float64 {
	if s.Rows() == 0 {
		return 0
	}
	return float64(s.DuplicateRows) / float64(s.Rows()) * 100
}

func qualityComparison(heading string, st *analysis.DatasetStats) (*figure, error) {
	f := newFigure(heading+" - Data Quality Comparison", 1, 3, 15*vg.Inch, 5*vg.Inch)
	panels := []struct {
		title, ylabel string
		values        []float64
		colors        []color.Color
		rawScaled     bool
	}{
		{"Missing Values Comparison", "Missing Values (%)",
			[]float64{st.Raw.MissingPercentage, st.Cleaned.MissingPercentage},
			[]color.Color{rawRed, cleanGrn}, true},
		{"Duplicate Rows Comparison", "Duplicate Rows (%)",
			[]float64{duplicatePct(st.Raw), duplicatePct(st.Cleaned)},
			[]color.Color{rawRed, cleanGrn}, true},
		{"Record Count Comparison", "Number of Records",
			[]float64{float64(st.Raw.Rows()), float64(st.Cleaned.Rows())},
			[]color.Color{countBlue, countGrn}, false},
	}
	for i, pn := range panels {
		p := newPlot(pn.title, "", pn.ylabel)
		if err := coloredBars(p, pn.values, pn.colors, false); err != nil {
			return nil, err
		}
		p.NominalX("Raw", "Cleaned")
		p.Y.Min = 0
		switch {
		case pn.rawScaled && pn.values[0] > 0:
			p.Y.Max = maxOf(pn.values...) * 1.2
		case pn.rawScaled:
			p.Y.Max = 10
		default:
			p.Y.Max = maxOf(pn.values...) * 1.1
		}
		f.set(0, i, p)
	}
	return f, nil
}

// missingMatrix maps missing cells to 1 and present cells to 0, averaging
// consecutive rows into buckets when the table exceeds maxRows. The first
// row lands at the top of the map.
func missingMatrix(t *table.Table, maxRows int) matrix {
	rows := t.Rows()
	size := 1
	if maxRows > 0 && rows > maxRows {
		size = (rows + maxRows - 1) / maxRows
	}
	buckets := (rows + size - 1) / size
	m := make(matrix, buckets)
	for b := range m {
		m[b] = make([]float64, t.Cols())
	}
	for c, col := range t.Columns {
		for r, miss := range col.Missing {
			if miss {
				m[buckets-1-r/size][c]++
			}
		}
	}
	for b := range m {
		n := size
		if first := (buckets - 1 - b) * size; first+n > rows {
			n = rows - first
		}
		for c := range m[b] {
			m[b][c] /= float64(n)
		}
	}
	return m
}

func missingPanel(label string, t *table.Table, maxRows int) (*plot.Plot, error) {
	total := t.TotalMissing()
	if total == 0 {
		return notice(label, "No Missing Values"), nil
	}
	p := newPlot(fmt.Sprintf("%s (Missing: %d)", label, total), "", "")
	if err := heatLayer(p, missingMatrix(t, maxRows), missingPalette, 0, 1); err != nil {
		return nil, err
	}
	p.NominalX(t.Names()...)
	rotateX(p)
	p.HideY()
	return p, nil
}

func missingHeatmap(heading string, pair *dataset.Pair, opt Options) (*figure, error) {
	f := newFigure(heading+" - Missing Values Heatmap", 1, 2, 16*vg.Inch, 6*vg.Inch)
	for i, side := range []struct {
		label string
		t     *table.Table
	}{{"Raw Data", pair.Raw}, {"Cleaned Data", pair.Cleaned}} {
		p, err := missingPanel(side.label, side.t, opt.HeatmapMaxRows)
		if err != nil {
			return nil, err
		}
		f.set(0, i, p)
	}
	return f, nil
}

// limit caps cols at n.
func limit(cols []*table.Column, n int) []*table.Column {
	if len(cols) > n {
		return cols[:n]
	}
	return cols
}

// counterpart returns the numeric column of t matching name, or nil.
func counterpart(t *table.Table, name string) []float64 {
	if c, ok := t.Find(name); ok && c.Kind == table.Numeric {
		return c.Floats()
	}
	return nil
}

func distributions(heading string, pair *dataset.Pair, opt Options) (*figure, error) {
	cols := limit(pair.Raw.NumericColumns(), opt.panels())
	if len(cols) == 0 {
		return nil, skipped("no numerical columns")
	}
	rows := gridRows(len(cols), 3)
	f := newFigure(heading+" - Distribution Plots (Raw vs Cleaned)", rows, 3, 18*vg.Inch, vg.Length(rows)*5*vg.Inch)
	for _, c := range cols {
		raw, cleaned := c.Floats(), counterpart(pair.Cleaned, c.Name)
		lo, hi, ok := binRange(raw, cleaned)
		if !ok {
			f.add(notice(c.Name+" Distribution", "No data"))
			continue
		}
		p := newPlot(c.Name+" Distribution", c.Name, "Frequency")
		p.Add(plotter.NewGrid())
		for _, s := range []struct {
			label string
			vals  []float64
			fill  color.NRGBA
		}{{"Raw", raw, hex("#ff0000")}, {"Cleaned", cleaned, hex("#008000")}} {
			if len(s.vals) == 0 {
				continue
			}
			h := histogram(s.vals, opt.bins(), lo, hi, alpha(s.fill, 0.5))
			p.Add(h)
			p.Legend.Add(s.label, h)
		}
		p.Legend.Top = true
		p.Y.Min = 0
		f.add(p)
	}
	return f, nil
}

func categoricalBars(heading string, pair *dataset.Pair, opt Options) (*figure, error) {
	cols := limit(pair.Cleaned.CategoricalColumns(), opt.panels())
	if len(cols) == 0 {
		return nil, skipped("no categorical columns")
	}
	rows := gridRows(len(cols), 2)
	f := newFigure(heading+" - Categorical Analysis", rows, 2, 16*vg.Inch, vg.Length(rows)*5*vg.Inch)
	for _, c := range cols {
		t := c.Name + " - Top Categories (Cleaned Data)"
		p, err := countBars(t, "Count", top(c.ValueCounts(), opt.TopCategories), steel, false)
		if err != nil {
			return nil, err
		}
		if p == nil {
			p = notice(t, "No values")
		}
		f.add(p)
	}
	return f, nil
}

// corrPanel lays out m with the first column at the top-left corner.
func corrPanel(label string, m *analysis.CorrMatrix) (*plot.Plot, error) {
	n := len(m.Columns)
	grid := make(matrix, n)
	rev := make([]string, n)
	for r := 0; r < n; r++ {
		grid[r] = append([]float64(nil), m.Values[n-1-r]...)
		rev[r] = m.Columns[n-1-r]
	}
	p := newPlot(label, "", "")
	if err := heatLayer(p, grid, correlationPalette(), -1, 1); err != nil {
		return nil, err
	}
	if err := annotate(p, grid, "%.2f"); err != nil {
		return nil, err
	}
	p.NominalX(m.Columns...)
	rotateX(p)
	p.NominalY(rev...)
	return p, nil
}

func correlationHeatmaps(heading string, pair *dataset.Pair) (*figure, error) {
	var names []string
	for _, c := range pair.Cleaned.NumericColumns() {
		names = append(names, c.Name)
	}
	if len(names) < 2 {
		return nil, skipped("fewer than 2 numerical columns")
	}
	f := newFigure(heading+" - Correlation Heatmap", 1, 2, 18*vg.Inch, 7*vg.Inch)
	for i, side := range []struct {
		label string
		t     *table.Table
	}{{"Raw Data Correlation", pair.Raw}, {"Cleaned Data Correlation", pair.Cleaned}} {
		p, err := corrPanel(side.label, analysis.Correlation(side.t, names))
		if err != nil {
			return nil, err
		}
		f.setSquare(0, i, p)
	}
	return f, nil
}

func outlierBoxes(heading string, pair *dataset.Pair, opt Options) (*figure, error) {
	cols := limit(pair.Cleaned.NumericColumns(), opt.panels())
	if len(cols) == 0 {
		return nil, skipped("no numerical columns")
	}
	rows := gridRows(len(cols), 3)
	f := newFigure(heading+" - Outlier Detection (Box Plots)", rows, 3, 18*vg.Inch, vg.Length(rows)*5*vg.Inch)
	for _, c := range cols {
		t := c.Name + " - Outlier Comparison"
		p, err := boxPlot(t, c.Name, []boxGroup{
			{"Raw", counterpart(pair.Raw, c.Name), hex("#f08080")},
			{"Cleaned", c.Floats(), hex("#90ee90")},
		})
		if err != nil {
			return nil, err
		}
		if p == nil {
			p = notice(t, "No data")
		}
		f.add(p)
	}
	return f, nil
}
