package charts

import (
	"fmt"
	"image/color"
	"math"

	"github.com/KaramelBytes/dqreport/internal/table"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// barWidth scales bars to the number of slots in a panel.
func barWidth(slots int) vg.Length {
	if slots < 1 {
		slots = 1
	}
	w := 260.0 / float64(slots)
	return vg.Points(math.Max(6, math.Min(48, w)))
}

// coloredBars adds one bar per value at x = 0..n-1, each in its own color.
func coloredBars(p *plot.Plot, values []float64, colors []color.Color, horizontal bool) error {
	w := barWidth(len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		bc, err := plotter.NewBarChart(plotter.Values{v}, w)
		if err != nil {
			return err
		}
		bc.XMin = float64(i)
		bc.Color = pick(colors, i)
		bc.Horizontal = horizontal
		bc.LineStyle.Width = vg.Points(0.5)
		p.Add(bc)
	}
	return nil
}

// singleBars adds one series of equally colored bars.
func singleBars(p *plot.Plot, values []float64, c color.Color, horizontal bool) error {
	bc, err := plotter.NewBarChart(plotter.Values(zeroNaN(values)), barWidth(len(values)))
	if err != nil {
		return err
	}
	bc.Color = c
	bc.Horizontal = horizontal
	bc.LineStyle.Width = vg.Points(0.5)
	p.Add(bc)
	return nil
}

// series is one group member of a grouped bar chart.
type series struct {
	name   string
	values []float64
	color  color.Color
}

// groupedBars draws side-by-side bars per category with value labels.
func groupedBars(p *plot.Plot, names []string, groups []series, format string) error {
	if len(names) == 0 {
		return nil
	}
	w := barWidth(len(names) * len(groups))
	for gi, g := range groups {
		bc, err := plotter.NewBarChart(plotter.Values(zeroNaN(g.values)), w)
		if err != nil {
			return err
		}
		bc.Color = g.color
		bc.Offset = w * vg.Length(float64(gi)-float64(len(groups)-1)/2)
		bc.LineStyle.Width = 0
		p.Add(bc)
		p.Legend.Add(g.name, bc)
		if format != "" {
			if err := valueLabels(p, g.values, format, false, vg.Point{X: bc.Offset}); err != nil {
				return err
			}
		}
	}
	p.Legend.Top = true
	p.NominalX(names...)
	return nil
}

// valueLabels annotates bar tips at x = 0..n-1.
func valueLabels(p *plot.Plot, values []float64, format string, horizontal bool, offset vg.Point) error {
	var (
		xys    plotter.XYs
		labels []string
	)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if horizontal {
			xys = append(xys, plotter.XY{X: v, Y: float64(i)})
		} else {
			xys = append(xys, plotter.XY{X: float64(i), Y: v})
		}
		labels = append(labels, fmt.Sprintf(format, v))
	}
	if len(xys) == 0 {
		return nil
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Font.Size = vg.Points(8)
		if horizontal {
			l.TextStyle[i].XAlign = text.XLeft
			l.TextStyle[i].YAlign = text.YCenter
		} else {
			l.TextStyle[i].XAlign = text.XCenter
			l.TextStyle[i].YAlign = text.YBottom
		}
	}
	l.Offset = offset
	if horizontal {
		l.Offset.X += vg.Points(2)
	} else {
		l.Offset.Y += vg.Points(1)
	}
	p.Add(l)
	return nil
}

// countBars renders a frequency table as labelled bars.
func countBars(title, axis string, counts []table.ValueCount, c color.Color, horizontal bool) (*plot.Plot, error) {
	if len(counts) == 0 {
		return nil, nil
	}
	names := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, vc := range counts {
		names[i] = vc.Value
		values[i] = float64(vc.Count)
	}
	p := newPlot(title, "", "")
	p.Add(plotter.NewGrid())
	if err := singleBars(p, values, c, horizontal); err != nil {
		return nil, err
	}
	if err := valueLabels(p, values, "%.0f", horizontal, vg.Point{}); err != nil {
		return nil, err
	}
	if horizontal {
		p.X.Label.Text = axis
		p.NominalY(names...)
		p.X.Min = 0
		p.X.Max = maxOf(values...) * 1.15
	} else {
		p.Y.Label.Text = axis
		p.NominalX(names...)
		rotateX(p)
		p.Y.Min = 0
		p.Y.Max = maxOf(values...) * 1.15
	}
	return p, nil
}

// top returns at most n entries of counts.
func top(counts []table.ValueCount, n int) []table.ValueCount {
	if n > 0 && len(counts) > n {
		return counts[:n]
	}
	return counts
}

func zeroNaN(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}
