package charts

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// radarSeries is one closed outline on a radar chart, values in [0, 100].
type radarSeries struct {
	name   string
	values []float64
}

// radarChart draws axes evenly spaced counter-clockwise from three o'clock
// on a 0-100 radial scale with rings every 20.
func radarChart(title string, axes []string, data []radarSeries) (*plot.Plot, error) {
	n := len(axes)
	if n < 3 || len(data) == 0 {
		return nil, nil
	}
	p := blank(title)
	angle := func(i int) float64 { return 2 * math.Pi * float64(i) / float64(n) }
	at := func(i int, r float64) plotter.XY {
		return plotter.XY{X: r * math.Cos(angle(i)), Y: r * math.Sin(angle(i))}
	}

	gridStyle := func(l *plotter.Line) {
		l.LineStyle.Color = color.Gray{Y: 0xbb}
		l.LineStyle.Width = vg.Points(0.5)
	}
	for ring := 20.0; ring <= 100; ring += 20 {
		pts := make(plotter.XYs, 0, 73)
		for s := 0; s <= 72; s++ {
			a := 2 * math.Pi * float64(s) / 72
			pts = append(pts, plotter.XY{X: ring * math.Cos(a), Y: ring * math.Sin(a)})
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		gridStyle(l)
		p.Add(l)
	}
	axisEnds := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		l, err := plotter.NewLine(plotter.XYs{{}, at(i, 100)})
		if err != nil {
			return nil, err
		}
		gridStyle(l)
		p.Add(l)
		axisEnds[i] = at(i, 118)
	}

	for si, s := range data {
		pts := make(plotter.XYs, 0, n+1)
		for i := 0; i < n; i++ {
			v := 0.0
			if i < len(s.values) && !math.IsNaN(s.values[i]) {
				v = math.Max(0, math.Min(100, s.values[i]))
			}
			pts = append(pts, at(i, v))
		}
		c := plotutil.Color(si)
		fill, err := plotter.NewPolygon(pts)
		if err != nil {
			return nil, err
		}
		rgba := color.NRGBAModel.Convert(c).(color.NRGBA)
		fill.Color = alpha(rgba, 0.15)
		fill.LineStyle.Width = 0
		outline, err := plotter.NewLine(append(pts, pts[0]))
		if err != nil {
			return nil, err
		}
		outline.LineStyle.Color = c
		outline.LineStyle.Width = vg.Points(2)
		marks, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		marks.GlyphStyle.Color = c
		marks.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(fill, outline, marks)
		p.Legend.Add(s.name, outline, marks)
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: axisEnds, Labels: axes})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(9)
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(labels)
	p.Legend.Top = true
	p.X.Min, p.X.Max = -140, 140
	p.Y.Min, p.Y.Max = -140, 140
	return p, nil
}
