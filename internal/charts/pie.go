package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// wedge is one slice of a pie chart.
type wedge struct {
	label string
	value float64
}

// pieChart draws wedges counter-clockwise from twelve o'clock. explode pushes
// every wedge outward by that fraction of the radius; pct formats the share
// printed inside each wedge.
func pieChart(title string, wedges []wedge, colors []color.Color, explode float64, pct func(share float64) string) (*plot.Plot, error) {
	total := 0.0
	for _, w := range wedges {
		if w.value > 0 {
			total += w.value
		}
	}
	if total == 0 {
		return nil, nil
	}
	p := blank(title)
	var (
		outer, inner             plotter.XYs
		outerLabels, innerLabels []string
	)
	start := math.Pi / 2
	for i, w := range wedges {
		if w.value <= 0 {
			continue
		}
		sweep := 2 * math.Pi * w.value / total
		mid := start + sweep/2
		dx, dy := explode*math.Cos(mid), explode*math.Sin(mid)

		pts := plotter.XYs{{X: dx, Y: dy}}
		steps := max(2, int(math.Ceil(sweep/(math.Pi/90))))
		for s := 0; s <= steps; s++ {
			a := start + sweep*float64(s)/float64(steps)
			pts = append(pts, plotter.XY{X: dx + math.Cos(a), Y: dy + math.Sin(a)})
		}
		poly, err := plotter.NewPolygon(pts)
		if err != nil {
			return nil, err
		}
		poly.Color = pick(colors, i)
		poly.LineStyle.Color = color.White
		poly.LineStyle.Width = vg.Points(1)
		p.Add(poly)

		outer = append(outer, plotter.XY{X: dx + 1.18*math.Cos(mid), Y: dy + 1.18*math.Sin(mid)})
		outerLabels = append(outerLabels, w.label)
		inner = append(inner, plotter.XY{X: dx + 0.6*math.Cos(mid), Y: dy + 0.6*math.Sin(mid)})
		innerLabels = append(innerLabels, pct(100*w.value/total))
		start += sweep
	}

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: outer, Labels: outerLabels})
	if err != nil {
		return nil, err
	}
	for i := range names.TextStyle {
		names.TextStyle[i].Font.Size = vg.Points(10)
		names.TextStyle[i].XAlign = text.XCenter
		names.TextStyle[i].YAlign = text.YCenter
	}
	shares, err := plotter.NewLabels(plotter.XYLabels{XYs: inner, Labels: innerLabels})
	if err != nil {
		return nil, err
	}
	for i := range shares.TextStyle {
		shares.TextStyle[i].Font.Size = vg.Points(10)
		shares.TextStyle[i].Color = color.White
		shares.TextStyle[i].XAlign = text.XCenter
		shares.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(names, shares)

	lim := 1.45 + explode
	p.X.Min, p.X.Max = -lim, lim
	p.Y.Min, p.Y.Max = -lim, lim
	return p, nil
}

func percent(share float64) string { return fmt.Sprintf("%.1f%%", share) }
