package charts

import (
	"fmt"
	"image/color"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// binRange spans every value of every sample; a degenerate range is widened
// by half a unit on each side.
func binRange(samples ...[]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) {
		return 0, 0, false
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return lo, hi, true
}

// histogram bins vals into n equal-width bins over [lo, hi]; the last bin is closed.
func histogram(vals []float64, n int, lo, hi float64, fill color.Color) *plotter.Histogram {
	if n < 1 {
		n = 1
	}
	width := (hi - lo) / float64(n)
	bins := make([]plotter.HistogramBin, n)
	for i := range bins {
		bins[i].Min = lo + float64(i)*width
		bins[i].Max = lo + float64(i+1)*width
	}
	for _, v := range vals {
		if v < lo || v > hi {
			continue
		}
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Weight++
	}
	ls := plotter.DefaultLineStyle
	ls.Width = vg.Points(0.5)
	return &plotter.Histogram{Bins: bins, Width: width, FillColor: fill, LineStyle: ls}
}

func peak(h *plotter.Histogram) float64 {
	m := 0.0
	for _, b := range h.Bins {
		m = math.Max(m, b.Weight)
	}
	return m
}

// histPlot draws a single-sample histogram, optionally with dashed mean and
// median markers labelled through format.
func histPlot(title, xlabel string, vals []float64, bins int, fill color.Color, markers bool, format string) (*plot.Plot, error) {
	vals = finite(vals)
	lo, hi, ok := binRange(vals)
	if !ok {
		return nil, nil
	}
	p := newPlot(title, xlabel, "Frequency")
	p.Add(plotter.NewGrid())
	h := histogram(vals, bins, lo, hi, fill)
	p.Add(h)
	if markers {
		mean, _ := stats.Mean(vals)
		median, _ := stats.Median(vals)
		top := peak(h)
		for _, m := range []struct {
			label string
			at    float64
			c     color.Color
		}{
			{"Mean: " + fmt.Sprintf(format, mean), mean, color.NRGBA{R: 0xff, A: 0xff}},
			{"Median: " + fmt.Sprintf(format, median), median, color.NRGBA{G: 0x80, A: 0xff}},
		} {
			l, err := vline(m.at, 0, top, m.c)
			if err != nil {
				return nil, err
			}
			p.Add(l)
			p.Legend.Add(m.label, l)
		}
		p.Legend.Top = true
	}
	p.Y.Min = 0
	return p, nil
}

func vline(x, y0, y1 float64, c color.Color) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{{X: x, Y: y0}, {X: x, Y: y1}})
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(2)
	l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	return l, nil
}

func hline(y, x0, x1 float64, c color.Color) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1)
	l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	return l, nil
}

// boxGroup is one box of a box plot panel.
type boxGroup struct {
	name   string
	values []float64
	fill   color.Color
}

// boxPlot draws one box per group at x = 0..n-1. Empty groups keep their
// slot but draw nothing.
func boxPlot(title, ylabel string, groups []boxGroup) (*plot.Plot, error) {
	p := newPlot(title, "", ylabel)
	p.Add(plotter.NewGrid())
	names := make([]string, len(groups))
	drawn := 0
	w := barWidth(len(groups))
	for i, g := range groups {
		names[i] = g.name
		vals := finite(g.values)
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(w, float64(i), plotter.Values(vals))
		if err != nil {
			return nil, err
		}
		b.FillColor = g.fill
		p.Add(b)
		drawn++
	}
	if drawn == 0 {
		return nil, nil
	}
	p.NominalX(names...)
	return p, nil
}

// iqrFilter keeps values inside the Tukey fence of vals.
func iqrFilter(vals []float64, lo, hi float64) []float64 {
	var out []float64
	for _, v := range vals {
		if v >= lo && v <= hi {
			out = append(out, v)
		}
	}
	return out
}
