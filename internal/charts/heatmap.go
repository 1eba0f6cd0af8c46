package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// matrix is a row-major grid of cell values satisfying plotter.GridXYZ.
// Row 0 is drawn at the bottom.
type matrix [][]float64

func (m matrix) Dims() (c, r int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m[0]), len(m)
}
func (m matrix) Z(c, r int) float64 { return m[r][c] }
func (m matrix) X(c int) float64    { return float64(c) }
func (m matrix) Y(r int) float64    { return float64(r) }

// ramp is a linear palette between two colors.
type ramp []color.Color

func (r ramp) Colors() []color.Color { return r }

func newRamp(from, to color.NRGBA, n int) ramp {
	out := make(ramp, n)
	for i := range out {
		t := float64(i) / float64(max(n-1, 1))
		mix := func(a, b uint8) uint8 { return uint8(math.Round(float64(a) + t*(float64(b)-float64(a)))) }
		out[i] = color.NRGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 0xff}
	}
	return out
}

// missingPalette runs from present (pale) to missing (dark red).
var missingPalette = newRamp(hex("#ffffcc"), hex("#bd0026"), 11)

// correlationPalette is the diverging blue-red map over [-1, 1].
func correlationPalette() palette.Palette {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	return cm.Palette(255)
}

// heatLayer draws m with pal scaled to [lo, hi]. Grids smaller than 2×2 are
// drawn as individual cells since the heat map needs neighbours to size them.
func heatLayer(p *plot.Plot, m matrix, pal palette.Palette, lo, hi float64) error {
	cols, rows := m.Dims()
	if cols == 0 || rows == 0 {
		return nil
	}
	if cols >= 2 && rows >= 2 {
		hm := plotter.NewHeatMap(m, pal)
		hm.Min, hm.Max = lo, hi
		hm.NaN = noData
		p.Add(hm)
		return nil
	}
	colors := pal.Colors()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := float64(c), float64(r)
			poly, err := plotter.NewPolygon(plotter.XYs{
				{X: x - 0.5, Y: y - 0.5}, {X: x + 0.5, Y: y - 0.5},
				{X: x + 0.5, Y: y + 0.5}, {X: x - 0.5, Y: y + 0.5},
			})
			if err != nil {
				return err
			}
			poly.Color = shade(colors, m.Z(c, r), lo, hi)
			poly.LineStyle.Width = 0
			p.Add(poly)
		}
	}
	return nil
}

func shade(colors []color.Color, z, lo, hi float64) color.Color {
	if math.IsNaN(z) || len(colors) == 0 {
		return noData
	}
	t := 0.0
	if hi > lo {
		t = (z - lo) / (hi - lo)
	}
	t = math.Max(0, math.Min(1, t))
	return colors[int(math.Round(t*float64(len(colors)-1)))]
}

// annotate writes each finite cell value at its center.
func annotate(p *plot.Plot, m matrix, format string) error {
	var (
		xys    plotter.XYs
		labels []string
	)
	cols, rows := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			z := m.Z(c, r)
			if math.IsNaN(z) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			labels = append(labels, fmt.Sprintf(format, z))
		}
	}
	if len(xys) == 0 {
		return nil
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	size := vg.Points(math.Max(6, math.Min(11, 60/float64(max(cols, 1)))))
	for i := range l.TextStyle {
		l.TextStyle[i].Font.Size = size
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(l)
	return nil
}
