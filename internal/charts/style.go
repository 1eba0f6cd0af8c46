package charts

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Named colors of the dashboards.
var (
	gold      = hex("#d4af37")
	navy      = hex("#1a1a2e")
	green     = hex("#10b981")
	red       = hex("#ef4444")
	amber     = hex("#f59e0b")
	blue      = hex("#3b82f6")
	rawRed    = hex("#e74c3c")
	cleanGrn  = hex("#27ae60")
	countBlue = hex("#3498db")
	countGrn  = hex("#2ecc71")
	steel     = hex("#4682b4")
	noData    = color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
)

func hex(s string) color.NRGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func alpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(a * 255))
	return c
}

// pick returns colors[i] or a default palette color beyond the list.
func pick(colors []color.Color, i int) color.Color {
	if i < len(colors) {
		return colors[i]
	}
	return plotutil.Color(i)
}

// newPlot returns a plot with the shared title and axis styling.
func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(13)
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	return p
}

// blank is a panel with hidden axes, used for notes and text summaries.
func blank(title string) *plot.Plot {
	p := newPlot(title, "", "")
	p.HideAxes()
	return p
}

// notice is a blank panel carrying a single centered message.
func notice(title, msg string) *plot.Plot {
	p := blank(title)
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	if l, err := plotter.NewLabels(plotter.XYLabels{XYs: plotter.XYs{{X: 0.5, Y: 0.5}}, Labels: []string{msg}}); err == nil {
		l.TextStyle[0].Font.Size = vg.Points(14)
		l.TextStyle[0].XAlign = text.XCenter
		l.TextStyle[0].YAlign = text.YCenter
		p.Add(l)
	}
	return p
}

// textPanel writes lines top to bottom in a monospaced face.
func textPanel(title string, lines []string) *plot.Plot {
	p := blank(title)
	n := float64(len(lines))
	xys := make(plotter.XYs, len(lines))
	for i := range lines {
		xys[i] = plotter.XY{X: 0, Y: n - float64(i)}
	}
	if l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: lines}); err == nil {
		for i := range l.TextStyle {
			l.TextStyle[i].Font = font.Font{Typeface: "Liberation", Variant: "Mono", Size: vg.Points(10)}
			l.TextStyle[i].XAlign = text.XLeft
			l.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(l)
	}
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, n+1
	return p
}

// rotateX tilts nominal x labels so long category names stay legible.
func rotateX(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}

func finite(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func maxOf(vals ...float64) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals ...float64) float64 {
	m := math.Inf(1)
	for _, v := range vals {
		if v < m {
			m = v
		}
	}
	return m
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
