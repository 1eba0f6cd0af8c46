// Package charts renders the comparison charts and dashboards as PNG files.
package charts

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const titleBand = 0.5 * vg.Inch

// panel is one cell of a figure. A nil plot leaves the cell blank.
type panel struct {
	plot   *plot.Plot
	square bool // draw into the largest centered square of the cell
}

// figure is a grid of panels under a common title.
type figure struct {
	title      string
	rows, cols int
	width      vg.Length
	height     vg.Length
	panels     []panel // row-major
}

func newFigure(title string, rows, cols int, width, height vg.Length) *figure {
	return &figure{
		title:  title,
		rows:   rows,
		cols:   cols,
		width:  width,
		height: height,
		panels: make([]panel, rows*cols),
	}
}

// set places p at grid position (row, col).
func (f *figure) set(row, col int, p *plot.Plot) {
	f.panels[row*f.cols+col] = panel{plot: p}
}

func (f *figure) setSquare(row, col int, p *plot.Plot) {
	f.panels[row*f.cols+col] = panel{plot: p, square: true}
}

// add fills the next free cell in row-major order.
func (f *figure) add(p *plot.Plot) {
	for i := range f.panels {
		if f.panels[i].plot == nil {
			f.panels[i].plot = p
			return
		}
	}
}

// save renders the figure to a PNG file at the given resolution.
func (f *figure) save(path string, dpi int) error {
	img := vgimg.NewWith(vgimg.UseWH(f.width, f.height), vgimg.UseDPI(dpi))
	dc := draw.New(img)

	if f.title != "" {
		dc.FillText(text.Style{
			Font:    font.From(plot.DefaultFont, vg.Points(18)),
			XAlign:  text.XCenter,
			YAlign:  text.YCenter,
			Handler: plot.DefaultTextHandler,
		}, vg.Point{X: f.width / 2, Y: f.height - titleBand/2}, f.title)
		dc = draw.Crop(dc, 0, 0, 0, -titleBand)
	}

	tiles := draw.Tiles{
		Rows:      f.rows,
		Cols:      f.cols,
		PadX:      vg.Points(18),
		PadY:      vg.Points(18),
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(8),
		PadLeft:   vg.Points(8),
		PadRight:  vg.Points(8),
	}
	for r := 0; r < f.rows; r++ {
		for c := 0; c < f.cols; c++ {
			pn := f.panels[r*f.cols+c]
			if pn.plot == nil {
				continue
			}
			cell := tiles.At(dc, c, r)
			if pn.square {
				cell = squareOf(cell)
			}
			pn.plot.Draw(cell)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}

func squareOf(c draw.Canvas) draw.Canvas {
	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y
	switch {
	case w > h:
		d := (w - h) / 2
		return draw.Crop(c, d, -d, 0, 0)
	case h > w:
		d := (h - w) / 2
		return draw.Crop(c, 0, 0, d, -d)
	}
	return c
}

// gridRows returns the number of rows needed for n panels in cols columns.
func gridRows(n, cols int) int {
	return (n + cols - 1) / cols
}
