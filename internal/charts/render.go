package charts

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/KaramelBytes/dqreport/internal/config"
	"github.com/KaramelBytes/dqreport/internal/utils"
)

// ErrSkipped marks a chart that had nothing to draw.
var ErrSkipped = errors.New("chart skipped")

func skipped(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrSkipped, fmt.Sprintf(format, a...))
}

// Options tunes rendering.
type Options struct {
	HistBins        int
	MaxPanels       int
	TopCategories   int
	HeatmapMaxRows  int
	DPI             int
	RadarRecordBase int      // 0 normalizes record counts to the largest cleaned dataset
	Order           []string // dataset order on aggregate charts
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return FromConfig(config.Default())
}

// FromConfig copies the chart settings of c.
func FromConfig(c *config.Global) Options {
	return Options{
		HistBins:        c.HistBins,
		MaxPanels:       c.MaxPanels,
		TopCategories:   c.TopCategories,
		HeatmapMaxRows:  c.HeatmapMaxRows,
		DPI:             c.ChartDPI,
		RadarRecordBase: c.RadarRecordBase,
		Order:           c.Datasets,
	}
}

func (o Options) bins() int {
	if o.HistBins < 1 {
		return 30
	}
	return o.HistBins
}

func (o Options) panels() int {
	if o.MaxPanels < 1 {
		return 6
	}
	return o.MaxPanels
}

func (o Options) dpi() int {
	if o.DPI < 1 {
		return 150
	}
	return o.DPI
}

// Result reports the outcome of one chart file.
type Result struct {
	Chart string
	Path  string
	Err   error // nil on success; wraps ErrSkipped when there was nothing to draw
}

// Skipped reports whether the chart was intentionally not drawn.
func (r Result) Skipped() bool { return errors.Is(r.Err, ErrSkipped) }

type chart struct {
	file  string
	build func() (*figure, error)
}

// render draws each chart independently; a failure is logged and the
// remaining charts continue.
func render(dir string, dpi int, log *slog.Logger, charts []chart) []Result {
	out := make([]Result, 0, len(charts))
	if err := utils.EnsureDir(dir); err != nil {
		for _, c := range charts {
			out = append(out, Result{Chart: c.file, Err: fmt.Errorf("create %s: %w", dir, err)})
		}
		return out
	}
	for _, c := range charts {
		path := filepath.Join(dir, c.file)
		res := Result{Chart: c.file, Path: path, Err: renderOne(path, dpi, c.build)}
		switch {
		case res.Err == nil:
			log.Info("chart written", "chart", c.file, "path", path)
		case res.Skipped():
			log.Warn("chart skipped", "chart", c.file, "reason", res.Err)
			res.Path = ""
		default:
			log.Error("chart failed", "chart", c.file, "err", res.Err)
			res.Path = ""
		}
		out = append(out, res)
	}
	return out
}

func renderOne(path string, dpi int, build func() (*figure, error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render %s: %v", filepath.Base(path), r)
		}
	}()
	f, err := build()
	if err != nil {
		return err
	}
	if f == nil {
		return skipped("no panels")
	}
	return f.save(path, dpi)
}
