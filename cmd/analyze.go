package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/charts"
	cfgpkg "github.com/KaramelBytes/dqreport/internal/config"
	"github.com/KaramelBytes/dqreport/internal/dataset"
	"github.com/KaramelBytes/dqreport/internal/logging"
	"github.com/KaramelBytes/dqreport/internal/report"
	"github.com/spf13/cobra"
)

// analyzeOptions toggles the optional outputs of the analysis step.
type analyzeOptions struct {
	noCharts   bool
	noWorkbook bool
	quiet      bool
}

var anaOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute statistics for every dataset and write the reports and comparison charts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, err := runAnalyze(cmd.OutOrStdout(), current(), report.NewMeta(time.Now()), anaOpts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&anaOpts.noCharts, "no-charts", false, "skip the per-dataset comparison charts")
	analyzeCmd.Flags().BoolVar(&anaOpts.noWorkbook, "no-workbook", false, "skip the XLSX workbook report")
	analyzeCmd.Flags().BoolVarP(&anaOpts.quiet, "quiet", "q", false, "suppress per-dataset progress lines")
}

// current returns the loaded configuration, or the defaults when loading was skipped.
func current() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Default()
	}
	return cfg
}

func layoutOf(c *cfgpkg.Global) dataset.Layout {
	return dataset.Layout{DataDir: c.DataDir, RawPattern: c.RawPattern, CleanedPattern: c.CleanedPattern}
}

// runAnalyze loads every configured dataset, computes its statistics and
// writes the reports. A dataset that fails to load is reported and skipped;
// the run fails only when nothing could be analyzed.
func runAnalyze(out io.Writer, c *cfgpkg.Global, meta report.Meta, opts analyzeOptions) (analysis.Result, map[string]*dataset.Pair, error) {
	l := layoutOf(c)
	r := analysis.Result{}
	pairs := make(map[string]*dataset.Pair, len(c.Datasets))

	total := len(c.Datasets)
	for i, name := range c.Datasets {
		if !opts.quiet {
			fmt.Fprintf(out, "[%d/%d] Analyzing %s...\n", i+1, total, name)
		}
		p, err := dataset.Load(l, name)
		if err != nil {
			logging.Dataset(name, "").Warn("load failed", "err", err)
			fmt.Fprintf(out, "⚠ %s: %v\n", name, err)
		}
		pairs[name] = p

		ds := &analysis.DatasetStats{}
		for _, v := range []string{dataset.Raw, dataset.Cleaned} {
			t := p.Get(v)
			if t == nil {
				continue
			}
			st := analysis.Compute(t)
			logging.Dataset(name, v).Info("analyzed",
				"rows", st.Rows(), "cols", st.Cols(), "missing", st.TotalMissing, "quality", st.QualityScore)
			if v == dataset.Raw {
				ds.Raw = st
			} else {
				ds.Cleaned = st
			}
		}
		if ds.Raw == nil && ds.Cleaned == nil {
			continue
		}
		r[name] = ds
	}
	if len(r) == 0 {
		return nil, pairs, fmt.Errorf("no dataset could be loaded from %s", c.DataDir)
	}

	order := c.Datasets
	jsonPath := filepath.Join(c.OutputDir, report.JSONFile)
	if err := report.WriteJSON(jsonPath, r); err != nil {
		return nil, pairs, err
	}
	fmt.Fprintf(out, "✓ Wrote %s\n", jsonPath)

	textPath := filepath.Join(c.OutputDir, report.TextFile)
	if err := report.WriteText(textPath, r, order, meta); err != nil {
		return nil, pairs, err
	}
	fmt.Fprintf(out, "✓ Wrote %s\n", textPath)

	if err := report.WriteMeta(filepath.Join(c.OutputDir, report.MetaFile), meta); err != nil {
		return nil, pairs, err
	}

	if c.WriteWorkbook && !opts.noWorkbook {
		xlsxPath := filepath.Join(c.OutputDir, report.WorkbookFile)
		if err := report.WriteWorkbook(xlsxPath, r, order); err != nil {
			return nil, pairs, err
		}
		fmt.Fprintf(out, "✓ Wrote %s\n", xlsxPath)
	}

	if opts.noCharts {
		return r, pairs, nil
	}
	opt := charts.FromConfig(c)
	for _, name := range r.Names(order) {
		if !pairs[name].Complete() {
			fmt.Fprintf(out, "⚠ Skipping comparison charts for %s: both raw and cleaned versions are required\n", name)
			continue
		}
		printCharts(out, charts.RenderComparison(pairs[name], r[name], opt, c.VizPath()), c.VizPath())
	}
	return r, pairs, nil
}

// printCharts summarizes chart results on the console.
func printCharts(out io.Writer, results []charts.Result, dir string) {
	written := 0
	for _, res := range results {
		switch {
		case res.Err == nil:
			written++
		case res.Skipped():
			fmt.Fprintf(out, "⚠ Skipped %s: %v\n", res.Chart, res.Err)
		default:
			fmt.Fprintf(out, "⚠ Failed %s: %v\n", res.Chart, res.Err)
		}
	}
	if written > 0 {
		fmt.Fprintf(out, "✓ Wrote %d chart(s) to %s\n", written, dir)
	}
}
