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
	"github.com/KaramelBytes/dqreport/internal/insights"
	"github.com/KaramelBytes/dqreport/internal/report"
	"github.com/spf13/cobra"
)

var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Render the aggregate dashboards and insights from a previous analyze run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := current()
		out := cmd.OutOrStdout()
		r, err := report.ReadJSON(filepath.Join(c.OutputDir, report.JSONFile))
		if err != nil {
			return fmt.Errorf("%w (run 'dqreport analyze' first)", err)
		}
		// Dashboards read rows, so the tables are loaded again.
		loaded, err := dataset.LoadAll(layoutOf(c), r.Names(c.Datasets))
		if err != nil {
			fmt.Fprintf(out, "⚠ Some tables could not be reloaded: %v\n", err)
		}
		// Reuse the analyze run id so every output of one run shares it.
		meta, err := report.ReadMeta(filepath.Join(c.OutputDir, report.MetaFile))
		if err != nil {
			fmt.Fprintf(out, "⚠ No run record, stamping a new run id: %v\n", err)
			meta = report.NewMeta(time.Now())
		}
		return runVisualize(out, c, meta, r, dataset.Index(loaded))
	},
}

func init() {
	rootCmd.AddCommand(visualizeCmd)
}

// runVisualize draws the dashboards and writes insights.json.
func runVisualize(out io.Writer, c *cfgpkg.Global, meta report.Meta, r analysis.Result, pairs map[string]*dataset.Pair) error {
	dir := c.VizPath()
	printCharts(out, charts.RenderDashboards(r, pairs, charts.FromConfig(c), dir), dir)

	th := insights.Thresholds{
		ExcellentQuality:       c.ExcellentQuality,
		SignificantImprovement: c.SignificantImprovement,
		MinimalLossPct:         c.MinimalLossPct,
	}
	rep := insights.Generate(r, c.Datasets, th, meta)
	path := filepath.Join(dir, insights.FileName)
	if err := insights.Write(path, rep); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Wrote %s\n", path)
	for _, f := range rep.Overall.KeyFindings {
		fmt.Fprintf(out, "  • %s\n", f)
	}
	return nil
}
