package cmd

import (
	"time"

	"github.com/KaramelBytes/dqreport/internal/report"
	"github.com/spf13/cobra"
)

var runOpts analyzeOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run analyze and visualize in one pass",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := current()
		out := cmd.OutOrStdout()
		meta := report.NewMeta(time.Now())
		r, pairs, err := runAnalyze(out, c, meta, runOpts)
		if err != nil {
			return err
		}
		return runVisualize(out, c, meta, r, pairs)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runOpts.noWorkbook, "no-workbook", false, "skip the XLSX workbook report")
	runCmd.Flags().BoolVarP(&runOpts.quiet, "quiet", "q", false, "suppress per-dataset progress lines")
}
