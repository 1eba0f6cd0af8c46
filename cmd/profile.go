package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/dqreport/internal/analysis"
	"github.com/KaramelBytes/dqreport/internal/table"
	"github.com/KaramelBytes/dqreport/internal/utils"
	"github.com/spf13/cobra"
)

var (
	profOutputPath string
	profSampleRows int
	profQuiet      bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <files...>",
	Short: "Print a Markdown profile of one or more CSV/TSV/XLSX tables",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if profOutputPath != "" && len(files) > 1 {
			return fmt.Errorf("--output takes a single input file, got %d", len(files))
		}
		out := cmd.OutOrStdout()

		total := len(files)
		for i, path := range files {
			if total > 1 && !profQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := table.Load(path)
			if err != nil {
				return err
			}
			md := analysis.NewProfile(t, profSampleRows).Markdown()
			if profOutputPath != "" {
				if err := utils.SafeWriteFile(profOutputPath, []byte(md)); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(out, "✓ Wrote profile to %s\n", profOutputPath)
				continue
			}
			fmt.Fprintln(out, md)
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileCmd.Flags().BoolVarP(&profQuiet, "quiet", "q", false, "suppress progress output")
}

