package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/dqreport/internal/config"
	"github.com/KaramelBytes/dqreport/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagDataDir   string
	flagOutputDir string
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "dqreport",
	Short: "dqreport: data-quality reports for raw vs cleaned datasets",
	Long: `dqreport compares the raw and cleaned versions of the field, manufacturing,
sales and testing datasets. It writes per-table statistics (JSON, text and
XLSX), raw-vs-cleaned comparison charts, aggregate dashboards and a
templated insights document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is ./dqreport.yaml or ~/.dqreport/config.yaml)")
	f.BoolVar(&debug, "debug", false, "enable debug logging")
	f.StringVar(&flagDataDir, "data-dir", "", "directory holding the raw and cleaned tables (overrides config)")
	f.StringVar(&flagOutputDir, "output-dir", "", "directory for reports (overrides config)")
	f.StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	f.StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if f.Changed("output-dir") && flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
}
