package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/dqreport/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultDatasets is the fixed catalog analyzed when no list is configured.
var DefaultDatasets = []string{"field", "manufacturing", "sales", "testing"}

// Global configuration structure.
type Global struct {
	DataDir        string   `mapstructure:"data_dir" yaml:"data_dir"`
	OutputDir      string   `mapstructure:"output_dir" yaml:"output_dir"`
	VizDir         string   `mapstructure:"viz_dir" yaml:"viz_dir"`
	Datasets       []string `mapstructure:"datasets" yaml:"datasets"`
	RawPattern     string   `mapstructure:"raw_pattern" yaml:"raw_pattern"`
	CleanedPattern string   `mapstructure:"cleaned_pattern" yaml:"cleaned_pattern"`

	// Chart rendering
	HistBins        int `mapstructure:"hist_bins" yaml:"hist_bins"`
	MaxPanels       int `mapstructure:"max_panels" yaml:"max_panels"`
	TopCategories   int `mapstructure:"top_categories" yaml:"top_categories"`
	HeatmapMaxRows  int `mapstructure:"heatmap_max_rows" yaml:"heatmap_max_rows"`
	ChartDPI        int `mapstructure:"chart_dpi" yaml:"chart_dpi"`
	RadarRecordBase int `mapstructure:"radar_record_base" yaml:"radar_record_base"`

	// Insight thresholds
	ExcellentQuality       float64 `mapstructure:"excellent_quality" yaml:"excellent_quality"`
	SignificantImprovement float64 `mapstructure:"significant_improvement" yaml:"significant_improvement"`
	MinimalLossPct         float64 `mapstructure:"minimal_loss_pct" yaml:"minimal_loss_pct"`

	WriteWorkbook bool `mapstructure:"write_workbook" yaml:"write_workbook"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dqreport/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) (string, error) {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".dqreport")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// Load loads configuration from file, env, and defaults.
// The file is cfgFile when set, else the nearest dqreport.yaml at or above
// the working directory, else ~/.dqreport/config.yaml.
// Precedence: env > config file > defaults. Flag overrides are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DQREPORT")
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("output_dir", ".")
	v.SetDefault("viz_dir", "visualizations")
	v.SetDefault("datasets", DefaultDatasets)
	v.SetDefault("raw_pattern", filepath.Join("raw", "%s.csv"))
	v.SetDefault("cleaned_pattern", filepath.Join("cleaned", "cleaned_%s.csv"))
	v.SetDefault("hist_bins", 30)
	v.SetDefault("max_panels", 6)
	v.SetDefault("top_categories", 10)
	v.SetDefault("heatmap_max_rows", 1000)
	v.SetDefault("chart_dpi", 150)
	v.SetDefault("radar_record_base", 0)
	v.SetDefault("excellent_quality", 95.0)
	v.SetDefault("significant_improvement", 5.0)
	v.SetDefault("minimal_loss_pct", 5.0)
	v.SetDefault("write_workbook", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else if found, err := utils.FindUp("", "dqreport.yaml"); err == nil {
		v.SetConfigFile(found)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", found, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".dqreport"))
		}
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Datasets) == 0 {
		c.Datasets = append([]string(nil), DefaultDatasets...)
	}
	return &c, nil
}

// Default returns the built-in configuration without consulting env or files.
func Default() *Global {
	return &Global{
		DataDir:                "data",
		OutputDir:              ".",
		VizDir:                 "visualizations",
		Datasets:               append([]string(nil), DefaultDatasets...),
		RawPattern:             filepath.Join("raw", "%s.csv"),
		CleanedPattern:         filepath.Join("cleaned", "cleaned_%s.csv"),
		HistBins:               30,
		MaxPanels:              6,
		TopCategories:          10,
		HeatmapMaxRows:         1000,
		ChartDPI:               150,
		ExcellentQuality:       95,
		SignificantImprovement: 5,
		MinimalLossPct:         5,
		WriteWorkbook:          true,
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// VizPath resolves the visualization directory; relative paths live under OutputDir.
func (c *Global) VizPath() string {
	if filepath.IsAbs(c.VizDir) {
		return c.VizDir
	}
	return filepath.Join(c.OutputDir, c.VizDir)
}
