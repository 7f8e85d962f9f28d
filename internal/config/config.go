package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/corpuskit/corpuskey/internal/timebin"
)

// Config represents the complete pipeline configuration
type Config struct {
	Columns ColumnsConfig `mapstructure:"columns"`
	Pairing PairingConfig `mapstructure:"pairing"`
	Keyness KeynessConfig `mapstructure:"keyness"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ColumnsConfig names the columns of the input and output CSV files
type ColumnsConfig struct {
	Time       string `mapstructure:"time"`
	Label      string `mapstructure:"label"`
	TextSuffix string `mapstructure:"text_suffix"`
	TimeSuffix string `mapstructure:"time_suffix"`
	Separator  string `mapstructure:"separator"`
	PairID     string `mapstructure:"pair_id"`
}

// PairingConfig holds corpus alignment configuration
type PairingConfig struct {
	Corpora   []string `mapstructure:"corpora"`
	Unit      string   `mapstructure:"unit"`
	Interval  int      `mapstructure:"interval"`
	Hierarchy []string `mapstructure:"hierarchy"`
	Seed      int64    `mapstructure:"seed"`
}

// KeynessConfig holds keyness analysis configuration
type KeynessConfig struct {
	Target           string `mapstructure:"target"`
	Statistic        string `mapstructure:"statistic"`
	Unit             string `mapstructure:"unit"`
	Interval         int    `mapstructure:"interval"`
	BinLayout        string `mapstructure:"bin_layout"`
	IncludeBinCounts bool   `mapstructure:"include_bin_counts"`
	Signed           bool   `mapstructure:"signed"`
	NaNForZero       bool   `mapstructure:"nan_for_zero"`
	CacheThreshold   int    `mapstructure:"cache_threshold"`
	IncludePValues   bool   `mapstructure:"include_p_values"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and environment variables.
// An empty path skips the file and uses defaults plus environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("CORPUSKEY")
	v.AutomaticEnv()

	// Read config file when one was given
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Column defaults
	v.SetDefault("columns.time", "tweet.created_at")
	v.SetDefault("columns.label", "label")
	v.SetDefault("columns.text_suffix", "tweet.text")
	v.SetDefault("columns.time_suffix", "tweet.created_at")
	v.SetDefault("columns.separator", "_")
	v.SetDefault("columns.pair_id", "pair_id")

	// Pairing defaults
	v.SetDefault("pairing.corpora", []string{"study", "reference"})
	v.SetDefault("pairing.unit", "hours")
	v.SetDefault("pairing.interval", 1)
	v.SetDefault("pairing.seed", 0)

	// Keyness defaults
	v.SetDefault("keyness.target", "study")
	v.SetDefault("keyness.statistic", "g")
	v.SetDefault("keyness.unit", "months")
	v.SetDefault("keyness.interval", 1)
	v.SetDefault("keyness.signed", true)
	v.SetDefault("keyness.cache_threshold", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate column config
	if c.Columns.Time == "" {
		return fmt.Errorf("columns.time is required")
	}
	if c.Columns.Separator == "" {
		return fmt.Errorf("columns.separator is required")
	}
	if c.Columns.PairID == "" {
		return fmt.Errorf("columns.pair_id is required")
	}

	// Validate pairing config
	if len(c.Pairing.Corpora) != 2 {
		return fmt.Errorf("pairing.corpora must name exactly two corpora, study first")
	}
	if _, err := timebin.ParseUnit(c.Pairing.Unit); err != nil {
		return fmt.Errorf("pairing.unit: %w", err)
	}
	if c.Pairing.Interval < 1 {
		return fmt.Errorf("pairing.interval must be at least 1")
	}

	// Validate keyness config
	if c.Keyness.Statistic != "g" {
		return fmt.Errorf("keyness.statistic must be %q", "g")
	}
	found := false
	for _, name := range c.Pairing.Corpora {
		if name == c.Keyness.Target {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("keyness.target %q is not one of pairing.corpora", c.Keyness.Target)
	}
	if _, err := timebin.ParseUnit(c.Keyness.Unit); err != nil {
		return fmt.Errorf("keyness.unit: %w", err)
	}
	if c.Keyness.Interval < 1 {
		return fmt.Errorf("keyness.interval must be at least 1")
	}

	// Validate logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
