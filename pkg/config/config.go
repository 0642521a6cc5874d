// Package config loads mindiv configuration from .mindiv.yaml, MINDIV_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

// Sentinel validation errors.
var (
	ErrInvalidWorkers   = errors.New("workers must not be negative")
	ErrInvalidRange     = errors.New("invalid range")
	ErrInvalidCacheSize = errors.New("invalid brute force cache size")
	ErrInvalidMethod    = errors.New("invalid search method")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidInterval  = errors.New("checkpoint interval must be positive")
	ErrInvalidLogLevel  = errors.New("invalid log level")
)

// File lookup.
const (
	configName = ".mindiv"
	configType = "yaml"
	envPrefix  = "MINDIV"
)

// Output formats accepted by output.format.
var outputFormats = []string{"console", "text", "table", "csv", "json", "yaml"}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Config holds all mindiv configuration.
type Config struct {
	Search     SearchConfig     `mapstructure:"search"`
	BruteForce BruteForceConfig `mapstructure:"bruteforce"`
	Output     OutputConfig     `mapstructure:"output"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// SearchConfig selects the range and the solving method.
type SearchConfig struct {
	Start int `mapstructure:"start"`
	// End of zero runs until interrupted.
	End             int    `mapstructure:"end"`
	Workers         int    `mapstructure:"workers"`
	Method          string `mapstructure:"method"`
	Rules           bool   `mapstructure:"rules"`
	CrossCheck      bool   `mapstructure:"cross_check"`
	ContinueOnError bool   `mapstructure:"continue_on_error"`
}

// BruteForceConfig tunes the brute-force searcher.
type BruteForceConfig struct {
	// CacheSize accepts SI suffixes, e.g. "30M".
	CacheSize string `mapstructure:"cache_size"`
	Bloom     bool   `mapstructure:"bloom"`
	// Limit of zero means unlimited.
	Limit uint64 `mapstructure:"limit"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	// LogPath is the result log file; empty disables it.
	LogPath    string `mapstructure:"log_path"`
	Format     string `mapstructure:"format"`
	Timestamps bool   `mapstructure:"timestamps"`
}

// CheckpointConfig controls resumable runs.
type CheckpointConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Dir       string        `mapstructure:"dir"`
	Resume    bool          `mapstructure:"resume"`
	ClearPrev bool          `mapstructure:"clear_prev"`
	Interval  int           `mapstructure:"interval"`
	MaxAge    time.Duration `mapstructure:"max_age"`
}

// TelemetryConfig controls logging, tracing and metrics export.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
	LogLevel     string  `mapstructure:"log_level"`
	LogJSON      bool    `mapstructure:"log_json"`
}

// LoadConfig reads configPath, or .mindiv.yaml from the working directory or
// $HOME when configPath is empty. A missing default file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType(configType)
		viperCfg.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Validate checks every section and joins all problems found.
func (c *Config) Validate() error {
	var errs []error

	if c.Search.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Search.Workers))
	}

	if c.Search.Start < 1 || (c.Search.End != 0 && c.Search.End < c.Search.Start) {
		errs = append(errs, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, c.Search.Start, c.Search.End))
	}

	if _, err := sequence.ParseStrategy(c.Search.Method); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidMethod, err))
	}

	if _, err := c.BruteForce.CacheEntries(); err != nil {
		errs = append(errs, err)
	}

	if !slices.Contains(outputFormats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("%w: %q (want one of %s)", ErrInvalidFormat, c.Output.Format, strings.Join(outputFormats, ", ")))
	}

	if c.Checkpoint.Enabled && c.Checkpoint.Interval <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidInterval, c.Checkpoint.Interval))
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Telemetry.LogLevel)) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Telemetry.LogLevel))
	}

	return errors.Join(errs...)
}

// CacheEntries parses CacheSize. "0" disables the cache.
func (b BruteForceConfig) CacheEntries() (int, error) {
	value, _, err := humanize.ParseSI(strings.TrimSpace(b.CacheSize))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidCacheSize, b.CacheSize, err)
	}

	if value < 0 || value > float64(maxCacheEntries) || value != float64(int64(value)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCacheSize, b.CacheSize)
	}

	return int(value), nil
}
