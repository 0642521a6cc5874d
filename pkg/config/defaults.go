package config

import (
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/mindiv/pkg/checkpoint"
	"github.com/Sumatoshi-tech/mindiv/pkg/driver"
)

// Search defaults.
const (
	DefaultStart           = 1
	DefaultEnd             = 100
	DefaultWorkers         = 0
	DefaultMethod          = "auto"
	DefaultRules           = true
	DefaultCrossCheck      = false
	DefaultContinueOnError = false
)

// Brute-force defaults.
const (
	DefaultCacheSize = "30M"
	DefaultBloom     = false
	DefaultLimit     = 0

	// maxCacheEntries caps the cache at 1G entries.
	maxCacheEntries = 1 << 30
)

// Output defaults.
const (
	DefaultLogPath    = "Un.txt"
	DefaultFormat     = "console"
	DefaultTimestamps = false
)

// Checkpoint defaults.
const (
	DefaultCheckpointEnabled   = true
	DefaultCheckpointResume    = true
	DefaultCheckpointClearPrev = false
	DefaultCheckpointInterval  = driver.DefaultCheckpointInterval
	DefaultCheckpointMaxAge    = checkpoint.DefaultMaxAge
)

// Telemetry defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("search.start", DefaultStart)
	viperCfg.SetDefault("search.end", DefaultEnd)
	viperCfg.SetDefault("search.workers", DefaultWorkers)
	viperCfg.SetDefault("search.method", DefaultMethod)
	viperCfg.SetDefault("search.rules", DefaultRules)
	viperCfg.SetDefault("search.cross_check", DefaultCrossCheck)
	viperCfg.SetDefault("search.continue_on_error", DefaultContinueOnError)

	viperCfg.SetDefault("bruteforce.cache_size", DefaultCacheSize)
	viperCfg.SetDefault("bruteforce.bloom", DefaultBloom)
	viperCfg.SetDefault("bruteforce.limit", DefaultLimit)

	viperCfg.SetDefault("output.log_path", DefaultLogPath)
	viperCfg.SetDefault("output.format", DefaultFormat)
	viperCfg.SetDefault("output.timestamps", DefaultTimestamps)

	viperCfg.SetDefault("checkpoint.enabled", DefaultCheckpointEnabled)
	viperCfg.SetDefault("checkpoint.dir", checkpoint.DefaultDir())
	viperCfg.SetDefault("checkpoint.resume", DefaultCheckpointResume)
	viperCfg.SetDefault("checkpoint.clear_prev", DefaultCheckpointClearPrev)
	viperCfg.SetDefault("checkpoint.interval", DefaultCheckpointInterval)
	viperCfg.SetDefault("checkpoint.max_age", DefaultCheckpointMaxAge)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.metrics_addr", "")
	viperCfg.SetDefault("telemetry.log_level", DefaultLogLevel)
	viperCfg.SetDefault("telemetry.log_json", DefaultLogJSON)
}

