package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mindiv/internal/render"
	"github.com/Sumatoshi-tech/mindiv/pkg/bruteforce"
	"github.com/Sumatoshi-tech/mindiv/pkg/config"
	"github.com/Sumatoshi-tech/mindiv/pkg/observability"
	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
	"github.com/Sumatoshi-tech/mindiv/pkg/version"
)

// Solver flag names shared by solve, search and verify.
const (
	flagMethod     = "method"
	flagNoRules    = "no-rules"
	flagCrossCheck = "cross-check"
	flagCacheSize  = "cache-size"
	flagBloom      = "bloom"
	flagLimit      = "limit"
)

// solverFlags holds the flag values that override the search and
// bruteforce config sections.
type solverFlags struct {
	method     string
	noRules    bool
	crossCheck bool
	cacheSize  string
	bloom      bool
	limit      uint64
}

func (sf *solverFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sf.method, flagMethod, config.DefaultMethod, "solving method: auto, enumeration, bruteforce")
	cmd.Flags().BoolVar(&sf.noRules, flagNoRules, false, "disable the closed-form rules")
	cmd.Flags().BoolVar(&sf.crossCheck, flagCrossCheck, false, "re-derive rule results by enumeration")
	cmd.Flags().StringVar(&sf.cacheSize, flagCacheSize, config.DefaultCacheSize, "brute-force cache entries (e.g. 30M, 0 disables)")
	cmd.Flags().BoolVar(&sf.bloom, flagBloom, false, "put a Bloom filter in front of the brute-force cache")
	cmd.Flags().Uint64Var(&sf.limit, flagLimit, 0, "stop brute-force scans at candidates above this value (0 = unlimited)")
}

func (sf *solverFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	override(cmd, flagMethod, &cfg.Search.Method, sf.method)
	override(cmd, flagNoRules, &cfg.Search.Rules, !sf.noRules)
	override(cmd, flagCrossCheck, &cfg.Search.CrossCheck, sf.crossCheck)
	override(cmd, flagCacheSize, &cfg.BruteForce.CacheSize, sf.cacheSize)
	override(cmd, flagBloom, &cfg.BruteForce.Bloom, sf.bloom)
	override(cmd, flagLimit, &cfg.BruteForce.Limit, sf.limit)
}

// override copies value into dst when the named flag was set explicitly.
func override[T any](cmd *cobra.Command, name string, dst *T, value T) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}

// loadConfig reads the config file named by --config and applies the
// persistent flags. Callers apply their own flags and call Validate.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("read --%s: %w", flagConfig, err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString(flagLogLevel); cmd.Flags().Changed(flagLogLevel) {
		cfg.Telemetry.LogLevel = level
	}

	if logJSON, _ := cmd.Flags().GetBool(flagLogJSON); cmd.Flags().Changed(flagLogJSON) {
		cfg.Telemetry.LogJSON = logJSON
	}

	if noColor, _ := cmd.Flags().GetBool(flagNoColor); noColor {
		render.SetColor(false)
	}

	return cfg, nil
}

// initObservability builds the providers for cfg. registry may be nil.
func initObservability(
	cfg *config.Config, mode observability.AppMode, registry *prometheus.Registry, logOut io.Writer,
) (observability.Providers, error) {
	level, err := observability.ParseLogLevel(cfg.Telemetry.LogLevel)
	if err != nil {
		return observability.Providers{}, err
	}

	oc := observability.DefaultConfig()
	oc.ServiceVersion = version.Version
	oc.Mode = mode
	oc.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	oc.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	oc.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	oc.SampleRatio = cfg.Telemetry.SampleRatio
	oc.Prometheus = registry
	oc.LogLevel = level
	oc.LogJSON = cfg.Telemetry.LogJSON
	oc.LogWriter = logOut

	providers, err := observability.Init(oc)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}

// shutdown flushes providers, logging rather than returning failures.
func shutdown(cmd *cobra.Command, providers observability.Providers) {
	err := providers.Shutdown(cmd.Context())
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// newSolver builds the solver described by the search and bruteforce sections.
func newSolver(cfg *config.Config, logger *slog.Logger) (*sequence.Solver, error) {
	strategy, err := sequence.ParseStrategy(cfg.Search.Method)
	if err != nil {
		return nil, err
	}

	entries, err := cfg.BruteForce.CacheEntries()
	if err != nil {
		return nil, err
	}

	searcher := bruteforce.New(
		bruteforce.WithCacheSize(entries),
		bruteforce.WithBloomFilter(cfg.BruteForce.Bloom),
		bruteforce.WithLimit(cfg.BruteForce.Limit),
		bruteforce.WithLogger(logger),
	)

	return sequence.New(
		sequence.WithStrategy(strategy),
		sequence.WithRules(cfg.Search.Rules),
		sequence.WithCrossCheck(cfg.Search.CrossCheck),
		sequence.WithSearcher(searcher),
		sequence.WithLogger(logger),
	), nil
}

// readLog reads a result log file; "-" reads stdin.
func readLog(cmd *cobra.Command, path string) ([]resultlog.Record, error) {
	if path == "-" {
		records, err := resultlog.Read(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}

		return records, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	records, err := resultlog.Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return records, nil
}

// createOutput opens path for writing; empty or "-" is stdout.
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}

	return f, f.Close, nil
}
