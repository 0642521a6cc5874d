package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mindiv/internal/render"
	"github.com/Sumatoshi-tech/mindiv/pkg/bruteforce"
	"github.com/Sumatoshi-tech/mindiv/pkg/checkpoint"
	"github.com/Sumatoshi-tech/mindiv/pkg/config"
	"github.com/Sumatoshi-tech/mindiv/pkg/driver"
	"github.com/Sumatoshi-tech/mindiv/pkg/export"
	"github.com/Sumatoshi-tech/mindiv/pkg/observability"
	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

const logFilePerm = 0o644

// SearchCommand holds the flag values of the search command.
type SearchCommand struct {
	solver solverFlags

	start           int
	end             int
	workers         int
	continueOnError bool

	logPath    string
	format     string
	timestamps bool

	checkpoint      bool
	checkpointDir   string
	resume          bool
	clearCheckpoint bool
	interval        int

	metricsAddr string
	quiet       bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	sc := &SearchCommand{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Compute Un for every n in a range",
		Long: `Compute Un for every n from --start to --end in ascending order and append
each result to the result log. An --end of 0 runs until interrupted.

Progress is checkpointed; an interrupted run resumes where it stopped when
started again with the same --start and --method.

Examples:
  mindiv search --end 1000
  mindiv search --start 1 --end 0 --workers 8 --log Un.txt
  mindiv search --end 500 --format table --checkpoint=false`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	sc.solver.register(cmd)

	cmd.Flags().IntVar(&sc.start, "start", config.DefaultStart, "first n")
	cmd.Flags().IntVar(&sc.end, "end", config.DefaultEnd, "last n (0 = until interrupted)")
	cmd.Flags().IntVar(&sc.workers, "workers", config.DefaultWorkers, "parallel solvers (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&sc.continueOnError, "continue-on-error", false, "record failing n and keep going")

	cmd.Flags().StringVar(&sc.logPath, "log", config.DefaultLogPath, "result log file (empty disables)")
	cmd.Flags().StringVarP(&sc.format, "format", "f", config.DefaultFormat,
		"stdout format: console, text, table, csv, json, yaml")
	cmd.Flags().BoolVar(&sc.timestamps, "timestamps", false, "stamp result log lines with the solve time")

	cmd.Flags().BoolVar(&sc.checkpoint, "checkpoint", config.DefaultCheckpointEnabled, "enable checkpointing")
	cmd.Flags().StringVar(&sc.checkpointDir, "checkpoint-dir", "", "checkpoint directory (default: ~/.mindiv/checkpoints)")
	cmd.Flags().BoolVar(&sc.resume, "resume", config.DefaultCheckpointResume, "resume from a checkpoint if available")
	cmd.Flags().BoolVar(&sc.clearCheckpoint, "clear-checkpoint", false, "clear an existing checkpoint before running")
	cmd.Flags().IntVar(&sc.interval, "checkpoint-interval", config.DefaultCheckpointInterval, "results between checkpoints")

	cmd.Flags().StringVar(&sc.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().BoolVarP(&sc.quiet, "quiet", "q", false, "do not print the run summary")

	return cmd
}

func (sc *SearchCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	sc.solver.apply(cmd, cfg)

	override(cmd, "start", &cfg.Search.Start, sc.start)
	override(cmd, "end", &cfg.Search.End, sc.end)
	override(cmd, "workers", &cfg.Search.Workers, sc.workers)
	override(cmd, "continue-on-error", &cfg.Search.ContinueOnError, sc.continueOnError)
	override(cmd, "log", &cfg.Output.LogPath, sc.logPath)
	override(cmd, "format", &cfg.Output.Format, sc.format)
	override(cmd, "timestamps", &cfg.Output.Timestamps, sc.timestamps)
	override(cmd, "checkpoint", &cfg.Checkpoint.Enabled, sc.checkpoint)
	override(cmd, "checkpoint-dir", &cfg.Checkpoint.Dir, sc.checkpointDir)
	override(cmd, "resume", &cfg.Checkpoint.Resume, sc.resume)
	override(cmd, "clear-checkpoint", &cfg.Checkpoint.ClearPrev, sc.clearCheckpoint)
	override(cmd, "checkpoint-interval", &cfg.Checkpoint.Interval, sc.interval)
	override(cmd, "metrics-addr", &cfg.Telemetry.MetricsAddr, sc.metricsAddr)
}

func (sc *SearchCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sc.applyFlags(cmd, cfg)

	err = cfg.Validate()
	if err != nil {
		return err
	}

	strategy, err := sequence.ParseStrategy(cfg.Search.Method)
	if err != nil {
		return err
	}

	var registry *prometheus.Registry
	if cfg.Telemetry.MetricsAddr != "" {
		registry = observability.NewPrometheusRegistry()
	}

	providers, err := initObservability(cfg, observability.ModeCLI, registry, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer shutdown(cmd, providers)

	logger := providers.Logger

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if registry != nil {
		_, err = observability.ServeMetrics(ctx, cfg.Telemetry.MetricsAddr, registry, logger)
		if err != nil {
			return err
		}
	}

	solver, err := newSolver(cfg, logger)
	if err != nil {
		return err
	}

	solveMetrics, err := newSearchMetrics(providers, solver)
	if err != nil {
		return err
	}

	manager, prior, err := prepareCheckpoint(cfg, strategy, logger)
	if err != nil {
		return err
	}

	out, err := newSearchOutput(cmd.OutOrStdout(), cfg, prior)
	if err != nil {
		return err
	}

	opts := []driver.Option{
		driver.WithWorkers(cfg.Search.Workers),
		driver.WithResume(cfg.Checkpoint.Resume),
		driver.WithStrategy(string(strategy)),
		driver.WithContinueOnError(cfg.Search.ContinueOnError),
		driver.WithTracer(providers.Tracer),
		driver.WithMetrics(solveMetrics),
		driver.WithLogger(logger),
	}

	if manager != nil {
		opts = append(opts, driver.WithCheckpoint(manager, cfg.Checkpoint.Interval))
	}

	runner, err := driver.New(solver, out, opts...)
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(ctx, cfg.Search.Start, cfg.Search.End)

	closeErr := out.close()

	if !sc.quiet {
		render.Summary(cmd.ErrOrStderr(), summary)
		logSearchStats(ctx, logger, solver.SearchStats())
	}

	switch {
	case runErr != nil:
		return runErr
	case closeErr != nil:
		return closeErr
	default:
		return summary.Err()
	}
}

func newSearchMetrics(providers observability.Providers, solver *sequence.Solver) (*observability.SolveMetrics, error) {
	sm, err := observability.NewSolveMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("create solve metrics: %w", err)
	}

	err = observability.RegisterSearchStats(providers.Meter, func() observability.SearchStats {
		s := solver.SearchStats()

		return observability.SearchStats{
			Candidates:   s.Candidates,
			CacheHits:    s.Cache.Hits,
			CacheMisses:  s.Cache.Misses,
			CacheEntries: int64(s.Cache.Entries),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register search stats: %w", err)
	}

	return sm, nil
}

// prepareCheckpoint returns the checkpoint manager, or nil when disabled,
// and the records of a checkpoint the driver will resume from.
func prepareCheckpoint(
	cfg *config.Config, strategy sequence.Strategy, logger *slog.Logger,
) (*checkpoint.Manager, []resultlog.Record, error) {
	if !cfg.Checkpoint.Enabled {
		return nil, nil, nil
	}

	dir := cfg.Checkpoint.Dir
	if dir == "" {
		dir = checkpoint.DefaultDir()
	}

	manager := checkpoint.NewManager(dir, checkpoint.RunHash(string(strategy), cfg.Search.Start))
	if cfg.Checkpoint.MaxAge > 0 {
		manager.MaxAge = cfg.Checkpoint.MaxAge
	}

	if cfg.Checkpoint.ClearPrev {
		err := manager.Clear()
		if err != nil {
			return nil, nil, fmt.Errorf("clear checkpoint: %w", err)
		}

		logger.Info("checkpoint cleared", "dir", manager.CheckpointDir())
	}

	if !cfg.Checkpoint.Resume || !manager.Exists() {
		return manager, nil, nil
	}

	if manager.Validate(string(strategy), cfg.Search.Start) != nil {
		return manager, nil, nil
	}

	_, records, err := manager.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load checkpoint: %w", err)
	}

	return manager, records, nil
}

// searchOutput is the driver sink: it appends every result to the result
// log and to stdout in the configured format.
type searchOutput struct {
	stdout     io.Writer
	format     string
	timestamps bool

	logFile *os.File
	log     *resultlog.Writer

	console *resultlog.Console
	text    *resultlog.Writer

	// collected holds results for formats written once the run ends.
	collected []resultlog.Record
}

// newSearchOutput opens the result log. When resuming, the log is rewritten
// from the checkpoint so results past the last checkpoint are not duplicated.
func newSearchOutput(stdout io.Writer, cfg *config.Config, prior []resultlog.Record) (*searchOutput, error) {
	out := &searchOutput{stdout: stdout, format: cfg.Output.Format, timestamps: cfg.Output.Timestamps}

	switch out.format {
	case formatConsole:
		out.console = resultlog.NewConsole(stdout)
	case formatText:
		out.text = resultlog.NewWriter(stdout)
	}

	if cfg.Output.LogPath == "" {
		return out, nil
	}

	f, err := os.OpenFile(cfg.Output.LogPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("open result log: %w", err)
	}

	out.logFile = f
	out.log = resultlog.NewWriter(f, resultlog.WithTimestamps(cfg.Output.Timestamps))

	// Prior lines keep the time they were first emitted at.
	for _, rec := range prior {
		if !out.timestamps {
			rec.Time = time.Time{}
		}

		err = out.log.Write(rec)
		if err != nil {
			return nil, errors.Join(err, f.Close())
		}
	}

	err = out.log.Flush()
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}

	return out, nil
}

// Emit implements driver.Sink.
func (o *searchOutput) Emit(_ context.Context, res sequence.Result) error {
	rec := resultlog.FromResult(res, time.Time{})

	if o.log != nil {
		logged := rec
		if o.timestamps {
			logged.Time = res.EmittedAt
		}

		err := o.log.Write(logged)
		if err != nil {
			return err
		}

		err = o.log.Flush()
		if err != nil {
			return err
		}
	}

	switch {
	case o.console != nil:
		return o.console.Print(rec)
	case o.text != nil:
		err := o.text.Write(rec)
		if err != nil {
			return err
		}

		return o.text.Flush()
	default:
		o.collected = append(o.collected, rec)

		return nil
	}
}

func (o *searchOutput) close() error {
	var errs []error

	if o.log != nil {
		errs = append(errs, o.log.Flush(), o.logFile.Close())
	}

	switch {
	case o.format == formatTable:
		render.Results(o.stdout, o.collected)
	case slices.Contains(export.Formats(), o.format):
		errs = append(errs, export.Write(o.stdout, o.format, o.collected))
	}

	return errors.Join(errs...)
}

func logSearchStats(ctx context.Context, logger *slog.Logger, s bruteforce.Stats) {
	if s.Searches == 0 {
		return
	}

	logger.InfoContext(ctx, "brute force",
		"searches", s.Searches,
		"candidates", humanize.Comma(s.Candidates),
		"computed", humanize.Comma(s.Computed),
		"cache_hit_rate", fmt.Sprintf("%.1f%%", s.Cache.HitRate()*100), //nolint:mnd // percent
		"cache_entries", humanize.Comma(int64(s.Cache.Entries)),
	)
}
