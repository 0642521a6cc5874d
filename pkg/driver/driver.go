// Package driver runs the solver over a range of n.
//
// Several n are solved concurrently, bounded by the worker count, but results
// reach the sink strictly in ascending n order. Progress is checkpointed so a
// restarted run resumes at the first unsolved n.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/mindiv/pkg/checkpoint"
	"github.com/Sumatoshi-tech/mindiv/pkg/observability"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

// Defaults.
const (
	DefaultCheckpointInterval = 100
	DefaultProgressInterval   = 1000

	// windowFactor bounds how far ahead of the next emitted n workers may run.
	windowFactor = 4

	tracerName = "github.com/Sumatoshi-tech/mindiv/pkg/driver"
)

var (
	// ErrInvalidRange is returned when start < 1 or end is set below start.
	ErrInvalidRange = errors.New("invalid range")

	// ErrNoSink is returned by New when sink is nil.
	ErrNoSink = errors.New("sink is required")
)

// Solver computes Un for one n.
type Solver interface {
	Solve(ctx context.Context, n int) (sequence.Result, error)
}

// Sink receives results in ascending n order. Emit is never called concurrently.
type Sink interface {
	Emit(ctx context.Context, res sequence.Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, res sequence.Result) error

// Emit implements Sink.
func (f SinkFunc) Emit(ctx context.Context, res sequence.Result) error {
	return f(ctx, res)
}

// Metrics records per-n outcomes.
type Metrics interface {
	RecordSolve(ctx context.Context, res sequence.Result)
	RecordFailure(ctx context.Context, n int)
}

// Runner drives a Solver over a range.
type Runner struct {
	solver   Solver
	sink     Sink
	workers  int
	strategy string

	checkpoints        *checkpoint.Manager
	checkpointInterval int
	resume             bool

	continueOnError  bool
	progressInterval int

	tracer  trace.Tracer
	metrics Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the number of concurrent solves. Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithClock overrides the source of emit times.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithCheckpoint saves progress to m every interval emitted results.
func WithCheckpoint(m *checkpoint.Manager, interval int) Option {
	return func(r *Runner) {
		r.checkpoints = m
		r.checkpointInterval = interval
	}
}

// WithResume continues from an existing checkpoint when it matches the run.
func WithResume(enabled bool) Option {
	return func(r *Runner) {
		r.resume = enabled
	}
}

// WithStrategy names the solver strategy in checkpoint metadata.
func WithStrategy(name string) Option {
	return func(r *Runner) {
		r.strategy = name
	}
}

// WithContinueOnError records failing n in the summary instead of stopping.
func WithContinueOnError(enabled bool) Option {
	return func(r *Runner) {
		r.continueOnError = enabled
	}
}

// WithProgressInterval logs a progress record every interval emitted results.
func WithProgressInterval(interval int) Option {
	return func(r *Runner) {
		r.progressInterval = interval
	}
}

// WithTracer sets the tracer used for per-n spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner.
func New(solver Solver, sink Sink, opts ...Option) (*Runner, error) {
	if sink == nil {
		return nil, ErrNoSink
	}

	r := &Runner{
		solver:             solver,
		sink:               sink,
		strategy:           string(sequence.StrategyAuto),
		checkpointInterval: DefaultCheckpointInterval,
		progressInterval:   DefaultProgressInterval,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.workers < 1 {
		r.workers = runtime.GOMAXPROCS(0)
	}

	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	if r.now == nil {
		r.now = time.Now
	}

	return r, nil
}

// outcome is one finished solve on its way to the reorder buffer.
type outcome struct {
	n   int
	res sequence.Result
	err error
}

// Run solves every n in [start, end]. An end of zero runs until ctx is
// cancelled. The returned Summary is valid even when err is not nil.
func (r *Runner) Run(ctx context.Context, start, end int) (Summary, error) {
	if start < 1 || (end != 0 && end < start) {
		return Summary{}, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, start, end)
	}

	st, err := r.restore(start, end)
	if err != nil {
		return Summary{}, err
	}

	ctx = observability.WithRunID(ctx, st.summary.RunID)

	if end != 0 && st.next > end {
		r.logger.InfoContext(ctx, "run already complete", "start", start, "end", end)

		return st.finish(), nil
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	window := make(chan struct{}, r.workers*windowFactor)
	outcomes := make(chan outcome, r.workers)
	collected := make(chan error, 1)

	go func() {
		collected <- r.collect(runCtx, st, outcomes, window, cancel)
	}()

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(r.workers)

produce:
	for n := st.next; end == 0 || n <= end; n++ {
		select {
		case window <- struct{}{}:
		case <-gctx.Done():
			break produce
		}

		g.Go(func() error {
			return r.solveOne(gctx, n, outcomes)
		})
	}

	groupErr := g.Wait()

	close(outcomes)

	collectErr := <-collected

	r.saveCheckpoint(ctx, st)

	summary := st.finish()

	switch {
	case collectErr != nil:
		return summary, collectErr
	case groupErr != nil:
		return summary, groupErr
	case ctx.Err() != nil:
		return summary, fmt.Errorf("run interrupted at n=%d: %w", st.next, ctx.Err())
	default:
		return summary, nil
	}
}

func (r *Runner) solveOne(ctx context.Context, n int, outcomes chan<- outcome) error {
	spanCtx, span := r.tracer.Start(ctx, "mindiv.solve", trace.WithAttributes(attribute.Int("n", n)))
	res, err := r.solver.Solve(spanCtx, n)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.String("method", string(res.Method)),
			attribute.String("rule", res.Rule.String()),
			attribute.Int("partitions", res.Partitions),
		)
	}

	span.End()

	if err != nil && (!r.continueOnError || ctx.Err() != nil) {
		return err
	}

	select {
	case outcomes <- outcome{n: n, res: res, err: err}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// collect drains outcomes, emitting them in order. It keeps draining after a
// failure so workers never block on a full channel.
func (r *Runner) collect(
	ctx context.Context,
	st *runState,
	outcomes <-chan outcome,
	window <-chan struct{},
	cancel context.CancelCauseFunc,
) error {
	pending := make(map[int]outcome)

	var failure error

	for o := range outcomes {
		if failure != nil {
			continue
		}

		pending[o.n] = o

		for {
			next, ok := pending[st.next]
			if !ok {
				break
			}

			delete(pending, st.next)
			<-window

			if err := r.handle(ctx, st, next); err != nil {
				failure = err
				cancel(err)

				break
			}
		}
	}

	return failure
}

func (r *Runner) handle(ctx context.Context, st *runState, o outcome) error {
	if o.err != nil {
		r.logger.WarnContext(ctx, "solve failed", "n", o.n, "error", o.err)

		if r.metrics != nil {
			r.metrics.RecordFailure(ctx, o.n)
		}

		st.fail(o.n, o.err)
	} else {
		o.res.EmittedAt = r.now()

		if err := r.sink.Emit(ctx, o.res); err != nil {
			return fmt.Errorf("emit %d: %w", o.n, err)
		}

		if r.metrics != nil {
			r.metrics.RecordSolve(ctx, o.res)
		}

		r.logger.DebugContext(ctx, "emitted", "n", o.n, "un", o.res.Factorization.String())
		st.record(o.res)
	}

	st.next++

	if r.checkpoints != nil && r.checkpointInterval > 0 && st.sinceCheckpoint >= r.checkpointInterval {
		r.saveCheckpoint(ctx, st)
	}

	if r.progressInterval > 0 && st.emitted%r.progressInterval == 0 {
		r.logProgress(ctx, st)
	}

	return nil
}

func (r *Runner) logProgress(ctx context.Context, st *runState) {
	now := time.Now()
	rate := st.throughput.Observe(st.emitted-st.lastProgressCount, now.Sub(st.lastProgress))

	st.lastProgress = now
	st.lastProgressCount = st.emitted

	attrs := []any{"next", st.next, "solved", st.summary.Solved, "failed", len(st.summary.Failed), "rate", rate}
	if st.end != 0 {
		attrs = append(attrs, "eta", st.throughput.ETA(st.end-st.next+1).Round(time.Second))
	}

	r.logger.InfoContext(ctx, "progress", attrs...)
}

func (r *Runner) saveCheckpoint(ctx context.Context, st *runState) {
	if r.checkpoints == nil || st.sinceCheckpoint == 0 {
		return
	}

	err := r.checkpoints.Save(st.summary.RunID, r.strategy, st.progress(), st.records)
	if err != nil {
		r.logger.WarnContext(ctx, "checkpoint save failed", "next", st.next, "error", err)

		return
	}

	st.sinceCheckpoint = 0

	r.logger.DebugContext(ctx, "checkpoint saved", "next", st.next)
}

// restore builds the run state, resuming from a checkpoint when allowed.
func (r *Runner) restore(start, end int) (*runState, error) {
	st := newRunState(start, end, checkpoint.NewRunID())

	if r.checkpoints == nil || !r.resume || !r.checkpoints.Exists() {
		return st, nil
	}

	if err := r.checkpoints.Validate(r.strategy, start); err != nil {
		r.logger.Warn("ignoring checkpoint", "error", err)

		return st, nil
	}

	meta, records, err := r.checkpoints.Load()
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}

	st.resumeFrom(meta, records)

	r.logger.Info("resuming", "run_id", meta.RunID, "next", st.next, "completed", meta.Progress.Completed)

	return st, nil
}
