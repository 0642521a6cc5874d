package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

const (
	metricSolvedTotal     = "mindiv.solved.total"
	metricFailuresTotal   = "mindiv.failures.total"
	metricSolveDuration   = "mindiv.solve.duration.seconds"
	metricPartitions      = "mindiv.partitions"
	metricLastN           = "mindiv.last.n"
	metricCacheEntries    = "mindiv.bruteforce.cache.entries"
	metricCacheHitsTotal  = "mindiv.bruteforce.cache.hits.total"
	metricCacheMissTotal  = "mindiv.bruteforce.cache.misses.total"
	metricCandidatesTotal = "mindiv.bruteforce.candidates.total"

	attrMethod = "method"
	attrRule   = "rule"
)

// durationBucketBoundaries covers 10µs closed forms up to multi-minute brute-force scans.
var durationBucketBoundaries = []float64{1e-5, 1e-4, 1e-3, 0.01, 0.1, 1, 10, 60, 300}

// partitionBucketBoundaries follows the growth of the partition count with n.
var partitionBucketBoundaries = []float64{1, 2, 5, 10, 50, 100, 500, 1000, 5000}

// SearchStats is the brute-force counter snapshot exported as observable instruments.
type SearchStats struct {
	Candidates   int64
	CacheHits    int64
	CacheMisses  int64
	CacheEntries int64
}

// SolveMetrics holds the per-n instruments. A nil *SolveMetrics records nothing.
type SolveMetrics struct {
	solved     metric.Int64Counter
	failures   metric.Int64Counter
	duration   metric.Float64Histogram
	partitions metric.Float64Histogram
	lastN      metric.Int64ObservableGauge

	last lastValue
}

// NewSolveMetrics creates the solve instruments from mt.
func NewSolveMetrics(mt metric.Meter) (*SolveMetrics, error) {
	in := newInstruments(mt)

	sm := &SolveMetrics{
		solved:     in.counter(metricSolvedTotal, "Values of n solved", "{n}"),
		failures:   in.counter(metricFailuresTotal, "Values of n that failed", "{n}"),
		duration:   in.histogram(metricSolveDuration, "Time to solve one n", "s", durationBucketBoundaries...),
		partitions: in.histogram(metricPartitions, "Partitions compared per enumerated n", "{partition}", partitionBucketBoundaries...),
		lastN:      in.gauge(metricLastN, "Highest n solved", "{n}"),
	}

	if err := in.err(); err != nil {
		return nil, err
	}

	_, err := mt.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(sm.lastN, sm.last.load())

		return nil
	}, sm.lastN)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordSolve records one solved n.
func (sm *SolveMetrics) RecordSolve(ctx context.Context, res sequence.Result) {
	if sm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, string(res.Method)),
		attribute.String(attrRule, res.Rule.String()),
	)

	sm.solved.Add(ctx, 1, attrs)
	sm.duration.Record(ctx, res.Duration.Seconds(), attrs)

	if res.Partitions > 0 {
		sm.partitions.Record(ctx, float64(res.Partitions))
	}

	sm.last.storeMax(int64(res.N))
}

// RecordFailure records one failed n.
func (sm *SolveMetrics) RecordFailure(ctx context.Context, _ int) {
	if sm == nil {
		return
	}

	sm.failures.Add(ctx, 1)
}

// RegisterSearchStats exports brute-force counters read from stats on every collection.
func RegisterSearchStats(mt metric.Meter, stats func() SearchStats) error {
	in := newInstruments(mt)

	entries := in.gauge(metricCacheEntries, "Divisor counts held in the brute-force cache", "{entry}")
	hits := in.observableCounter(metricCacheHitsTotal, "Brute-force cache hits", "{hit}")
	misses := in.observableCounter(metricCacheMissTotal, "Brute-force cache misses", "{miss}")
	candidates := in.observableCounter(metricCandidatesTotal, "Brute-force candidates scanned", "{candidate}")

	if err := in.err(); err != nil {
		return err
	}

	_, err := mt.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(entries, s.CacheEntries)
		o.ObserveInt64(hits, s.CacheHits)
		o.ObserveInt64(misses, s.CacheMisses)
		o.ObserveInt64(candidates, s.Candidates)

		return nil
	}, entries, hits, misses, candidates)

	return err
}
