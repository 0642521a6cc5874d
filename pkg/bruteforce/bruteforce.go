// Package bruteforce finds the smallest integer with a given divisor count by
// scanning even candidates upward.
//
// The scan is slow for large targets but depends on nothing except the divisor
// oracle, which makes it a ground-truth check for the partition method.
// Divisor counts are memoized in a bounded sliding-window cache that survives
// across Search calls on the same Searcher.
package bruteforce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/Sumatoshi-tech/mindiv/pkg/alg/lru"
	"github.com/Sumatoshi-tech/mindiv/pkg/divisor"
)

// DefaultCacheSize is the number of (candidate, divisor count) pairs kept.
const DefaultCacheSize = 30_000_000

// cancelCheckInterval is how many candidates are scanned between context checks.
const cancelCheckInterval = 1 << 16

// maxCandidate is the largest even uint64.
const maxCandidate = math.MaxUint64 - 1

var (
	// ErrInvalidInput is returned for a target below 1.
	ErrInvalidInput = errors.New("n must be positive")

	// ErrLimitExceeded is returned when the scan passes the configured candidate limit.
	ErrLimitExceeded = errors.New("brute force limit exceeded")
)

// Stats reports searcher counters.
type Stats struct {
	Searches   int64     `json:"searches"   yaml:"searches"`
	Candidates int64     `json:"candidates" yaml:"candidates"`
	Computed   int64     `json:"computed"   yaml:"computed"`
	Cache      lru.Stats `json:"cache"      yaml:"cache"`
}

// Searcher runs brute-force scans. A Searcher must not be used by more than
// one goroutine at a time; Stats may be called concurrently.
type Searcher struct {
	cache     *lru.Cache[uint64, int]
	cacheSize int
	bloom     bool
	limit     uint64
	logger    *slog.Logger

	searches   atomic.Int64
	candidates atomic.Int64
	computed   atomic.Int64
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithCacheSize bounds the divisor-count cache. Zero or negative disables caching.
func WithCacheSize(n int) Option {
	return func(s *Searcher) {
		s.cacheSize = n
	}
}

// WithBloomFilter puts a Bloom pre-filter in front of the cache.
func WithBloomFilter(enabled bool) Option {
	return func(s *Searcher) {
		s.bloom = enabled
	}
}

// WithLimit stops the scan with ErrLimitExceeded once candidates pass limit.
// Zero means unlimited.
func WithLimit(limit uint64) Option {
	return func(s *Searcher) {
		s.limit = limit
	}
}

// WithLogger sets the logger for per-search debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// New creates a Searcher with a DefaultCacheSize sliding-window cache.
func New(opts ...Option) *Searcher {
	s := &Searcher{
		cacheSize: DefaultCacheSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if s.cacheSize > 0 {
		cacheOpts := []lru.Option[uint64, int]{
			lru.WithMaxEntries[uint64, int](s.cacheSize),
			lru.WithInsertionOrder[uint64, int](),
		}

		if s.bloom {
			cacheOpts = append(cacheOpts, lru.WithBloomFilter[uint64, int](candidateKey, uint(s.cacheSize)))
		}

		s.cache = lru.New(cacheOpts...)
	}

	return s
}

// Search returns the smallest m with exactly n divisors.
func (s *Searcher) Search(ctx context.Context, n int) (uint64, error) {
	if n < 1 {
		return 0, fmt.Errorf("bruteforce %d: %w", n, ErrInvalidInput)
	}

	s.searches.Add(1)

	if n == 1 {
		return 1, nil
	}

	var scanned int64

	defer func() {
		s.candidates.Add(scanned)
	}()

	// Every answer above 1 carries the factor 2, so odd candidates are skipped.
	for m := uint64(2); ; m += 2 {
		if s.limit > 0 && m > s.limit {
			return 0, fmt.Errorf("bruteforce %d: %w (limit %d)", n, ErrLimitExceeded, s.limit)
		}

		scanned++

		if scanned%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, fmt.Errorf("bruteforce %d: %w", n, err)
			}
		}

		if s.count(m) == n {
			s.logger.DebugContext(ctx, "bruteforce found",
				"n", n, "un", m, "scanned", scanned)

			return m, nil
		}

		if m == maxCandidate {
			return 0, fmt.Errorf("bruteforce %d: %w (uint64 range)", n, ErrLimitExceeded)
		}
	}
}

// Stats returns a snapshot of the searcher counters.
func (s *Searcher) Stats() Stats {
	st := Stats{
		Searches:   s.searches.Load(),
		Candidates: s.candidates.Load(),
		Computed:   s.computed.Load(),
	}

	if s.cache != nil {
		st.Cache = s.cache.Stats()
	}

	return st
}

// Reset drops all cached divisor counts.
func (s *Searcher) Reset() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// candidateKey feeds the candidate itself to the filter, which mixes it.
func candidateKey(m uint64) uint64 { return m }

func (s *Searcher) count(m uint64) int {
	if s.cache != nil {
		if d, ok := s.cache.Get(m); ok {
			return d
		}
	}

	d := divisor.Count(m)
	s.computed.Add(1)

	if s.cache != nil {
		s.cache.Put(m, d)
	}

	return d
}
