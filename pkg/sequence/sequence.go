// Package sequence solves for Un, the smallest integer with exactly n divisors.
//
// A Solver tries, in order: the n = 1 base case, the closed-form rules, and
// multiplicative partition enumeration with weight selection. Brute force is
// available as an alternative strategy and as an independent cross-check.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/mindiv/pkg/bruteforce"
	"github.com/Sumatoshi-tech/mindiv/pkg/factor"
	"github.com/Sumatoshi-tech/mindiv/pkg/partition"
	"github.com/Sumatoshi-tech/mindiv/pkg/rules"
	"github.com/Sumatoshi-tech/mindiv/pkg/selector"
)

var (
	// ErrInvalidInput is returned for n < 1.
	ErrInvalidInput = errors.New("n must be positive")

	// ErrMismatch is returned when two methods disagree on Un.
	ErrMismatch = errors.New("methods disagree")

	// ErrUnknownStrategy is returned by ParseStrategy.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Method records how a result was produced.
type Method string

// Methods.
const (
	MethodBase        Method = "base"
	MethodRule        Method = "rule"
	MethodEnumeration Method = "enumeration"
	MethodBruteForce  Method = "bruteforce"
)

// Strategy selects the primary solving path.
type Strategy string

// Strategies.
const (
	// StrategyAuto uses the rules when they apply and enumeration otherwise.
	StrategyAuto Strategy = "auto"
	// StrategyEnumeration always enumerates partitions.
	StrategyEnumeration Strategy = "enumeration"
	// StrategyBruteForce scans candidates.
	StrategyBruteForce Strategy = "bruteforce"
)

// ParseStrategy converts a configuration value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAuto, StrategyEnumeration, StrategyBruteForce:
		return Strategy(s), nil
	case "":
		return StrategyAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Result is Un for one n.
type Result struct {
	N             int                  `json:"n"             yaml:"n"`
	Factorization factor.Factorization `json:"factorization" yaml:"factorization"`
	Rule          rules.Rule           `json:"rule"          yaml:"rule"`
	Method        Method               `json:"method"        yaml:"method"`
	// Partitions is the number of partitions compared; zero unless enumerated.
	Partitions int `json:"partitions" yaml:"partitions"`
	// Weight is ln(Un).
	Weight   float64       `json:"weight"   yaml:"weight"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	// EmittedAt is set by the range driver when the result is handed to its sink.
	EmittedAt time.Time `json:"emitted_at,omitzero" yaml:"emitted_at,omitempty"`
}

// Value returns Un.
func (r Result) Value() *big.Int {
	return r.Factorization.Value()
}

// Solver computes Un. It is safe for concurrent use; brute-force calls are
// serialized because the searcher cache is shared across targets.
type Solver struct {
	strategy   Strategy
	useRules   bool
	crossCheck bool
	selector   *selector.Selector
	logger     *slog.Logger

	// searchMu is shared with solvers derived by With.
	searchMu *sync.Mutex
	searcher *bruteforce.Searcher
}

// Option configures a Solver.
type Option func(*Solver)

// WithStrategy sets the primary solving path.
func WithStrategy(s Strategy) Option {
	return func(sv *Solver) {
		sv.strategy = s
	}
}

// WithRules enables or disables the closed-form rules under StrategyAuto.
func WithRules(enabled bool) Option {
	return func(sv *Solver) {
		sv.useRules = enabled
	}
}

// WithCrossCheck re-derives rule results by enumeration and fails on disagreement.
func WithCrossCheck(enabled bool) Option {
	return func(sv *Solver) {
		sv.crossCheck = enabled
	}
}

// WithSearcher sets the brute-force searcher.
func WithSearcher(s *bruteforce.Searcher) Option {
	return func(sv *Solver) {
		sv.searcher = s
	}
}

// WithSelector sets the weight selector.
func WithSelector(s *selector.Selector) Option {
	return func(sv *Solver) {
		sv.selector = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sv *Solver) {
		sv.logger = logger
	}
}

// New creates a Solver. By default it uses StrategyAuto with rules enabled.
func New(opts ...Option) *Solver {
	sv := &Solver{
		strategy: StrategyAuto,
		useRules: true,
		searchMu: &sync.Mutex{},
	}

	for _, opt := range opts {
		opt(sv)
	}

	if sv.logger == nil {
		sv.logger = slog.Default()
	}

	if sv.selector == nil {
		sv.selector = selector.New(nil)
	}

	if sv.searcher == nil {
		sv.searcher = bruteforce.New(bruteforce.WithLogger(sv.logger))
	}

	return sv
}

// With returns a copy of sv with opts applied. The copy keeps sharing the
// searcher, and brute-force calls stay serialized across both solvers
// unless opts replace the searcher.
func (sv *Solver) With(opts ...Option) *Solver {
	derived := &Solver{
		strategy:   sv.strategy,
		useRules:   sv.useRules,
		crossCheck: sv.crossCheck,
		selector:   sv.selector,
		logger:     sv.logger,
		searchMu:   sv.searchMu,
		searcher:   sv.searcher,
	}

	for _, opt := range opts {
		opt(derived)
	}

	if derived.searcher != sv.searcher {
		derived.searchMu = &sync.Mutex{}
	}

	return derived
}

// Strategy returns the configured strategy.
func (sv *Solver) Strategy() Strategy {
	return sv.strategy
}

// SearchStats returns the brute-force searcher counters.
func (sv *Solver) SearchStats() bruteforce.Stats {
	return sv.searcher.Stats()
}

// Solve returns Un for n.
func (sv *Solver) Solve(ctx context.Context, n int) (Result, error) {
	start := time.Now()

	res, err := sv.solve(ctx, n)
	if err != nil {
		return Result{}, err
	}

	res.Duration = time.Since(start)

	sv.logger.DebugContext(ctx, "solved",
		"n", n, "un", res.Factorization.String(), "method", res.Method, "rule", res.Rule.String())

	return res, nil
}

func (sv *Solver) solve(ctx context.Context, n int) (Result, error) {
	if n < 1 {
		return Result{}, fmt.Errorf("solve %d: %w", n, ErrInvalidInput)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("solve %d: %w", n, err)
	}

	if n == 1 {
		return Result{N: 1, Factorization: factor.Factorization{}, Method: MethodBase}, nil
	}

	switch sv.strategy {
	case StrategyBruteForce:
		return sv.solveBruteForce(ctx, n)
	case StrategyEnumeration:
		return sv.solveEnumeration(n)
	case StrategyAuto:
	default:
		return Result{}, fmt.Errorf("solve %d: %w: %q", n, ErrUnknownStrategy, sv.strategy)
	}

	if sv.useRules {
		outcome, err := rules.Apply(n)
		if err != nil {
			return Result{}, fmt.Errorf("solve %d: %w", n, err)
		}

		if outcome.Applied {
			res := Result{
				N:             n,
				Factorization: outcome.Factorization,
				Rule:          outcome.Rule,
				Method:        MethodRule,
				Weight:        outcome.Factorization.Log(),
			}

			if sv.crossCheck {
				enumerated, enumErr := sv.solveEnumeration(n)
				if enumErr != nil {
					return Result{}, enumErr
				}

				if !enumerated.Factorization.Equal(res.Factorization) {
					return Result{}, mismatch(n, "rule "+outcome.Rule.String(), res.Factorization.String(),
						"enumeration", enumerated.Factorization.String())
				}

				res.Partitions = enumerated.Partitions
			}

			return res, nil
		}
	}

	return sv.solveEnumeration(n)
}

func (sv *Solver) solveEnumeration(n int) (Result, error) {
	parts, err := partition.Enumerate(n)
	if err != nil {
		return Result{}, fmt.Errorf("enumerate %d: %w", n, err)
	}

	sel, err := sv.selector.Select(parts)
	if err != nil {
		return Result{}, fmt.Errorf("select %d: %w", n, err)
	}

	return Result{
		N:             n,
		Factorization: sel.Factorization,
		Method:        MethodEnumeration,
		Partitions:    sel.Candidates,
		Weight:        sel.Weight,
	}, nil
}

func (sv *Solver) solveBruteForce(ctx context.Context, n int) (Result, error) {
	m, err := sv.bruteForce(ctx, n)
	if err != nil {
		return Result{}, err
	}

	return Result{
		N:             n,
		Factorization: factor.Of(m),
		Method:        MethodBruteForce,
		Weight:        math.Log(float64(m)),
	}, nil
}

func (sv *Solver) bruteForce(ctx context.Context, n int) (uint64, error) {
	sv.searchMu.Lock()
	defer sv.searchMu.Unlock()

	m, err := sv.searcher.Search(ctx, n)
	if err != nil {
		return 0, fmt.Errorf("solve %d: %w", n, err)
	}

	return m, nil
}

func mismatch(n int, leftName, left, rightName, right string) error {
	return fmt.Errorf("n=%d: %s gives %s, %s gives %s: %w", n, leftName, left, rightName, right, ErrMismatch)
}
