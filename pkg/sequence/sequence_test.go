package sequence_test

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mindiv/pkg/bruteforce"
	"github.com/Sumatoshi-tech/mindiv/pkg/rules"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

// A005179, n = 1..32.
var smallest = []uint64{
	1, 2, 4, 6, 16, 12, 64, 24, 36, 48, 1024, 60,
	4096, 192, 144, 120, 65536, 180, 262144, 240, 576, 3072, 4194304, 360,
	1296, 12288, 900, 960, 268435456, 720, 1073741824, 840,
}

func newSolver(opts ...sequence.Option) *sequence.Solver {
	base := []sequence.Option{
		sequence.WithSearcher(bruteforce.New(bruteforce.WithCacheSize(1 << 16))),
	}

	return sequence.New(append(base, opts...)...)
}

func TestSolve_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n      int
		form   string
		method sequence.Method
		rule   rules.Rule
	}{
		{1, "1", sequence.MethodBase, rules.None},
		{2, "2^1", sequence.MethodRule, rules.Prime},
		{3, "2^2", sequence.MethodRule, rules.Prime},
		{4, "2^1 * 3^1", sequence.MethodRule, rules.PrimeSquare},
		{6, "2^2 * 3^1", sequence.MethodRule, rules.Semiprime},
		{8, "2^3 * 3^1", sequence.MethodEnumeration, rules.None},
		{24, "2^3 * 3^2 * 5^1", sequence.MethodEnumeration, rules.None},
	}

	solver := newSolver()

	for _, tt := range tests {
		res, err := solver.Solve(context.Background(), tt.n)
		require.NoError(t, err, "n=%d", tt.n)

		assert.Equal(t, tt.n, res.N)
		assert.Equal(t, tt.form, res.Factorization.String(), "n=%d", tt.n)
		assert.Equal(t, tt.method, res.Method, "n=%d", tt.n)
		assert.Equal(t, tt.rule, res.Rule, "n=%d", tt.n)
	}
}

func TestSolve_KnownValues(t *testing.T) {
	t.Parallel()

	for _, strategy := range []sequence.Strategy{sequence.StrategyAuto, sequence.StrategyEnumeration} {
		solver := newSolver(sequence.WithStrategy(strategy))

		for i, want := range smallest {
			n := i + 1

			res, err := solver.Solve(context.Background(), n)
			require.NoError(t, err, "n=%d", n)
			assert.Equal(t, new(big.Int).SetUint64(want), res.Value(), "strategy=%s n=%d", strategy, n)
			assert.InDelta(t, math.Log(float64(want)), res.Weight, 1e-9, "n=%d", n)
		}
	}
}

func TestSolve_DivisorCountOfResult(t *testing.T) {
	t.Parallel()

	solver := newSolver()

	for n := 1; n <= 500; n++ {
		res, err := solver.Solve(context.Background(), n)
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, n, res.Factorization.DivisorCount(), "n=%d", n)
	}
}

func TestSolve_EnumerationReportsPartitions(t *testing.T) {
	t.Parallel()

	res, err := newSolver(sequence.WithRules(false)).Solve(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, sequence.MethodEnumeration, res.Method)
	assert.Equal(t, 7, res.Partitions)
}

func TestSolve_CrossCheck(t *testing.T) {
	t.Parallel()

	solver := newSolver(sequence.WithCrossCheck(true))

	for n := 2; n <= 300; n++ {
		res, err := solver.Solve(context.Background(), n)
		require.NoError(t, err, "n=%d", n)

		if res.Method == sequence.MethodRule {
			assert.Positive(t, res.Partitions, "n=%d", n)
		}
	}
}

func TestSolve_BruteForceStrategy(t *testing.T) {
	t.Parallel()

	solver := newSolver(sequence.WithStrategy(sequence.StrategyBruteForce))

	res, err := solver.Solve(context.Background(), 12)
	require.NoError(t, err)

	assert.Equal(t, sequence.MethodBruteForce, res.Method)
	assert.Equal(t, "2^2 * 3^1 * 5^1", res.Factorization.String())
	assert.Positive(t, solver.SearchStats().Candidates)
}

func TestSolve_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := newSolver().Solve(context.Background(), 0)
	require.ErrorIs(t, err, sequence.ErrInvalidInput)

	_, err = newSolver().Solve(context.Background(), -3)
	require.ErrorIs(t, err, sequence.ErrInvalidInput)
}

func TestSolve_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSolver().Solve(ctx, 12)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"auto", "enumeration", "bruteforce"} {
		got, err := sequence.ParseStrategy(s)
		require.NoError(t, err)
		assert.Equal(t, sequence.Strategy(s), got)
	}

	got, err := sequence.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, sequence.StrategyAuto, got)

	_, err = sequence.ParseStrategy("guess")
	require.ErrorIs(t, err, sequence.ErrUnknownStrategy)
}

func TestWith_SharesSearcher(t *testing.T) {
	t.Parallel()

	base := newSolver()
	brute := base.With(sequence.WithStrategy(sequence.StrategyBruteForce))

	assert.Equal(t, sequence.StrategyAuto, base.Strategy())
	assert.Equal(t, sequence.StrategyBruteForce, brute.Strategy())

	res, err := brute.Solve(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, sequence.MethodBruteForce, res.Method)

	assert.Equal(t, brute.SearchStats(), base.SearchStats())
	assert.Positive(t, base.SearchStats().Candidates)
}
