package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mindiv/pkg/partition"
	"github.com/Sumatoshi-tech/mindiv/pkg/rules"
	"github.com/Sumatoshi-tech/mindiv/pkg/selector"
)

func TestApply_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := rules.Apply(0)
	require.ErrorIs(t, err, rules.ErrInvalidInput)
}

func TestApply_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		rule rules.Rule
		want string
	}{
		{n: 2, rule: rules.Prime, want: "2^1"},
		{n: 3, rule: rules.Prime, want: "2^2"},
		{n: 4, rule: rules.PrimeSquare, want: "2^1 * 3^1"},
		{n: 6, rule: rules.Semiprime, want: "2^2 * 3^1"},
		{n: 8, rule: rules.None},
		{n: 9, rule: rules.PrimeSquare, want: "2^2 * 3^2"},
		{n: 13, rule: rules.Prime, want: "2^12"},
		{n: 15, rule: rules.Semiprime, want: "2^4 * 3^2"},
		{n: 27, rule: rules.None},
		{n: 12, rule: rules.None},
	}

	for _, tt := range tests {
		out, err := rules.Apply(tt.n)
		require.NoError(t, err)

		assert.Equal(t, tt.rule, out.Rule, "n=%d", tt.n)
		assert.Equal(t, tt.rule != rules.None, out.Applied, "n=%d", tt.n)

		if out.Applied {
			assert.Equal(t, tt.want, out.Factorization.String(), "n=%d", tt.n)
		}
	}
}

func TestApply_One(t *testing.T) {
	t.Parallel()

	out, err := rules.Apply(1)
	require.NoError(t, err)
	assert.False(t, out.Applied)
}

func TestApply_AgreesWithEnumeration(t *testing.T) {
	t.Parallel()

	for n := 2; n <= 2000; n++ {
		out, err := rules.Apply(n)
		require.NoError(t, err)

		if !out.Applied {
			continue
		}

		parts, err := partition.Enumerate(n)
		require.NoError(t, err)

		sel, err := selector.Select(parts)
		require.NoError(t, err)

		assert.Equal(t, sel.Factorization, out.Factorization, "n=%d rule=%s", n, out.Rule)
	}
}

func TestApply_CubeExceptionIsNeeded(t *testing.T) {
	t.Parallel()

	// For 27 = 3^3 the two-factor shortcut would give 2^8 * 3^2 = 2304, but
	// (3, 3, 3) yields 2^2 * 3^2 * 5^2 = 900.
	parts, err := partition.Enumerate(27)
	require.NoError(t, err)

	sel, err := selector.Select(parts)
	require.NoError(t, err)
	assert.Equal(t, "2^2 * 3^2 * 5^2", sel.Factorization.String())
}

func TestIsCube(t *testing.T) {
	t.Parallel()

	// a^3 wraps to exactly m in uint64 arithmetic; a plain a*a*a == m would match.
	const wrapping = uint64(1<<63 | 1)

	tests := []struct {
		name string
		a, m uint64
		want bool
	}{
		{name: "small cube", a: 3, m: 27, want: true},
		{name: "semiprime", a: 3, m: 21},
		{name: "largest uint64 cube", a: 2642245, m: 2642245 * 2642245 * 2642245, want: true},
		{name: "wrapping product", a: wrapping, m: wrapping},
		{name: "zero divisor", a: 0, m: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, rules.IsCube(tt.a, tt.m))
		})
	}
}

func TestRule_StringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, r := range []rules.Rule{rules.None, rules.Prime, rules.Semiprime, rules.PrimeSquare} {
		parsed, err := rules.ParseRule(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := rules.ParseRule("#9")
	require.Error(t, err)
}

func TestRule_TextMarshaling(t *testing.T) {
	t.Parallel()

	text, err := rules.PrimeSquare.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#3", string(text))

	var r rules.Rule
	require.NoError(t, r.UnmarshalText([]byte("#2")))
	assert.Equal(t, rules.Semiprime, r)

	require.Error(t, r.UnmarshalText([]byte("two")))
}
