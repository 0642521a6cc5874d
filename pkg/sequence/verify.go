package sequence

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Sumatoshi-tech/mindiv/pkg/factor"
	"github.com/Sumatoshi-tech/mindiv/pkg/rules"
)

// Verification compares every method on one n.
type Verification struct {
	N int `json:"n" yaml:"n"`
	// Rule is None when no closed form applies; RuleResult is then nil.
	Rule        rules.Rule           `json:"rule"        yaml:"rule"`
	RuleResult  factor.Factorization `json:"rule_result" yaml:"rule_result"`
	Enumeration factor.Factorization `json:"enumeration" yaml:"enumeration"`
	Partitions  int                  `json:"partitions"  yaml:"partitions"`
	BruteForce  uint64               `json:"brute_force" yaml:"brute_force"`
	Agree       bool                 `json:"agree"       yaml:"agree"`
}

// Verify solves n with the rules, enumeration and brute force and checks that
// they agree and that Un has exactly n divisors. Disagreements are reported
// as ErrMismatch; the Verification is returned either way when computed.
func (sv *Solver) Verify(ctx context.Context, n int) (Verification, error) {
	if n < 1 {
		return Verification{}, fmt.Errorf("verify %d: %w", n, ErrInvalidInput)
	}

	v := Verification{N: n}

	var enumerated Result

	if n == 1 {
		enumerated = Result{N: 1, Factorization: factor.Factorization{}, Method: MethodBase}
	} else {
		outcome, err := rules.Apply(n)
		if err != nil {
			return Verification{}, fmt.Errorf("verify %d: %w", n, err)
		}

		if outcome.Applied {
			v.Rule = outcome.Rule
			v.RuleResult = outcome.Factorization
		}

		enumerated, err = sv.solveEnumeration(n)
		if err != nil {
			return Verification{}, fmt.Errorf("verify %d: %w", n, err)
		}
	}

	v.Enumeration = enumerated.Factorization
	v.Partitions = enumerated.Partitions

	m, err := sv.bruteForce(ctx, n)
	if err != nil {
		return Verification{}, fmt.Errorf("verify: %w", err)
	}

	v.BruteForce = m

	var errs []error

	if v.RuleResult != nil && !v.RuleResult.Equal(v.Enumeration) {
		errs = append(errs, mismatch(n, "rule "+v.Rule.String(), v.RuleResult.String(),
			"enumeration", v.Enumeration.String()))
	}

	if new(big.Int).SetUint64(m).Cmp(v.Enumeration.Value()) != 0 {
		errs = append(errs, mismatch(n, "enumeration", v.Enumeration.String(),
			"brute force", factor.Of(m).String()))
	}

	if d := v.Enumeration.DivisorCount(); d != n {
		errs = append(errs, fmt.Errorf("n=%d: %s has %d divisors: %w", n, v.Enumeration, d, ErrMismatch))
	}

	v.Agree = len(errs) == 0

	return v, errors.Join(errs...)
}
