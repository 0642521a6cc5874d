// Package rules resolves small divisor-count targets in closed form.
//
// When n itself has at most four divisors the minimal exponent pattern is known
// without enumerating partitions:
//
//	#1  n prime (d(n) = 2):              Un = 2^(n-1)
//	#2  n = a*b, a < b, d(n) = 4:        Un = 2^(b-1) * 3^(a-1)
//	    except when n = a^3, where (a, a, a) competes and enumeration decides
//	#3  n = p^2 (d(n) = 3):              Un = 2^(p-1) * 3^(p-1)
package rules

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/mindiv/pkg/divisor"
	"github.com/Sumatoshi-tech/mindiv/pkg/factor"
	"github.com/Sumatoshi-tech/mindiv/pkg/safeconv"
)

// ErrInvalidInput is returned for n < 1.
var ErrInvalidInput = errors.New("n must be positive")

// Rule identifies the closed form that produced a result.
type Rule int

// Rules in the numbering used by result logs.
const (
	None Rule = iota
	Prime
	Semiprime
	PrimeSquare
)

// String returns the log tag of the rule: "#1", "#2", "#3", or "" for None.
func (r Rule) String() string {
	if r == None {
		return ""
	}

	return fmt.Sprintf("#%d", int(r))
}

// ParseRule reads a tag produced by Rule.String.
func ParseRule(tag string) (Rule, error) {
	switch tag {
	case "":
		return None, nil
	case "#1":
		return Prime, nil
	case "#2":
		return Semiprime, nil
	case "#3":
		return PrimeSquare, nil
	default:
		return None, fmt.Errorf("unknown rule tag %q", tag)
	}
}

// MarshalText encodes the rule as its tag.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a tag produced by MarshalText.
func (r *Rule) UnmarshalText(text []byte) error {
	rule, err := ParseRule(string(text))
	if err != nil {
		return err
	}

	*r = rule

	return nil
}

// Outcome is the result of Apply. Factorization is meaningful only when Applied.
type Outcome struct {
	Rule          Rule
	Factorization factor.Factorization
	Applied       bool
}

// Apply returns the closed-form answer for n when one of the rules covers it.
// n = 1 and the prime-cube exception are reported as not applied.
func Apply(n int) (Outcome, error) {
	if n < 1 {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidInput, n)
	}

	un := safeconv.MustIntToUint64(n)

	switch divisor.Count(un) {
	case 2:
		return applied(Prime, factor.Power{Prime: 2, Exp: n - 1}), nil
	case 3:
		p := exponentOf(divisor.Divisors(un)[1])

		return applied(PrimeSquare,
			factor.Power{Prime: 2, Exp: p - 1},
			factor.Power{Prime: 3, Exp: p - 1},
		), nil
	case 4:
		divs := divisor.Divisors(un)
		a, b := divs[1], divs[2]

		if isCube(a, un) {
			return Outcome{}, nil
		}

		return applied(Semiprime,
			factor.Power{Prime: 2, Exp: exponentOf(b) - 1},
			factor.Power{Prime: 3, Exp: exponentOf(a) - 1},
		), nil
	default:
		return Outcome{}, nil
	}
}

func applied(rule Rule, powers ...factor.Power) Outcome {
	return Outcome{Rule: rule, Factorization: powers, Applied: true}
}

// isCube reports whether a^3 == m for a divisor a of m, without forming a^3.
func isCube(a, m uint64) bool {
	return a > 0 && m%a == 0 && m/a/a == a && (m/a)%a == 0
}

func exponentOf(v uint64) int {
	return safeconv.MustUint64ToInt(v)
}
