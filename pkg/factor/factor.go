// Package factor computes prime factorizations by trial division and renders
// them in index form (ascending prime bases with positive exponents).
package factor

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Rendering tokens of the index form.
const (
	termSeparator  = " * "
	powerSeparator = "^"
	unitLiteral    = "1"
)

// ErrMalformed is returned by Parse for text that is not a valid index form.
var ErrMalformed = errors.New("malformed index form")

// Power is one prime base raised to a positive exponent.
type Power struct {
	Prime uint64 `json:"prime" yaml:"prime"`
	Exp   int    `json:"exp"   yaml:"exp"`
}

// Factorization is an index form: powers ordered by ascending prime.
// The empty factorization represents 1.
type Factorization []Power

// Primes returns the prime factors of n with multiplicity in ascending order.
// Primes(0) and Primes(1) return an empty slice.
func Primes(n uint64) []uint64 {
	factors := make([]uint64, 0)
	if n < 2 {
		return factors
	}

	for i := uint64(2); i <= n/i; i++ {
		for n%i == 0 {
			factors = append(factors, i)
			n /= i
		}
	}

	if n > 1 {
		factors = append(factors, n)
	}

	return factors
}

// IndexForm collapses an ascending prime multiset into (prime, exponent) pairs.
// For example [2 2 2 3 5 5] becomes 2^3 * 3^1 * 5^2.
func IndexForm(factors []uint64) Factorization {
	result := make(Factorization, 0, len(factors))

	for _, p := range factors {
		last := len(result) - 1
		if last >= 0 && result[last].Prime == p {
			result[last].Exp++

			continue
		}

		result = append(result, Power{Prime: p, Exp: 1})
	}

	return result
}

// Of returns the index form of n's prime factorization.
func Of(n uint64) Factorization {
	return IndexForm(Primes(n))
}

// String renders the factorization as "p1^e1 * p2^e2 * ...", or "1" when empty.
func (f Factorization) String() string {
	if len(f) == 0 {
		return unitLiteral
	}

	terms := make([]string, len(f))
	for i, pw := range f {
		terms[i] = strconv.FormatUint(pw.Prime, 10) + powerSeparator + strconv.Itoa(pw.Exp)
	}

	return strings.Join(terms, termSeparator)
}

// Value multiplies the factorization out. The result can be arbitrarily large.
func (f Factorization) Value() *big.Int {
	result := big.NewInt(1)
	term := new(big.Int)
	exp := new(big.Int)

	for _, pw := range f {
		term.SetUint64(pw.Prime)
		exp.SetInt64(int64(pw.Exp))
		term.Exp(term, exp, nil)
		result.Mul(result, term)
	}

	return result
}

// Log returns the natural logarithm of Value() without multiplying it out.
func (f Factorization) Log() float64 {
	var sum float64
	for _, pw := range f {
		sum += float64(pw.Exp) * math.Log(float64(pw.Prime))
	}

	return sum
}

// DivisorCount returns the number of divisors of Value(), the product of (e+1).
func (f Factorization) DivisorCount() int {
	count := 1
	for _, pw := range f {
		count *= pw.Exp + 1
	}

	return count
}

// Equal reports whether two factorizations have identical powers.
func (f Factorization) Equal(other Factorization) bool {
	if len(f) != len(other) {
		return false
	}

	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}

	return true
}

// Parse reads a factorization rendered by String. Whitespace around the
// separators is optional and a bare prime means exponent 1.
func Parse(text string) (Factorization, error) {
	text = strings.TrimSpace(text)
	if text == unitLiteral || text == "" {
		return Factorization{}, nil
	}

	terms := strings.Split(text, "*")
	result := make(Factorization, 0, len(terms))

	for _, term := range terms {
		pw, err := parsePower(strings.TrimSpace(term))
		if err != nil {
			return nil, err
		}

		if len(result) > 0 && result[len(result)-1].Prime >= pw.Prime {
			return nil, fmt.Errorf("%w: primes out of order at %q", ErrMalformed, term)
		}

		result = append(result, pw)
	}

	return result, nil
}

func parsePower(term string) (Power, error) {
	base, exp, hasExp := strings.Cut(term, powerSeparator)

	prime, err := strconv.ParseUint(strings.TrimSpace(base), 10, 64)
	if err != nil || prime < 2 {
		return Power{}, fmt.Errorf("%w: bad base in %q", ErrMalformed, term)
	}

	power := 1

	if hasExp {
		power, err = strconv.Atoi(strings.TrimSpace(exp))
		if err != nil || power < 1 {
			return Power{}, fmt.Errorf("%w: bad exponent in %q", ErrMalformed, term)
		}
	}

	return Power{Prime: prime, Exp: power}, nil
}
