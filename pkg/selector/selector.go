// Package selector picks, among multiplicative partitions of n, the one whose
// exponent pattern yields the smallest integer with exactly n divisors.
//
// Each partition's parts, sorted descending, become exponents part-1 on the
// ascending primes 2, 3, 5, ... Candidates are compared by their weight
// sum(exponent * ln(prime)), the natural logarithm of the candidate, so the
// candidates themselves are never multiplied out except to settle a
// floating-point tie.
package selector

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Sumatoshi-tech/mindiv/pkg/factor"
	"github.com/Sumatoshi-tech/mindiv/pkg/partition"
	"github.com/Sumatoshi-tech/mindiv/pkg/primes"
)

// tieTolerance is the relative weight difference under which two candidates
// are compared exactly.
const tieTolerance = 1e-9

// Sentinel errors.
var (
	ErrNoPartitions     = errors.New("no partitions to select from")
	ErrInvalidPartition = errors.New("partition part must be at least 2")
)

// Selection is the minimal-weight candidate.
type Selection struct {
	Partition     partition.Partition
	Factorization factor.Factorization
	// Weight is ln(Un).
	Weight float64
	// Candidates is the number of partitions compared.
	Candidates int
}

// Selector assigns primes from a table. The zero value is not usable; use New.
type Selector struct {
	table *primes.Table
}

// New creates a selector over the given prime table; nil means primes.Default().
func New(table *primes.Table) *Selector {
	if table == nil {
		table = primes.Default()
	}

	return &Selector{table: table}
}

// Select returns the minimal-weight candidate. The result does not depend on
// the order of parts.
func Select(parts []partition.Partition) (Selection, error) {
	return New(nil).Select(parts)
}

// Weight returns ln of the integer that the partition's exponent pattern
// produces on the ascending primes.
func Weight(p partition.Partition) float64 {
	return New(nil).Weight(p)
}

// Weight returns ln of the candidate for p. p must be sorted descending.
func (s *Selector) Weight(p partition.Partition) float64 {
	var weight float64

	for i, part := range p {
		weight += float64(part-1) * s.table.Weight(i)
	}

	return weight
}

// Select returns the minimal-weight candidate among parts.
func (s *Selector) Select(parts []partition.Partition) (Selection, error) {
	if len(parts) == 0 {
		return Selection{}, ErrNoPartitions
	}

	var (
		best       partition.Partition
		bestWeight = math.Inf(1)
		found      bool
	)

	for _, raw := range parts {
		p, err := canonical(raw)
		if err != nil {
			return Selection{}, err
		}

		weight := s.Weight(p)
		if !found || s.less(p, weight, best, bestWeight) {
			best, bestWeight, found = p, weight, true
		}
	}

	return Selection{
		Partition:     best,
		Factorization: s.Assign(best),
		Weight:        bestWeight,
		Candidates:    len(parts),
	}, nil
}

// Assign pairs the i-th part of a descending partition with the i-th prime.
func (s *Selector) Assign(p partition.Partition) factor.Factorization {
	result := make(factor.Factorization, 0, len(p))

	for i, exp := range p.Exponents() {
		if exp <= 0 {
			continue
		}

		result = append(result, factor.Power{Prime: s.table.At(i), Exp: exp})
	}

	return result
}

func (s *Selector) less(p partition.Partition, weight float64, best partition.Partition, bestWeight float64) bool {
	scale := math.Max(1, math.Max(math.Abs(weight), math.Abs(bestWeight)))
	if math.Abs(weight-bestWeight) > tieTolerance*scale {
		return weight < bestWeight
	}

	if c := s.Assign(p).Value().Cmp(s.Assign(best).Value()); c != 0 {
		return c < 0
	}

	return cmp.Less(p.Key(), best.Key())
}

func canonical(p partition.Partition) (partition.Partition, error) {
	for _, part := range p {
		if part < 2 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPartition, p)
		}
	}

	desc := func(a, b int) int { return cmp.Compare(b, a) }
	if slices.IsSortedFunc(p, desc) {
		return p, nil
	}

	out := slices.Clone(p)
	slices.SortFunc(out, desc)

	return out, nil
}
