// Package partition enumerates multiplicative partitions: every unordered way
// to write n as a product of integers >= 2.
//
// Enumeration starts from the prime factorization of n and repeatedly merges
// two parts of every multiset on the current level into one, producing the
// next level (one part fewer) until only two-part multisets remain. Every
// multiset is kept in canonical form (parts sorted descending) and deduplicated
// through its canonical key, so each level is an immutable set.
package partition

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/mindiv/pkg/factor"
	"github.com/Sumatoshi-tech/mindiv/pkg/safeconv"
)

// ErrInvalidInput is returned for n < 1.
var ErrInvalidInput = errors.New("n must be positive")

// keySeparator joins parts in a canonical key.
const keySeparator = ","

// Partition is a multiset of parts >= 2 in descending order.
type Partition []int

// Product multiplies the parts. The empty partition has product 1.
func (p Partition) Product() int {
	product := 1
	for _, part := range p {
		product *= part
	}

	return product
}

// Exponents returns part-1 for every part, keeping the descending order.
func (p Partition) Exponents() []int {
	exps := make([]int, len(p))
	for i, part := range p {
		exps[i] = part - 1
	}

	return exps
}

// Key returns the canonical string form of the partition, e.g. "6,2,2".
func (p Partition) Key() string {
	parts := make([]string, len(p))
	for i, part := range p {
		parts[i] = strconv.Itoa(part)
	}

	return strings.Join(parts, keySeparator)
}

// String implements fmt.Stringer.
func (p Partition) String() string {
	return "[" + strings.ReplaceAll(p.Key(), keySeparator, " ") + "]"
}

// Enumerate returns every multiplicative partition of n, each sorted descending,
// without duplicates. The result is ordered by number of parts, then by parts.
// The partitions of 1 consist of the single empty partition.
func Enumerate(n int) ([]Partition, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInput, n)
	}

	if n == 1 {
		return []Partition{{}}, nil
	}

	primeFactors := factor.Primes(safeconv.MustIntToUint64(n))

	start := make(Partition, len(primeFactors))
	for i, p := range primeFactors {
		start[i] = safeconv.MustUint64ToInt(p)
	}

	level := newLevel(start)
	result := newLevel(Partition{n})

	for len(level.items) > 0 {
		result.merge(level)

		if level.width() <= 2 {
			break
		}

		level = level.reduce()
	}

	out := result.items
	slices.SortFunc(out, compare)

	return out, nil
}

// level is a deduplicated set of canonical partitions that share one width.
type level struct {
	seen  map[string]struct{}
	items []Partition
}

func newLevel(seeds ...Partition) *level {
	l := &level{seen: make(map[string]struct{}, len(seeds))}
	for _, seed := range seeds {
		l.add(seed)
	}

	return l
}

func (l *level) add(p Partition) {
	canonical := canonicalize(p)

	key := canonical.Key()
	if _, dup := l.seen[key]; dup {
		return
	}

	l.seen[key] = struct{}{}
	l.items = append(l.items, canonical)
}

func (l *level) merge(other *level) {
	for _, p := range other.items {
		l.add(p)
	}
}

func (l *level) width() int {
	if len(l.items) == 0 {
		return 0
	}

	return len(l.items[0])
}

// reduce derives the next level by merging each element at position i into
// every element at a later position j.
func (l *level) reduce() *level {
	next := newLevel()

	for _, p := range l.items {
		for i := range len(p) - 1 {
			for j := i + 1; j < len(p); j++ {
				next.add(mergePair(p, i, j))
			}
		}
	}

	return next
}

// mergePair returns a copy of p with p[i] multiplied into p[j] and p[i] removed.
func mergePair(p Partition, i, j int) Partition {
	merged := make(Partition, 0, len(p)-1)

	for k, part := range p {
		switch k {
		case i:
			continue
		case j:
			merged = append(merged, part*p[i])
		default:
			merged = append(merged, part)
		}
	}

	return merged
}

func canonicalize(p Partition) Partition {
	out := slices.Clone(p)
	slices.SortFunc(out, func(a, b int) int { return cmp.Compare(b, a) })

	return out
}

func compare(a, b Partition) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}

	return slices.Compare(a, b)
}
