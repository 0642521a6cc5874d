// Package bloom provides a space-efficient probabilistic membership filter over
// pre-hashed 64-bit keys.
//
// A Bloom filter answers "definitely not in set" or "possibly in set" with a
// tunable false-positive rate. Bit positions are derived by double hashing
// (Kirsch and Mitzenmacher, 2006): h(i) = h1 + i*h2 mod m, where h1 and h2 are
// two splitmix64 mixes of the key.
package bloom

import (
	"errors"
	"math"
	"sync"

	"github.com/Sumatoshi-tech/mindiv/pkg/alg/internal/hashutil"
)

const (
	// bitsPerWord is the number of bits in each uint64 word.
	bitsPerWord = 64

	// ln2Squared is ln(2) squared, used in the optimal bit-array size formula.
	ln2Squared = math.Ln2 * math.Ln2
)

var (
	// ErrZeroN is returned when n (expected element count) is zero.
	ErrZeroN = errors.New("bloom: n must be positive")

	// ErrInvalidFP is returned when fp is not in the open interval (0, 1).
	ErrInvalidFP = errors.New("bloom: fp must be in the open interval (0, 1)")
)

// Filter is a thread-safe Bloom filter keyed by uint64.
type Filter struct {
	mu    sync.RWMutex
	bits  []uint64
	m     uint64 // Total bits.
	k     uint64 // Number of hash functions.
	count uint64 // Number of Add calls since the last Reset.
}

// NewWithEstimates creates a filter sized for n expected keys at false-positive rate fp.
func NewWithEstimates(n uint, fp float64) (*Filter, error) {
	if n == 0 {
		return nil, ErrZeroN
	}

	if fp <= 0 || fp >= 1 {
		return nil, ErrInvalidFP
	}

	m := uint64(math.Ceil(-float64(n) * math.Log(fp) / ln2Squared))
	k := max(uint64(math.Round(float64(m)/float64(n)*math.Ln2)), 1)

	return &Filter{
		bits: make([]uint64, (m+bitsPerWord-1)/bitsPerWord),
		m:    m,
		k:    k,
	}, nil
}

// Add inserts key.
func (f *Filter) Add(key uint64) {
	h1, h2 := hashPair(key)

	f.mu.Lock()
	for i := range f.k {
		pos := (h1 + i*h2) % f.m
		f.bits[pos/bitsPerWord] |= 1 << (pos % bitsPerWord)
	}

	f.count++
	f.mu.Unlock()
}

// Test reports whether key is possibly present. False is definitive.
func (f *Filter) Test(key uint64) bool {
	h1, h2 := hashPair(key)

	f.mu.RLock()
	defer f.mu.RUnlock()

	for i := range f.k {
		pos := (h1 + i*h2) % f.m
		if f.bits[pos/bitsPerWord]&(1<<(pos%bitsPerWord)) == 0 {
			return false
		}
	}

	return true
}

// Count returns the number of Add calls since creation or the last Reset.
func (f *Filter) Count() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.count
}

// Reset clears the filter without reallocating the bit array.
func (f *Filter) Reset() {
	f.mu.Lock()
	clear(f.bits)
	f.count = 0
	f.mu.Unlock()
}

// hashPair derives two hashes; the step is forced odd so it cycles the whole array.
func hashPair(key uint64) (h1, h2 uint64) {
	h1 = hashutil.Mix64(key)
	h2 = hashutil.Splitmix64(key) | 1

	return h1, h2
}
