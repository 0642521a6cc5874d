// Package divisor counts and lists the positive divisors of an integer by trial division.
package divisor

// Count returns d(m), the number of positive divisors of m.
// Count(0) is 0 since zero has no finite divisor set.
func Count(m uint64) int {
	switch m {
	case 0:
		return 0
	case 1:
		return 1
	}

	// 1 and m.
	count := 2

	for i := uint64(2); i <= m/i; i++ {
		if m%i != 0 {
			continue
		}

		if i*i == m {
			count++
		} else {
			count += 2
		}
	}

	return count
}

// Divisors returns every positive divisor of m in ascending order.
// Divisors(0) is nil.
func Divisors(m uint64) []uint64 {
	if m == 0 {
		return nil
	}

	var low, high []uint64

	for i := uint64(1); i <= m/i; i++ {
		if m%i != 0 {
			continue
		}

		low = append(low, i)

		if pair := m / i; pair != i {
			high = append(high, pair)
		}
	}

	result := make([]uint64, 0, len(low)+len(high))
	result = append(result, low...)

	for i := len(high) - 1; i >= 0; i-- {
		result = append(result, high[i])
	}

	return result
}
