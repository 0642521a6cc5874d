// Package stats summarizes per-item timings for run reports.
package stats

import (
	"math"
	"slices"
	"time"
)

// Well-known percentile thresholds.
const (
	PercentileMedian = 0.5
	PercentileP95    = 0.95
)

// Summary describes a set of durations.
type Summary struct {
	Count  int           `json:"count"  yaml:"count"`
	Total  time.Duration `json:"total"  yaml:"total"`
	Mean   time.Duration `json:"mean"   yaml:"mean"`
	Median time.Duration `json:"median" yaml:"median"`
	P95    time.Duration `json:"p95"    yaml:"p95"`
	Max    time.Duration `json:"max"    yaml:"max"`
}

// Summarize computes a Summary. The input is not modified.
// An empty input yields the zero Summary.
func Summarize(durations []time.Duration) Summary {
	count := len(durations)
	if count == 0 {
		return Summary{}
	}

	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	return Summary{
		Count:  count,
		Total:  total,
		Mean:   total / time.Duration(count),
		Median: percentile(sorted, PercentileMedian),
		P95:    percentile(sorted, PercentileP95),
		Max:    sorted[count-1],
	}
}

// Percentile returns the p-th percentile of durations using linear
// interpolation. p must be in [0, 1]. Returns 0 for an empty slice.
func Percentile(durations []time.Duration, p float64) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	return percentile(sorted, p)
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	count := len(sorted)
	idx := p * float64(count-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper || upper >= count {
		return sorted[lower]
	}

	frac := idx - float64(lower)

	return time.Duration(float64(sorted[lower])*(1-frac) + float64(sorted[upper])*frac)
}
