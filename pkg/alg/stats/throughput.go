package stats

import "time"

// DefaultAlpha is the smoothing factor used by NewThroughput callers that have no preference.
const DefaultAlpha = 0.2

// Throughput tracks an exponentially smoothed items-per-second rate.
// It is not safe for concurrent use.
type Throughput struct {
	alpha       float64
	rate        float64
	initialized bool
}

// NewThroughput creates a tracker with smoothing factor alpha in (0, 1].
func NewThroughput(alpha float64) *Throughput {
	return &Throughput{alpha: alpha}
}

// Observe records that items completed over elapsed and returns the smoothed rate.
// Non-positive elapsed values are ignored.
func (t *Throughput) Observe(items int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return t.rate
	}

	sample := float64(items) / elapsed.Seconds()

	if !t.initialized {
		t.rate = sample
		t.initialized = true

		return t.rate
	}

	t.rate = t.alpha*sample + (1-t.alpha)*t.rate

	return t.rate
}

// Rate returns the current smoothed rate in items per second.
func (t *Throughput) Rate() float64 {
	return t.rate
}

// ETA estimates the time to finish remaining items; zero when no rate is known.
func (t *Throughput) ETA(remaining int) time.Duration {
	if t.rate <= 0 || remaining <= 0 {
		return 0
	}

	return time.Duration(float64(remaining) / t.rate * float64(time.Second))
}
