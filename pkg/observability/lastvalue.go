package observability

import "sync/atomic"

// lastValue keeps the maximum value stored so far.
type lastValue struct {
	v atomic.Int64
}

func (l *lastValue) storeMax(n int64) {
	for {
		cur := l.v.Load()
		if n <= cur || l.v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (l *lastValue) load() int64 {
	return l.v.Load()
}
