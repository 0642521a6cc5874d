package lru

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits          int64 `json:"hits"           yaml:"hits"`
	Misses        int64 `json:"misses"         yaml:"misses"`
	BloomFiltered int64 `json:"bloom_filtered" yaml:"bloom_filtered"`
	Evictions     int64 `json:"evictions"      yaml:"evictions"`
	Entries       int   `json:"entries"        yaml:"entries"`
	MaxEntries    int   `json:"max_entries"    yaml:"max_entries"`
}

// HitRate returns hits / (hits + misses), or 0 when there were no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		BloomFiltered: c.bloomFiltered,
		Evictions:     c.evictions,
		Entries:       len(c.items),
		MaxEntries:    c.maxEntries,
	}
}

// ResetStats zeroes the hit, miss, filter and eviction counters.
func (c *Cache[K, V]) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hits = 0
	c.misses = 0
	c.bloomFiltered = 0
	c.evictions = 0
}
