package lru

// Get returns the cached value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if c.filter != nil && !c.filter.Test(c.keyHash(key)) {
		c.mu.Lock()
		c.bloomFiltered++
		c.misses++
		c.mu.Unlock()

		var zero V

		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++

		var zero V

		return zero, false
	}

	c.hits++

	if !c.insertionOrder {
		c.moveToFront(e)
	}

	return e.value, true
}

// Contains reports whether key is cached without touching recency or stats.
func (c *Cache[K, V]) Contains(key K) bool {
	if c.filter != nil && !c.filter.Test(c.keyHash(key)) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]

	return ok
}

// Put inserts or updates key. Updating an existing key keeps its position
// under insertion order and refreshes it under LRU.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value

		if !c.insertionOrder {
			c.moveToFront(e)
		}

		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.items[key] = e
	c.pushFront(e)

	if c.filter != nil {
		c.filter.Add(c.keyHash(key))
	}

	for c.maxEntries > 0 && len(c.items) > c.maxEntries {
		c.evictTail()
	}
}

// Remove deletes key. It reports whether the key was present.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}

	c.unlink(e)
	delete(c.items, key)

	return true
}

// Clear drops every entry and resets the Bloom pre-filter. Stats are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	c.head = nil
	c.tail = nil

	if c.filter != nil {
		c.filter.Reset()
	}
}
