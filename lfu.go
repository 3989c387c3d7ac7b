package cachesim

import "iter"

// LFU is a least-frequently-used cache whose access counts
// outlive residency in a bounded, aging history.
// Concurrent access must be guarded by the caller.
// Constructed by [NewLFU].
type LFU[Key comparable, Value any] struct {
	residents   residents[Key, Value]
	frequencies frequencyIndex[Key, Value]
	history     history[Key]
}

// NewLFU creates an [LFU] cache with the given capacity.
// Capacity must be at least [MinimumCapacity].
func NewLFU[Key comparable, Value any](capacity int) (*LFU[Key, Value], error) {
	residents, err := newResidents[Key, Value](capacity)
	if err != nil {
		return nil, err
	}
	return &LFU[Key, Value]{
		residents:   residents,
		frequencies: newFrequencyIndex[Key, Value](),
		history:     newHistory[Key](capacity),
	}, nil
}

// Lookup records an access to key and reports whether it was resident.
// On a miss, produce is called to load the value unless every
// resident key is more popular than key, in which case
// the cache is left unchanged and only the key's count grows.
func (c *LFU[Key, Value]) Lookup(key Key, produce func(Key) Value) bool {
	if c.history.overflowing() {
		c.age()
	}
	count := c.history.observe(key)
	if entry, hit := c.residents.lookup(key); hit {
		if debugging {
			assert(entry.Frequency == count,
				"bucket does not match history count")
		}
		c.frequencies.move(entry, c.history.increment(key))
		return true
	}
	if c.residents.full() {
		victim, found := c.frequencies.lowest(count)
		if !found {
			c.history.increment(key)
			return false
		}
		c.evict(victim)
	}
	entry := c.residents.add(key, produce(key))
	c.frequencies.push(entry, c.history.increment(key))
	return false
}

func (c *LFU[Key, Value]) evict(victim *entry[Key, Value]) {
	c.frequencies.remove(victim)
	c.residents.remove(victim)
}

// age repeats aging passes over the history and the
// frequency buckets until the history is back within its target.
func (c *LFU[Key, Value]) age() {
	resident := func(key Key) bool {
		_, ok := c.residents.lookup(key)
		return ok
	}
	for c.history.len() > c.history.target {
		c.history.age(resident)
		c.frequencies.decay()
	}
}

// Get returns the value for key if it is resident,
// without recording an access.
func (c *LFU[Key, Value]) Get(key Key) (Value, bool) {
	return c.residents.get(key)
}

// Frequency returns the history count of key,
// whether or not it is resident.
func (c *LFU[Key, _]) Frequency(key Key) (int, bool) {
	return c.history.count(key)
}

// HistoryLen returns the number of keys remembered by the history.
func (c *LFU[_, _]) HistoryLen() int {
	return c.history.len()
}

// Len returns the number of resident entries.
func (c *LFU[_, _]) Len() int {
	return len(c.residents.index)
}

// Cap returns the capacity the cache was constructed with.
func (c *LFU[_, _]) Cap() int {
	return c.residents.capacity
}

// Keys returns an iterator over the (unordered) resident keys.
func (c *LFU[Key, _]) Keys() iter.Seq[Key] {
	return c.residents.keys()
}

// Buckets returns an iterator over the non-empty frequencies,
// lowest first, each paired with its keys in eviction order.
func (c *LFU[Key, _]) Buckets() iter.Seq2[int, iter.Seq[Key]] {
	return c.frequencies.all()
}

// Reset drops every resident entry and forgets the history.
func (c *LFU[_, _]) Reset() {
	c.residents.reset()
	c.frequencies.reset()
	clear(c.history.counts)
}
