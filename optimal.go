package cachesim

import (
	"iter"
	"slices"

	"github.com/google/btree"
)

// Optimal is an offline cache implementing Belady's MIN policy:
// it always evicts the entry whose next request is farthest away.
// The whole request trace must be provided up front with
// [Optimal.SetRequests] and indexed by [Optimal.Analyze].
// Concurrent access must be guarded by the caller.
// Constructed by [NewOptimal].
type Optimal[Key comparable, Value any] struct {
	residents residents[Key, Value]
	// order holds exactly the resident entries,
	// sorted by descending next use.
	order    *btree.BTreeG[*entry[Key, Value]]
	calls    callTable[Key]
	requests []Key
}

const orderDegree = 16

// NewOptimal creates an [Optimal] cache with the given capacity.
// Capacity must be at least [MinimumCapacity].
func NewOptimal[Key comparable, Value any](capacity int) (*Optimal[Key, Value], error) {
	residents, err := newResidents[Key, Value](capacity)
	if err != nil {
		return nil, err
	}
	return &Optimal[Key, Value]{
		residents: residents,
		order:     btree.NewG[*entry[Key, Value]](orderDegree, usedLater[Key, Value]),
	}, nil
}

// usedLater orders entries farthest next use first.
// Resident next uses are distinct trace positions, so the order is total.
func usedLater[Key comparable, Value any](a, b *entry[Key, Value]) bool {
	return a.NextUse > b.NextUse
}

// SetRequests stores a copy of the request trace to be replayed.
// [Optimal.Analyze] must be called afterwards.
func (c *Optimal[Key, _]) SetRequests(requests []Key) {
	c.requests = slices.Clone(requests)
	c.calls = nil
}

// Analyze builds the call table for the current request trace
// and empties the cache, so replay can start from position 0.
func (c *Optimal[_, _]) Analyze() {
	c.calls = newCallTable(c.requests)
	c.residents.reset()
	c.order.Clear(false)
}

// Requests returns the length of the request trace.
func (c *Optimal[_, _]) Requests() int {
	return len(c.requests)
}

// Lookup replays the request at position and reports whether its key was resident.
// Positions must be replayed once each, in increasing order.
// On a miss, produce is called to load the value unless
// the key will not be requested again, or is requested
// later than every resident key.
func (c *Optimal[Key, Value]) Lookup(position int, produce func(Key) Value) bool {
	if c.calls == nil {
		panic(ErrNotAnalyzed)
	}
	var (
		key   = c.requests[position]
		queue = c.calls[key]
	)
	if debugging {
		assert(queue.next() == position,
			"requests replayed out of order")
	}
	if entry, hit := c.residents.lookup(key); hit {
		c.reschedule(entry, queue)
		return true
	}
	if queue.remaining() == 1 {
		queue.pop()
		return false
	}
	if c.residents.full() {
		victim, _ := c.order.Min()
		if queue.following() > victim.NextUse {
			queue.pop()
			return false
		}
		c.evict(victim)
	}
	queue.pop()
	entry := c.residents.add(key, produce(key))
	entry.NextUse = queue.next()
	c.insert(entry)
	return false
}

// reschedule consumes the current request of a resident entry
// and moves it to its next use, dropping it when there is none.
func (c *Optimal[Key, Value]) reschedule(entry *entry[Key, Value], queue *calls) {
	queue.pop()
	c.order.Delete(entry)
	if queue.remaining() == 0 {
		c.residents.remove(entry)
		return
	}
	entry.NextUse = queue.next()
	c.insert(entry)
}

func (c *Optimal[Key, Value]) insert(entry *entry[Key, Value]) {
	_, replaced := c.order.ReplaceOrInsert(entry)
	if debugging {
		assert(!replaced, "two resident entries share a next use")
	}
}

func (c *Optimal[Key, Value]) evict(victim *entry[Key, Value]) {
	c.order.Delete(victim)
	c.residents.remove(victim)
}

// Get returns the value for key if it is resident,
// without replaying a request.
func (c *Optimal[Key, Value]) Get(key Key) (Value, bool) {
	return c.residents.get(key)
}

// NextUse returns the trace position at which the resident key
// is requested next.
func (c *Optimal[Key, _]) NextUse(key Key) (int, bool) {
	entry, ok := c.residents.lookup(key)
	if !ok {
		return 0, false
	}
	return entry.NextUse, true
}

// Len returns the number of resident entries.
func (c *Optimal[_, _]) Len() int {
	return len(c.residents.index)
}

// Cap returns the capacity the cache was constructed with.
func (c *Optimal[_, _]) Cap() int {
	return c.residents.capacity
}

// Keys returns an iterator over the (unordered) resident keys.
func (c *Optimal[Key, _]) Keys() iter.Seq[Key] {
	return c.residents.keys()
}

// Order returns an iterator over the resident keys and their next use,
// in eviction order (farthest next use first).
func (c *Optimal[Key, Value]) Order() iter.Seq2[Key, int] {
	return func(yield func(Key, int) bool) {
		c.order.Ascend(func(entry *entry[Key, Value]) bool {
			return yield(entry.Name, entry.NextUse)
		})
	}
}
