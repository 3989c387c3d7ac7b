package cachesim

import (
	"iter"

	"github.com/djdv/go-cachesim/internal/ring"
)

type (
	entry[Key comparable, Value any] = ring.Ring[Key, Value]
	// residents is the bounded resident set shared by both engines.
	// It owns the entries; eviction indices only link them.
	residents[Key comparable, Value any] struct {
		index    map[Key]*entry[Key, Value]
		capacity int
	}
)

// MinimumCapacity defines the lowest value supported by [NewLFU] and [NewOptimal].
const MinimumCapacity = 1

func newResidents[Key comparable, Value any](capacity int) (residents[Key, Value], error) {
	if capacity < MinimumCapacity {
		return residents[Key, Value]{}, minCapacityError(capacity)
	}
	return residents[Key, Value]{
		index:    make(map[Key]*entry[Key, Value], capacity),
		capacity: capacity,
	}, nil
}

func (rs *residents[Key, Value]) lookup(key Key) (*entry[Key, Value], bool) {
	entry, ok := rs.index[key]
	return entry, ok
}

func (rs *residents[_, _]) full() bool {
	return len(rs.index) == rs.capacity
}

// add creates a detached entry for key.
// The caller links it into its eviction index.
func (rs *residents[Key, Value]) add(key Key, value Value) *entry[Key, Value] {
	if debugging {
		assert(!rs.full(), "insert into a full cache")
		_, exists := rs.index[key]
		assert(!exists, "insert of a resident key")
	}
	entry := &entry[Key, Value]{
		Metadata: ring.Metadata[Key]{Name: key},
		Value:    value,
	}
	rs.index[key] = entry
	return entry
}

// remove drops the entry from the key index.
// The caller must already have unlinked it from its eviction index.
func (rs *residents[Key, Value]) remove(entry *entry[Key, Value]) {
	if debugging {
		assert(rs.index[entry.Name] == entry, "removal of a non-resident entry")
	}
	delete(rs.index, entry.Name)
}

func (rs *residents[Key, Value]) get(key Key) (Value, bool) {
	if entry, ok := rs.index[key]; ok {
		return entry.Value, true
	}
	var zero Value
	return zero, false
}

func (rs *residents[Key, _]) keys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for key := range rs.index {
			if !yield(key) {
				return
			}
		}
	}
}

func (rs *residents[_, _]) reset() {
	clear(rs.index)
}
