package cachesim

import (
	"iter"

	"github.com/google/btree"

	"github.com/djdv/go-cachesim/internal/ring"
)

// frequencyIndex buckets resident entries by access count.
// Each bucket is a ring headed by a sentinel, newest entry first.
// The set of non-empty frequencies is kept ordered so the
// lowest one can be found without scanning empty buckets.
type frequencyIndex[Key comparable, Value any] struct {
	buckets  map[int]*entry[Key, Value]
	nonEmpty *btree.BTreeG[int]
}

const frequencyDegree = 8

func newFrequencyIndex[Key comparable, Value any]() frequencyIndex[Key, Value] {
	return frequencyIndex[Key, Value]{
		buckets:  make(map[int]*entry[Key, Value]),
		nonEmpty: btree.NewOrderedG[int](frequencyDegree),
	}
}

// push links a detached entry to the front of the bucket for frequency.
func (fi *frequencyIndex[Key, Value]) push(entry *entry[Key, Value], frequency int) {
	if debugging {
		assert(frequency >= 1, "resident entry below frequency 1")
	}
	bucket, ok := fi.buckets[frequency]
	if !ok {
		bucket = ring.NewSentinel[Key, Value]()
		fi.buckets[frequency] = bucket
		fi.nonEmpty.ReplaceOrInsert(frequency)
	}
	entry.Frequency = frequency
	bucket.PushFront(entry)
}

// remove unlinks the entry from its bucket,
// dropping the bucket if it became empty.
func (fi *frequencyIndex[Key, Value]) remove(entry *entry[Key, Value]) {
	frequency := entry.Frequency
	entry.Detach()
	if bucket := fi.buckets[frequency]; bucket.Empty() {
		delete(fi.buckets, frequency)
		fi.nonEmpty.Delete(frequency)
	}
}

// move relinks a linked entry to the front of another bucket.
func (fi *frequencyIndex[Key, Value]) move(entry *entry[Key, Value], frequency int) {
	fi.remove(entry)
	fi.push(entry, frequency)
}

// lowest returns the front entry of the lowest non-empty bucket,
// if that bucket's frequency is within bound.
func (fi *frequencyIndex[Key, Value]) lowest(bound int) (*entry[Key, Value], bool) {
	frequency, ok := fi.nonEmpty.Min()
	if !ok || frequency > bound {
		return nil, false
	}
	return fi.buckets[frequency].Front(), true
}

// decay lowers every bucket by one frequency, except bucket 1.
// Entries of bucket 2 are appended behind the entries already in bucket 1,
// every other bucket keeps its order.
func (fi *frequencyIndex[Key, Value]) decay() {
	frequencies := make([]int, 0, fi.nonEmpty.Len())
	fi.nonEmpty.Ascend(func(frequency int) bool {
		frequencies = append(frequencies, frequency)
		return true
	})
	for _, frequency := range frequencies {
		if frequency == 1 {
			continue
		}
		var (
			lowered = frequency - 1
			bucket  = fi.buckets[frequency]
		)
		for entry := range bucket.Elements() {
			entry.Frequency = lowered
		}
		delete(fi.buckets, frequency)
		fi.nonEmpty.Delete(frequency)
		if target, ok := fi.buckets[lowered]; ok {
			target.AppendAll(bucket)
			continue
		}
		fi.buckets[lowered] = bucket
		fi.nonEmpty.ReplaceOrInsert(lowered)
	}
}

// all yields each non-empty frequency with its entries front to back,
// lowest frequency first.
func (fi *frequencyIndex[Key, Value]) all() iter.Seq2[int, iter.Seq[Key]] {
	return func(yield func(int, iter.Seq[Key]) bool) {
		fi.nonEmpty.Ascend(func(frequency int) bool {
			bucket := fi.buckets[frequency]
			keys := func(yield func(Key) bool) {
				for entry := range bucket.Elements() {
					if !yield(entry.Name) {
						return
					}
				}
			}
			return yield(frequency, keys)
		})
	}
}

func (fi *frequencyIndex[_, _]) reset() {
	clear(fi.buckets)
	fi.nonEmpty.Clear(false)
}
