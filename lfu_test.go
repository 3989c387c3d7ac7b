package cachesim_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/djdv/go-cachesim"
)

func TestLFU(t *testing.T) {
	t.Run("invalid capacity", lfuInvalidCapacity)
	t.Run("basic", lfuBasic)
	t.Run("reject unpopular", lfuRejectUnpopular)
	t.Run("history persistence", lfuHistoryPersistence)
	t.Run("recency tie break", lfuRecencyTieBreak)
	t.Run("distinct keys", lfuDistinct)
	t.Run("aging trigger", lfuAgingTrigger)
	t.Run("aging decays residents", lfuAgingDecaysResidents)
	t.Run("monotonic frequency", lfuMonotonic)
	t.Run("capacity bounds", lfuCapacityBounds)
	t.Run("deterministic replay", lfuDeterministic)
	t.Run("reset", lfuReset)
}

func lfuInvalidCapacity(t *testing.T) {
	invalidSizes := []int{-1, 0}
	for _, capacity := range invalidSizes {
		t.Run(fmt.Sprintf("%d", capacity), func(t *testing.T) {
			t.Parallel()
			cache, err := cachesim.NewLFU[int, int](capacity)
			if cache != nil || !errors.Is(err, cachesim.ErrInvalidCapacity) {
				t.Errorf(
					"NewLFU did not return an error when passed an invalid capacity: %d",
					capacity,
				)
			}
		})
	}
}

func newLFU[Key comparable, Value any](tb testing.TB, capacity int) *cachesim.LFU[Key, Value] {
	tb.Helper()
	cache, err := cachesim.NewLFU[Key, Value](capacity)
	if err != nil {
		tb.Fatal(err)
	}
	return cache
}

func replayLFU(cache *cachesim.LFU[int, int], requests []int) []bool {
	hits := make([]bool, len(requests))
	for i, key := range requests {
		hits[i] = cache.Lookup(key, identity)
	}
	return hits
}

func checkFrequency[Key comparable, Value any](
	tb testing.TB,
	cache *cachesim.LFU[Key, Value],
	key Key, want int,
) {
	tb.Helper()
	got, ok := cache.Frequency(key)
	if ok && got == want {
		return
	}
	tb.Fatalf(
		"unexpected frequency for key %v"+
			"\n\tgot: %d (%t)"+
			"\n\twant: %d",
		key, got, ok, want)
}

// checkBuckets verifies every resident key sits in the
// bucket matching its history count.
func checkBuckets[Key comparable, Value any](tb testing.TB, cache *cachesim.LFU[Key, Value]) {
	tb.Helper()
	var residents int
	for frequency, keys := range cache.Buckets() {
		if frequency < 1 {
			tb.Fatalf("bucket below frequency 1: %d", frequency)
		}
		for key := range keys {
			residents++
			if got, ok := cache.Frequency(key); !ok || got != frequency {
				tb.Fatalf(
					"key %v in bucket %d has history count %d (%t)",
					key, frequency, got, ok)
			}
			if _, ok := cache.Get(key); !ok {
				tb.Fatalf("bucket %d holds non-resident key %v", frequency, key)
			}
		}
	}
	checkSize(tb, cache, residents, "counted from buckets")
}

func lfuBasic(t *testing.T) {
	t.Parallel()
	var (
		cache = newLFU[int, int](t, 2)
		hits  = replayLFU(cache, []int{1, 2, 1, 3})
	)
	checkHits(t, hits, []bool{false, false, true, false}, "basic")
	checkSize(t, cache, 2, "after trace")
	keysMatch(t, cache, []int{1, 2}, "unexpected residents")
	checkFrequency(t, cache, 1, 2)
	checkFrequency(t, cache, 2, 1)
	checkFrequency(t, cache, 3, 1)
	checkBuckets(t, cache)
}

func lfuRejectUnpopular(t *testing.T) {
	t.Parallel()
	var (
		cache    = newLFU[string, int](t, 1)
		produced int
		produce  = func(string) int { produced++; return produced }
	)
	cache.Lookup("hot", produce)
	cache.Lookup("hot", produce)
	if cache.Lookup("cold", produce) {
		t.Fatal("unseen key reported as hit")
	}
	if produced != 1 {
		t.Fatalf("rejected key was produced: %d productions", produced)
	}
	keysMatch(t, cache, []string{"hot"}, "rejection changed residents")
	checkFrequency(t, cache, "cold", 1)
	if got, ok := cache.Get("hot"); !ok || got != 1 {
		t.Fatalf("unexpected value for resident key: %d %t", got, ok)
	}
}

func lfuHistoryPersistence(t *testing.T) {
	t.Parallel()
	cache := newLFU[int, int](t, 1)
	t.Run("build popularity", func(t *testing.T) {
		hits := replayLFU(cache, []int{1, 1, 1, 2, 2, 2, 2})
		checkHits(t, hits,
			[]bool{false, true, true, false, false, false, false},
			"build popularity")
		// 2 reaches the count of 1 and displaces it.
		keysMatch(t, cache, []int{2}, "popular key was not admitted")
		checkFrequency(t, cache, 1, 3)
		checkFrequency(t, cache, 2, 4)
	})
	t.Run("re-enter with history", func(t *testing.T) {
		if cache.Lookup(1, identity) {
			t.Fatal("evicted key reported as hit")
		}
		keysMatch(t, cache, []int{2}, "key readmitted below resident count")
		checkFrequency(t, cache, 1, 4)
		cache.Lookup(1, identity)
		keysMatch(t, cache, []int{1}, "key with matching count was not readmitted")
		checkFrequency(t, cache, 1, 5)
		checkBuckets(t, cache)
	})
}

func lfuRecencyTieBreak(t *testing.T) {
	t.Parallel()
	var (
		cache = newLFU[int, int](t, 2)
		// 1 and 2 share frequency 1; 2 was inserted last
		// and sits at the front of the bucket.
		_ = replayLFU(cache, []int{1, 2, 3, 3})
	)
	keysMatch(t, cache, []int{1, 3}, "unexpected victim among equal frequencies")
	checkBuckets(t, cache)
}

func lfuDistinct(t *testing.T) {
	t.Parallel()
	const capacity = 3
	var (
		cache = newLFU[int, int](t, capacity)
		hits  = replayLFU(cache, makeDistinct(100))
	)
	if got := countHits(hits); got != 0 {
		t.Fatalf("expected no hits for distinct keys, got %d", got)
	}
	checkSize(t, cache, capacity, "after distinct keys")
}

func lfuAgingTrigger(t *testing.T) {
	t.Parallel()
	const (
		capacity = 2
		limit    = capacity * 5
		target   = limit * 2 / 5
	)
	cache := newLFU[int, int](t, capacity)
	replayLFU(cache, makeDistinct(limit+1))
	if got := cache.HistoryLen(); got != limit+1 {
		t.Fatalf("history aged before exceeding its bound: %d", got)
	}
	cache.Lookup(limit+2, identity)
	if got := cache.HistoryLen(); got > target {
		t.Fatalf(
			"history not aged to target"+
				"\n\tgot: %d"+
				"\n\twant: <=%d",
			got, target)
	}
	for key := range cache.Keys() {
		if _, ok := cache.Frequency(key); !ok {
			t.Fatalf("aging forgot resident key %d", key)
		}
	}
	keysMatch(t, cache, []int{1, 2}, "aging changed residents")
	checkBuckets(t, cache)
}

func lfuAgingDecaysResidents(t *testing.T) {
	t.Parallel()
	const (
		firstUnseen = 10
		unseen      = 8
		straggler   = firstUnseen + unseen
		trigger     = straggler + 1
	)
	cache := newLFU[int, int](t, 2)
	replayLFU(cache, []int{1, 1, 1, 1, 1, 2, 2, 2})
	// Each unseen key is requested twice, and rejected twice.
	for key := firstUnseen; key < straggler; key++ {
		replayLFU(cache, []int{key, key})
	}
	cache.Lookup(straggler, identity)
	checkFrequency(t, cache, 1, 5)
	checkFrequency(t, cache, 2, 3)
	if got := cache.HistoryLen(); got != 11 {
		t.Fatalf("unexpected history size before aging: %d", got)
	}
	// Two passes: the first forgets the straggler,
	// the second forgets the keys seen twice.
	cache.Lookup(trigger, identity)
	if got := cache.HistoryLen(); got != 3 {
		t.Fatalf("unexpected history size after aging: %d", got)
	}
	checkFrequency(t, cache, 1, 3)
	checkFrequency(t, cache, 2, 1)
	checkFrequency(t, cache, trigger, 1)
	for _, key := range []int{firstUnseen, straggler} {
		if _, ok := cache.Frequency(key); ok {
			t.Fatalf("aging kept unpopular non-resident key %d", key)
		}
	}
	checkBuckets(t, cache)
	// Decayed to 1, key 2 is now the victim.
	cache.Lookup(trigger, identity)
	keysMatch(t, cache, []int{1, trigger}, "decayed resident was not evicted")
	checkFrequency(t, cache, trigger, 2)
	checkBuckets(t, cache)
}

func lfuMonotonic(t *testing.T) {
	t.Parallel()
	const (
		capacity = 16
		universe = capacity * 5 // History never exceeds its bound.
	)
	var (
		cache    = newLFU[int, int](t, capacity)
		requests = makeRandomSequence(newReproducibleRNG(), universe, 4096)
	)
	for step, key := range requests {
		before, _ := cache.Frequency(key)
		cache.Lookup(key, identity)
		after, _ := cache.Frequency(key)
		if after != before+1 {
			t.Fatalf(
				"frequency of %d did not grow by one at step %d"+
					"\n\tbefore: %d"+
					"\n\tafter: %d",
				key, step, before, after)
		}
	}
	checkBuckets(t, cache)
}

func lfuCapacityBounds(t *testing.T) {
	for _, test := range []struct {
		capacity, universe int
	}{
		{1, 4},
		{2, 64},
		{8, 16},
		{8, 1024},
		{32, 256},
	} {
		t.Run(fmt.Sprintf("Cap%d/Keys%d", test.capacity, test.universe), func(t *testing.T) {
			t.Parallel()
			var (
				cache    = newLFU[int, int](t, test.capacity)
				requests = makeRandomSequence(newReproducibleRNG(), test.universe, 8192)
			)
			for step, key := range requests {
				cache.Lookup(key, identity)
				checkBounded(t, cache, step)
				if cache.HistoryLen() > test.capacity*5+1 {
					t.Fatalf("history exceeds its bound at step %d: %d",
						step, cache.HistoryLen())
				}
			}
			checkBuckets(t, cache)
		})
	}
}

func lfuDeterministic(t *testing.T) {
	t.Parallel()
	const capacity = 8
	requests := makeRandomSequence(newReproducibleRNG(), 128, 8192)
	first := replayLFU(newLFU[int, int](t, capacity), requests)
	second := replayLFU(newLFU[int, int](t, capacity), requests)
	checkHits(t, second, first, "replay of the same trace")
}

func lfuReset(t *testing.T) {
	t.Parallel()
	cache := newLFU[int, int](t, 2)
	replayLFU(cache, []int{1, 2, 1})
	cache.Reset()
	checkSize(t, cache, 0, "after reset")
	if got := cache.HistoryLen(); got != 0 {
		t.Fatalf("history survived reset: %d", got)
	}
	checkHits(t, replayLFU(cache, []int{1, 1}), []bool{false, true}, "after reset")
	checkBuckets(t, cache)
}
