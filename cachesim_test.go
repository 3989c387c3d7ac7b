package cachesim_test

import (
	"iter"
	"math/rand"
	"slices"
	"testing"
)

type residentSet[Key comparable] interface {
	Len() int
	Cap() int
	Keys() iter.Seq[Key]
}

// Fixed RNG seed for reproducibility.
// Change to test variance between runs.
const rngSeed = 1

func newReproducibleRNG() *rand.Rand {
	return rand.New(rand.NewSource(rngSeed))
}

func identity[Key any](key Key) Key { return key }

func makeRandomSequence(rng *rand.Rand, upperBound, length int) []int {
	keys := make([]int, length)
	for i := range keys {
		keys[i] = rng.Intn(upperBound)
	}
	return keys
}

func makeDistinct(length int) []int {
	keys := make([]int, length)
	for i := range keys {
		keys[i] = i + 1
	}
	return keys
}

func checkHits(tb testing.TB, got, want []bool, msg string) {
	tb.Helper()
	if slices.Equal(got, want) {
		return
	}
	tb.Fatalf(
		"%s: unexpected hit sequence"+
			"\n\tgot: %v"+
			"\n\twant: %v",
		msg, got, want)
}

func countHits(hits []bool) int {
	var count int
	for _, hit := range hits {
		if hit {
			count++
		}
	}
	return count
}

func checkSize[Key comparable](tb testing.TB, cache residentSet[Key], size int, action string) {
	tb.Helper()
	got := cache.Len()
	if got == size {
		return
	}
	tb.Fatalf(
		"expected cache to be specific size %s"+
			"\n\tgot: %d"+
			"\n\twant: %d",
		action, got, size)
}

func checkBounded[Key comparable](tb testing.TB, cache residentSet[Key], step int) {
	tb.Helper()
	var (
		length   = cache.Len()
		capacity = cache.Cap()
		keys     int
	)
	for range cache.Keys() {
		keys++
	}
	if length <= capacity && keys == length {
		return
	}
	tb.Fatalf(
		"capacity exceeded at step %d"+
			"\n\tlength: %d"+
			"\n\tkeys: %d"+
			"\n\tcapacity: %d",
		step, length, keys, capacity)
}

func keysMatch[Key comparable](tb testing.TB, cache residentSet[Key], want []Key, msg string) {
	tb.Helper()
	got := cache.Keys()
	if !keysEqualUnordered(want, got) {
		tb.Fatalf(
			"%s"+
				"\n\twant: %v"+
				"\n\tgot: %v",
			msg, want, slices.Collect(got))
	}
}

func keysEqualUnordered[Key comparable](want []Key, seq iter.Seq[Key]) bool {
	counts := make(map[Key]int, len(want))
	for _, key := range want {
		counts[key]++
	}
	for key := range seq {
		if counts[key] == 0 {
			return false
		}
		counts[key]--
	}
	for _, count := range counts {
		if count != 0 {
			return false
		}
	}
	return true
}

// referenceOptimal replays requests with a linear scan implementation of
// Belady's MIN (with bypass) and returns the number of hits.
func referenceOptimal(capacity int, requests []int) int {
	nextRequest := func(key, from int) int {
		for i := from; i < len(requests); i++ {
			if requests[i] == key {
				return i
			}
		}
		return len(requests)
	}
	var (
		resident = make([]int, 0, capacity)
		hits     int
	)
	for position, key := range requests {
		if slices.Contains(resident, key) {
			hits++
			continue
		}
		incoming := nextRequest(key, position+1)
		if incoming == len(requests) {
			continue
		}
		if len(resident) < capacity {
			resident = append(resident, key)
			continue
		}
		victim, farthest := -1, incoming
		for i, residentKey := range resident {
			if next := nextRequest(residentKey, position+1); next > farthest {
				victim, farthest = i, next
			}
		}
		if victim >= 0 {
			resident[victim] = key
		}
	}
	return hits
}
