// Package sim replays request traces through replacement policies
// and tallies their hits.
package sim

import (
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/hashicorp/golang-lru/arc/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/djdv/go-cachesim"
)

// Policy is a cache that can replay one trace, position by position.
// A Policy is owned by a single goroutine.
type Policy interface {
	Name() string
	// Access replays the request for key at position
	// and reports whether it was a hit.
	Access(position, key int) bool
	Len() int
	Keys() iter.Seq[int]
}

// Dumper is implemented by policies that can describe
// their internal state for verbose output.
type Dumper interface {
	Dump(w io.Writer) error
}

// Policy names accepted by [New].
const (
	LFU     = "LFU"
	Optimal = "Optimal"
	LRU     = "LRU"
	ARC     = "ARC"
)

// Names returns every policy name accepted by [New].
func Names() []string {
	return []string{LFU, Optimal, LRU, ARC}
}

type constError string

// ErrUnknownPolicy may be returned from [New].
const ErrUnknownPolicy = constError("unknown policy")

func (errStr constError) Error() string { return string(errStr) }

// page imitates a slow page fetch.
func page(key int) int { return key }

// New constructs the named policy for replaying keys.
func New(name string, capacity int, keys []int) (Policy, error) {
	switch name {
	case LFU:
		cache, err := cachesim.NewLFU[int, int](capacity)
		if err != nil {
			return nil, err
		}
		return lfuPolicy{cache}, nil
	case Optimal:
		cache, err := cachesim.NewOptimal[int, int](capacity)
		if err != nil {
			return nil, err
		}
		cache.SetRequests(keys)
		cache.Analyze()
		return optimalPolicy{cache}, nil
	case LRU:
		cache, err := lru.New[int, int](capacity)
		if err != nil {
			return nil, err
		}
		return lruPolicy{cache}, nil
	case ARC:
		cache, err := arc.NewARC[int, int](capacity)
		if err != nil {
			return nil, err
		}
		return arcPolicy{cache}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

type (
	lfuPolicy     struct{ *cachesim.LFU[int, int] }
	optimalPolicy struct{ *cachesim.Optimal[int, int] }
	lruPolicy     struct{ *lru.Cache[int, int] }
	arcPolicy     struct{ *arc.ARCCache[int, int] }
)

func (lfuPolicy) Name() string { return LFU }

func (p lfuPolicy) Access(_, key int) bool { return p.Lookup(key, page) }

func (p lfuPolicy) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "history size = %d\nbuckets:\n", p.HistoryLen()); err != nil {
		return err
	}
	for frequency, keys := range p.Buckets() {
		if _, err := fmt.Fprintf(w, "%d: %v\n", frequency, slices.Collect(keys)); err != nil {
			return err
		}
	}
	return nil
}

func (optimalPolicy) Name() string { return Optimal }

func (p optimalPolicy) Access(position, _ int) bool { return p.Lookup(position, page) }

func (p optimalPolicy) Dump(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "eviction order:"); err != nil {
		return err
	}
	for key, next := range p.Order() {
		if _, err := fmt.Fprintf(w, "%d next use %d\n", key, next); err != nil {
			return err
		}
	}
	return nil
}

func (lruPolicy) Name() string { return LRU }

func (p lruPolicy) Access(_, key int) bool {
	if _, ok := p.Get(key); ok {
		return true
	}
	p.Add(key, page(key))
	return false
}

func (p lruPolicy) Keys() iter.Seq[int] { return slices.Values(p.Cache.Keys()) }

func (arcPolicy) Name() string { return ARC }

func (p arcPolicy) Access(_, key int) bool {
	if _, ok := p.Get(key); ok {
		return true
	}
	p.Add(key, page(key))
	return false
}

func (p arcPolicy) Keys() iter.Seq[int] { return slices.Values(p.ARCCache.Keys()) }
