// Package ring is a specialized adaption of `container/ring`
// used as the intrusive entry list of the replacement engines.
//
// A resident cache entry is a single [Ring] element. The element is
// linked into exactly one bucket (a ring headed by an empty sentinel),
// so the entry and its position in the eviction index are the same
// memory; unlinking the element removes both at once.
package ring

import "iter"

type (
	// A Ring is an element of a circular list, or ring.
	// Rings do not have a beginning or end; a pointer to any ring element
	// serves as reference to the entire ring. The zero value for a Ring
	// is a one-element ring with a zero Value.
	Ring[Key comparable, Value any] struct {
		next, prev *Ring[Key, Value]
		Value      Value
		Metadata[Key]
	}
	// Metadata is the replacement state of a resident entry.
	Metadata[Key comparable] struct {
		// Name is the key the entry's value was produced for.
		Name Key
		// Frequency is the bucket the entry is linked into.
		// It always equals the key's history count while resident.
		Frequency int
		// NextUse is the trace position of the entry's next request.
		NextUse int
	}
)

func (r *Ring[Key, Value]) init() *Ring[Key, Value] {
	r.next = r
	r.prev = r
	return r
}

// NewSentinel returns an empty bucket head.
// The sentinel's own Value and Metadata are never read.
func NewSentinel[Key comparable, Value any]() *Ring[Key, Value] {
	return new(Ring[Key, Value]).init()
}

// Next returns the next ring element. r must not be empty.
func (r *Ring[Key, Value]) Next() *Ring[Key, Value] {
	if r.next == nil {
		return r.init()
	}
	return r.next
}

// Prev returns the previous ring element. r must not be empty.
func (r *Ring[Key, Value]) Prev() *Ring[Key, Value] {
	if r.next == nil {
		return r.init()
	}
	return r.prev
}

// Move moves n % r.Len() elements backward (n < 0) or forward (n >= 0)
// in the ring and returns that ring element. r must not be empty.
func (r *Ring[Key, Value]) Move(n int) *Ring[Key, Value] {
	if r.next == nil {
		return r.init()
	}
	switch {
	case n < 0:
		for ; n < 0; n++ {
			r = r.prev
		}
	case n > 0:
		for ; n > 0; n-- {
			r = r.next
		}
	}
	return r
}

// Link connects ring r with ring s such that r.Next()
// becomes s and returns the original value for r.Next().
// r must not be empty.
//
// If r and s point to the same ring, linking
// them removes the elements between r and s from the ring.
// The removed elements form a subring and the result is a
// reference to that subring.
//
// If r and s point to different rings, linking
// them creates a single ring with the elements of s inserted
// after r. The result points to the element following the
// last element of s after insertion.
func (r *Ring[Key, Value]) Link(s *Ring[Key, Value]) *Ring[Key, Value] {
	n := r.Next()
	if s != nil {
		p := s.Prev()
		// Note: Cannot use multiple assignment because
		// evaluation order of LHS is not specified.
		r.next = s
		s.prev = r
		n.prev = p
		p.next = n
	}
	return n
}

// Unlink removes n % r.Len() elements from the ring r, starting
// at r.Next(). If n % r.Len() == 0, r remains unchanged.
// The result is the removed subring. r must not be empty.
func (r *Ring[Key, Value]) Unlink(n int) *Ring[Key, Value] {
	if n <= 0 {
		return nil
	}
	return r.Link(r.Move(n + 1))
}

// Detach removes r from whatever ring it is linked into,
// leaving r as a one-element ring.
func (r *Ring[Key, Value]) Detach() *Ring[Key, Value] {
	if r.next == nil || r.next == r {
		return r.init()
	}
	return r.Prev().Unlink(1)
}

// PushFront links element e directly after the sentinel r.
// e must be detached.
func (r *Ring[Key, Value]) PushFront(e *Ring[Key, Value]) {
	r.Link(e)
}

// Front returns the first element after the sentinel r,
// or nil if the bucket is empty.
func (r *Ring[Key, Value]) Front() *Ring[Key, Value] {
	if r.Empty() {
		return nil
	}
	return r.next
}

// Empty reports whether sentinel r heads no elements.
func (r *Ring[Key, Value]) Empty() bool {
	return r.next == nil || r.next == r
}

// AppendAll moves every element headed by sentinel s
// behind the last element headed by sentinel r,
// preserving their order. s is left empty.
func (r *Ring[Key, Value]) AppendAll(s *Ring[Key, Value]) {
	if s.Empty() {
		return
	}
	elements := s.Unlink(s.Len() - 1)
	r.Prev().Link(elements)
}

// Len computes the number of elements in ring r.
// It executes in time proportional to the number of elements.
func (r *Ring[Key, Value]) Len() int {
	n := 0
	if r != nil {
		n = 1
		for p := r.Next(); p != r; p = p.next {
			n++
		}
	}
	return n
}

// Elements returns an iterator over the elements headed by sentinel r,
// front to back. The sentinel itself is not yielded.
// The iterator tolerates removal of the element it just yielded.
func (r *Ring[Key, Value]) Elements() iter.Seq[*Ring[Key, Value]] {
	return func(yield func(*Ring[Key, Value]) bool) {
		if r.Empty() {
			return
		}
		for p := r.next; p != r; {
			next := p.next
			if !yield(p) {
				return
			}
			p = next
		}
	}
}
