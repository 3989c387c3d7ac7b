package cachesim

// history remembers the access count of every recently seen key,
// resident or not.
type history[Key comparable] struct {
	counts map[Key]int
	// limit is the size that triggers aging,
	// target is the size aging reduces to.
	limit, target int
}

const (
	historyMultiplier = 5
	// The aging target is 2/5 (0.4) of the limit.
	historyTargetNumerator   = 2
	historyTargetDenominator = 5
)

func newHistory[Key comparable](capacity int) history[Key] {
	limit := capacity * historyMultiplier
	return history[Key]{
		counts: make(map[Key]int, limit+1),
		limit:  limit,
		target: limit * historyTargetNumerator / historyTargetDenominator,
	}
}

func (h *history[Key]) overflowing() bool {
	return len(h.counts) > h.limit
}

// observe returns the count of key, recording it as 0 if unseen.
func (h *history[Key]) observe(key Key) int {
	count, ok := h.counts[key]
	if !ok {
		h.counts[key] = 0
	}
	return count
}

func (h *history[Key]) increment(key Key) int {
	h.counts[key]++
	return h.counts[key]
}

// age performs a single aging pass.
// Keys for which resident returns false are forgotten once
// their count is at most 1; resident keys are kept at 1 or above.
func (h *history[Key]) age(resident func(Key) bool) {
	for key, count := range h.counts {
		switch {
		case resident(key):
			if count > 1 {
				h.counts[key] = count - 1
			}
		case count <= 1:
			delete(h.counts, key)
		default:
			h.counts[key] = count - 1
		}
	}
}

func (h *history[Key]) count(key Key) (int, bool) {
	count, ok := h.counts[key]
	return count, ok
}

func (h *history[Key]) len() int {
	return len(h.counts)
}
