package cachesim

import "math"

type (
	// calls are the trace positions of one key that are yet to be replayed,
	// in increasing order. Consumed from the head.
	calls struct {
		positions []int
		head      int
	}
	callTable[Key comparable] map[Key]*calls
)

// never is the next use of a key that will not be requested again.
const never = math.MaxInt

func newCallTable[Key comparable](requests []Key) callTable[Key] {
	table := make(callTable[Key])
	for position, key := range requests {
		queue, ok := table[key]
		if !ok {
			queue = new(calls)
			table[key] = queue
		}
		queue.positions = append(queue.positions, position)
	}
	return table
}

func (c *calls) remaining() int {
	return len(c.positions) - c.head
}

// next returns the head position, or [never].
func (c *calls) next() int {
	if c.remaining() == 0 {
		return never
	}
	return c.positions[c.head]
}

// following returns the position after the head, or [never].
func (c *calls) following() int {
	if c.remaining() < 2 {
		return never
	}
	return c.positions[c.head+1]
}

func (c *calls) pop() {
	if debugging {
		assert(c.remaining() > 0, "pop of an exhausted call queue")
	}
	c.head++
}
