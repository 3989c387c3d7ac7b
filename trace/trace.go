// Package trace reads request traces for the replacement engines.
//
// A trace is a stream of whitespace separated integers:
// the cache capacity, the number of requests n,
// and then exactly n request keys.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

type constError string

const (
	// ErrMalformed is wrapped by errors for tokens that are not
	// valid for their position in the trace.
	ErrMalformed = constError("malformed trace")
	// ErrTruncated is wrapped by errors for streams
	// that end before every declared request was read.
	ErrTruncated = constError("truncated trace")
)

func (errStr constError) Error() string { return string(errStr) }

// Trace is a parsed request trace.
type Trace struct {
	// Capacity is the cache size the trace should be replayed with.
	Capacity int
	// Keys are the requests, in replay order.
	Keys []int
}

// Len returns the number of requests.
func (t *Trace) Len() int { return len(t.Keys) }

type reader struct {
	scanner *bufio.Scanner
	keys    []int
}

// Read parses a trace from r.
// Errors for request keys name the 1-based request position
// and the last key that was read successfully.
func Read(r io.Reader) (*Trace, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	rd := reader{scanner: scanner}
	capacity, err := rd.header("capacity", 1)
	if err != nil {
		return nil, err
	}
	count, err := rd.header("request count", 0)
	if err != nil {
		return nil, err
	}
	rd.keys = make([]int, 0, min(count, 1<<20))
	for position := 1; position <= count; position++ {
		if err := rd.key(position, count); err != nil {
			return nil, err
		}
	}
	return &Trace{
		Capacity: capacity,
		Keys:     rd.keys,
	}, nil
}

func (rd *reader) next() (string, bool, error) {
	if rd.scanner.Scan() {
		return rd.scanner.Text(), true, nil
	}
	return "", false, rd.scanner.Err()
}

func (rd *reader) header(name string, minimum int) (int, error) {
	token, ok, err := rd.next()
	switch {
	case err != nil:
		return 0, fmt.Errorf("reading %s: %w", name, err)
	case !ok:
		return 0, fmt.Errorf("%w: missing %s", ErrTruncated, name)
	}
	value, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrMalformed, name, token)
	}
	if value < minimum {
		return 0, fmt.Errorf(
			"%w: %s must be >=%d but %d was given",
			ErrMalformed, name, minimum, value)
	}
	return value, nil
}

func (rd *reader) key(position, count int) error {
	token, ok, err := rd.next()
	switch {
	case err != nil:
		return fmt.Errorf("reading request %d%s: %w", position, rd.lastKey(), err)
	case !ok:
		return fmt.Errorf(
			"%w: request %d of %d is missing%s",
			ErrTruncated, position, count, rd.lastKey())
	}
	key, err := strconv.Atoi(token)
	if err != nil {
		return fmt.Errorf(
			"%w: request %d %q is not an integer%s",
			ErrMalformed, position, token, rd.lastKey())
	}
	rd.keys = append(rd.keys, key)
	return nil
}

func (rd *reader) lastKey() string {
	if len(rd.keys) == 0 {
		return " (no keys read)"
	}
	return fmt.Sprintf(" (last key read: %d)", rd.keys[len(rd.keys)-1])
}
