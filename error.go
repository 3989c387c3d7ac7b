package cachesim

import "fmt"

type constError string

const (
	// ErrInvalidCapacity may be returned from [NewLFU] and [NewOptimal].
	ErrInvalidCapacity = constError("invalid capacity")
	// ErrNotAnalyzed is the panic value of [Optimal.Lookup]
	// when the request trace was not analyzed first.
	ErrNotAnalyzed = constError("request trace was not analyzed")
)

func (errStr constError) Error() string { return string(errStr) }

func minCapacityError(capacity int) error {
	return fmt.Errorf(
		"%w: must be >=%d but %d was requested",
		ErrInvalidCapacity, MinimumCapacity, capacity)
}
