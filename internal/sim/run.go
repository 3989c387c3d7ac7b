package sim

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

type (
	// Step describes one replayed request.
	Step struct {
		Policy   Policy
		Position int
		Key      int
		Hit      bool
	}
	// Observer is called after every replayed request.
	Observer func(Step) error
	// Result is the tally of one replay.
	Result struct {
		Policy       string
		Hits, Misses int
	}
	// Progress counts replayed requests across concurrent runs.
	Progress struct {
		done, total atomic.Int64
	}
)

// Requests returns the number of replayed requests.
func (r Result) Requests() int { return r.Hits + r.Misses }

// HitRate returns hits as a fraction of requests.
func (r Result) HitRate() float64 {
	if r.Requests() == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Requests())
}

// Done returns the replayed and the expected number of requests.
func (p *Progress) Done() (done, total int64) {
	return p.done.Load(), p.total.Load()
}

const cancelCheckInterval = 1 << 10

// Run replays keys through policy in order.
// The context is checked periodically between requests;
// a non-nil observer error stops the replay.
func Run(ctx context.Context, policy Policy, keys []int, observe Observer) (Result, error) {
	result := Result{Policy: policy.Name()}
	for position, key := range keys {
		if position%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}
		hit := policy.Access(position, key)
		if hit {
			result.Hits++
		} else {
			result.Misses++
		}
		if observe == nil {
			continue
		}
		if err := observe(Step{
			Policy:   policy,
			Position: position,
			Key:      key,
			Hit:      hit,
		}); err != nil {
			return result, err
		}
	}
	return result, nil
}

// RunAll replays keys through each named policy concurrently,
// one goroutine and one policy instance per name.
// Results are returned in the order of names.
// progress may be nil.
func RunAll(
	ctx context.Context, capacity int, keys []int,
	names []string, progress *Progress,
) ([]Result, error) {
	policies := make([]Policy, len(names))
	for i, name := range names {
		policy, err := New(name, capacity, keys)
		if err != nil {
			return nil, err
		}
		policies[i] = policy
	}
	var observe Observer
	if progress != nil {
		progress.total.Add(int64(len(keys) * len(names)))
		observe = func(Step) error {
			progress.done.Add(1)
			return nil
		}
	}
	var (
		results     = make([]Result, len(names))
		group, gCtx = errgroup.WithContext(ctx)
	)
	for i, policy := range policies {
		group.Go(func() error {
			result, err := Run(gCtx, policy, keys, observe)
			results[i] = result
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
