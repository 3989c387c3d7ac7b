// Package cachesim implements two page replacement engines
// used to compare eviction policies over a trace of key accesses:
// [LFU], an online least-frequently-used cache with a decaying
// popularity history, and [Optimal], the offline Belady (MIN) cache
// that sees the entire trace in advance.
//
// Both engines share the same contract: given a request,
// report whether the key was resident, and on a miss
// optionally load it through a caller supplied producer,
// without ever holding more than capacity entries.
// Rejecting an incoming key (leaving the cache unchanged)
// is a normal outcome and is reported as a miss.
//
// The following is a summary of the engine state (intended for maintainers).
//
// Glossary and invariants:
//
//   - Entry
//
//     A resident (key, value) pair. The entry is also the node that
//     orders it for eviction, so it can never outlive its index position.
//
//   - History (LFU)
//
//     Lifetime access count per key. Counts survive eviction, so a
//     popular key re-enters the cache with its old priority.
//
//     Bounded to 5 * capacity keys; exceeding the bound triggers aging.
//
//   - Bucket (LFU)
//
//     Resident entries sharing a frequency, newest first.
//     An entry's bucket always equals its history count.
//
//   - Call table (Optimal)
//
//     Per-key queue of trace positions that still have to be replayed.
//     The head of a queue is the key's current or next request.
//
//   - Eviction order (Optimal)
//
//     Resident entries ordered by next use, farthest first.
//
// Operations:
//
//   - Aging (LFU)
//
//     Every pass decrements each count. Non-resident keys with
//     a count of at most 1 are forgotten; resident counts never drop below 1.
//     Passes repeat until the history holds at most 2 * capacity keys.
//     Each pass strictly lowers every non-resident count,
//     and residents alone fit within the target, so aging terminates.
//
//   - Victim selection (LFU)
//
//     The front entry of the lowest non-empty bucket,
//     provided that bucket's frequency does not exceed the incoming key's count.
//     Otherwise the incoming key is rejected and only its count grows.
//
//   - Victim selection (Optimal)
//
//     The entry used farthest in the future. If the incoming key
//     is needed even later than that, the incoming key is rejected instead.
//     A key that will never be requested again is never cached.
//
// Engines are not safe for concurrent use; callers must
// serialize access to an instance (one engine per goroutine).
package cachesim
