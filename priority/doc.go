// Package priority implements a generic keyed priority queue. Every value is
// stored under a unique key, so callers can look up, re-prioritise or remove
// a value without searching for it.
//
// The queue is a binary min-heap ordered by a user-provided less function
// together with a map from key to heap slot.
//
// Key features:
//   - O(log n) insertion, removal and re-prioritisation
//   - O(1) peek and key lookup
//   - Fix restores order after a value was changed in place
//
// Basic usage:
//
//	pq := priority.NewQueue[string, int](func(a, b int) bool {
//	    return a < b
//	})
//
//	pq.Set("run-1", 5)
//	pq.Set("run-2", 3)
//
//	key, value, ok := pq.Peek() // "run-2", 3, true
//
//	pq.Set("run-2", 9) // re-prioritise
//	key, value, ok = pq.Pop() // "run-1", 5, true
//
// The less function must return true if a should leave the queue before b.
package priority
