// Package promise provides a promise adapter over the settable future.
//
// A Promise settles exactly once with either a value or an error. Compared
// to the bare future it adds callback registration and value transformation:
//
//   - Claim: blocking retrieval of the settled outcome
//   - Then: success/failure callbacks, invoked off the caller's goroutine
//   - Map / FlatMap: derived promises built without blocking the caller
//
// Usage:
//
//	p := promise.New[int]()
//	go func() { _ = p.Complete(42) }()
//	doubled := promise.Map(p, func(v int) int { return v * 2 })
//	v, err := doubled.Claim(ctx)
//
// @req RQ-0302
// @design DS-0302
package promise
