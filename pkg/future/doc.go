// Package future provides a settable single-assignment future for CowKit.
//
// A Settable is a write-once value cell where the responsibility for
// producing the result is external to the future instance. It is useful
// when not all inputs are available at construction time.
//
// Usage:
//
//	f := future.NewSettable[string]()
//	go func() { _ = f.Set("ready") }()
//	v, err := f.Get(ctx)
//
// Thread Safety:
//
// All operations are thread-safe. Set publishes through a compare-and-swap
// loop and releases a one-shot done channel; any number of goroutines may
// block on Get concurrently. Cancellation is not supported by design.
//
// @req RQ-0301
// @design DS-0301
package future
