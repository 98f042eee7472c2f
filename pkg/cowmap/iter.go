// Package cowmap provides a copy-on-write map.
package cowmap

import "iter"

// Iterator is a one-shot, read-only iterator over a view's snapshot.
//
// It wraps the sequence of the snapshot that was current when the iterator
// was created; later writes to the map are not reflected. In-place removal
// is rejected: callers remove through the owning view, which re-enters the
// map's exclusive mutation path.
type Iterator[T any] struct {
	next func() (T, bool)
	stop func()
	done bool
}

func newIterator[T any](seq iter.Seq[T]) *Iterator[T] {
	next, stop := iter.Pull(seq)
	return &Iterator[T]{next: next, stop: stop}
}

// Next returns the next element. The second result is false once the
// sequence is exhausted; the iterator is released at that point.
func (it *Iterator[T]) Next() (T, bool) {
	if it.done {
		var zero T
		return zero, false
	}
	v, ok := it.next()
	if !ok {
		it.Stop()
	}
	return v, ok
}

// Remove is not supported on a read-only iterator.
func (it *Iterator[T]) Remove() error {
	return ErrUnsupported
}

// Stop releases the iterator early. Safe to call more than once.
func (it *Iterator[T]) Stop() {
	if it.done {
		return
	}
	it.done = true
	it.stop()
}
