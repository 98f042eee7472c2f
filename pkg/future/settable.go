package future

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"
)

var (
	// ErrAlreadySet is returned by Set when the future already holds a
	// different value. Re-setting the same value is a no-op.
	ErrAlreadySet = errors.New("future: cannot change value after it has been set")

	// ErrTimeout is returned by GetTimeout when the deadline elapses
	// before the future completes.
	ErrTimeout = errors.New("future: timed out waiting for value")
)

// Settable is a single-assignment future.
//
// The zero value is not usable; construct with NewSettable.
type Settable[T any] struct {
	ref  atomic.Pointer[box[T]]
	done chan struct{}
	eq   func(a, b T) bool
}

// box wraps the value so a nil-able pointer can mark completion even for
// zero values.
type box[T any] struct {
	value T
}

// Option configures a Settable.
type Option[T any] func(*Settable[T])

// WithEqual sets the equality used to decide whether a second Set carries
// the same value. Defaults to reflect.DeepEqual.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(s *Settable[T]) {
		if eq != nil {
			s.eq = eq
		}
	}
}

// NewSettable creates an incomplete future.
func NewSettable[T any](opts ...Option[T]) *Settable[T] {
	s := &Settable[T]{
		done: make(chan struct{}),
		eq: func(a, b T) bool {
			return reflect.DeepEqual(a, b)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set completes the future with value.
//
// Setting an already-completed future with an equal value is a no-op;
// setting it with a different value returns ErrAlreadySet. The done channel
// is released exactly once, at the moment the value is first durably set.
func (s *Settable[T]) Set(value T) error {
	for {
		if old := s.ref.Load(); old != nil {
			if !s.eq(old.value, value) {
				return ErrAlreadySet
			}
			return nil
		}
		if !s.ref.CompareAndSwap(nil, &box[T]{value: value}) {
			// Lost the race; re-check what won.
			continue
		}
		close(s.done)
		return nil
	}
}

// Get blocks until the future completes or ctx is done, in which case
// ctx.Err() is returned.
func (s *Settable[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-s.done:
		return s.ref.Load().value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// GetTimeout blocks until the future completes or the timeout elapses, in
// which case an error wrapping ErrTimeout is returned.
func (s *Settable[T]) GetTimeout(timeout time.Duration) (T, error) {
	select {
	case <-s.done:
		return s.ref.Load().value, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.done:
		return s.ref.Load().value, nil
	case <-timer.C:
		var zero T
		return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

// TryGet returns the value without blocking.
// The second result is false while the future is incomplete.
func (s *Settable[T]) TryGet() (T, bool) {
	if b := s.ref.Load(); b != nil {
		return b.value, true
	}
	var zero T
	return zero, false
}

// IsDone reports whether the future has completed.
func (s *Settable[T]) IsDone() bool {
	return s.ref.Load() != nil
}

// Done returns a channel closed when the future completes.
func (s *Settable[T]) Done() <-chan struct{} {
	return s.done
}

// Cancel always reports false: a settable future is not cancellable.
func (s *Settable[T]) Cancel() bool {
	return false
}

// IsCancelled always reports false.
func (s *Settable[T]) IsCancelled() bool {
	return false
}
