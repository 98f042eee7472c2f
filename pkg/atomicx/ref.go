package atomicx

import (
	"reflect"
	"sync/atomic"
)

// Ref is an atomic reference holding a value of type T.
//
// The zero value is not usable; construct with NewRef.
type Ref[T any] struct {
	p  atomic.Pointer[T]
	eq func(a, b T) bool
}

// Option configures a Ref.
type Option[T any] func(*Ref[T])

// WithEqual sets the value equality used by the conditional operations.
// Defaults to reflect.DeepEqual.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(r *Ref[T]) {
		if eq != nil {
			r.eq = eq
		}
	}
}

// NewRef creates a reference holding initial.
func NewRef[T any](initial T, opts ...Option[T]) *Ref[T] {
	r := &Ref[T]{
		eq: func(a, b T) bool {
			return reflect.DeepEqual(a, b)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.p.Store(&initial)
	return r
}

// Get returns the current value.
func (r *Ref[T]) Get() T {
	return *r.p.Load()
}

// Set unconditionally replaces the current value.
func (r *Ref[T]) Set(value T) {
	r.p.Store(&value)
}

// Swap replaces the current value and returns the previous one.
func (r *Ref[T]) Swap(value T) T {
	return *r.p.Swap(&value)
}

// CompareAndSwap replaces the current value with next if it equals
// expected. Returns true on success.
func (r *Ref[T]) CompareAndSwap(expected, next T) bool {
	for {
		cur := r.p.Load()
		if !r.eq(*cur, expected) {
			return false
		}
		if r.p.CompareAndSwap(cur, &next) {
			return true
		}
		// A concurrent writer won; re-check against the new value.
	}
}

// GetOrSetIf replaces the current value with the supplied one if it equals
// expected, and returns whatever value ends up current. The supplier may be
// invoked more than once under contention and must therefore be pure.
func (r *Ref[T]) GetOrSetIf(expected T, supply func() T) T {
	for {
		cur := r.p.Load()
		if !r.eq(*cur, expected) {
			return *cur
		}
		next := supply()
		if r.p.CompareAndSwap(cur, &next) {
			return next
		}
	}
}

// Update replaces the current value with fn(current), retrying until the
// swap wins, and returns the new value. fn may be invoked more than once
// under contention and must therefore be pure.
func (r *Ref[T]) Update(fn func(current T) T) T {
	for {
		cur := r.p.Load()
		next := fn(*cur)
		if r.p.CompareAndSwap(cur, &next) {
			return next
		}
	}
}
