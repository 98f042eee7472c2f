package promise

import (
	"context"
	"errors"
	"fmt"

	"github.com/yndnr/cowkit-go/pkg/future"
)

// ErrAlreadySettled is returned by Complete and Fail when the promise has
// already settled with a different outcome. Settling again with an equal
// outcome is a no-op, mirroring the future's single-assignment rule.
var ErrAlreadySettled = errors.New("promise: already settled with a different outcome")

// outcome is the settled state: exactly one of value or err is meaningful.
type outcome[T any] struct {
	value T
	err   error
}

// Promise is a single-settlement promise.
//
// The zero value is not usable; construct with New, Resolved or Rejected.
type Promise[T any] struct {
	cell *future.Settable[outcome[T]]
}

// New creates an unsettled promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{cell: future.NewSettable[outcome[T]]()}
}

// Resolved creates a promise already settled with value.
func Resolved[T any](value T) *Promise[T] {
	p := New[T]()
	_ = p.Complete(value)
	return p
}

// Rejected creates a promise already settled with err.
func Rejected[T any](err error) *Promise[T] {
	p := New[T]()
	_ = p.Fail(err)
	return p
}

// Complete settles the promise with value.
func (p *Promise[T]) Complete(value T) error {
	return p.settle(outcome[T]{value: value})
}

// Fail settles the promise with err, which must be non-nil.
func (p *Promise[T]) Fail(err error) error {
	if err == nil {
		return fmt.Errorf("promise: Fail requires a non-nil error")
	}
	return p.settle(outcome[T]{err: err})
}

func (p *Promise[T]) settle(o outcome[T]) error {
	if err := p.cell.Set(o); err != nil {
		if errors.Is(err, future.ErrAlreadySet) {
			return ErrAlreadySettled
		}
		return err
	}
	return nil
}

// Claim blocks until the promise settles and returns its outcome.
// A ctx expiry before settlement returns ctx.Err().
func (p *Promise[T]) Claim(ctx context.Context) (T, error) {
	o, err := p.cell.Get(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return o.value, o.err
}

// MustClaim blocks until the promise settles and returns the value,
// panicking if the promise settled with an error.
func (p *Promise[T]) MustClaim() T {
	o, _ := p.cell.Get(context.Background())
	if o.err != nil {
		panic(o.err)
	}
	return o.value
}

// Then registers callbacks for the settled outcome. The callbacks run on a
// completion goroutine, never on the caller's; registering after settlement
// still fires asynchronously. Either callback may be nil. Returns the
// promise for chaining.
func (p *Promise[T]) Then(onSuccess func(T), onFailure func(error)) *Promise[T] {
	go func() {
		<-p.cell.Done()
		o, _ := p.cell.TryGet()
		if o.err != nil {
			if onFailure != nil {
				onFailure(o.err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(o.value)
		}
	}()
	return p
}

// TryClaim returns the outcome without blocking.
// The boolean is false while the promise is unsettled.
func (p *Promise[T]) TryClaim() (T, error, bool) {
	o, ok := p.cell.TryGet()
	if !ok {
		var zero T
		return zero, nil, false
	}
	return o.value, o.err, true
}

// IsDone reports whether the promise has settled.
func (p *Promise[T]) IsDone() bool {
	return p.cell.IsDone()
}

// Done returns a channel closed when the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.cell.Done()
}

// Map derives a promise by transforming the settled value with fn.
// The caller is never blocked; failures propagate untransformed.
func Map[T, U any](p *Promise[T], fn func(T) U) *Promise[U] {
	d := New[U]()
	go func() {
		<-p.cell.Done()
		o, _ := p.cell.TryGet()
		if o.err != nil {
			_ = d.Fail(o.err)
			return
		}
		_ = d.Complete(fn(o.value))
	}()
	return d
}

// FlatMap derives a promise by chaining a dependent promise produced from
// the settled value. The caller is never blocked.
func FlatMap[T, U any](p *Promise[T], fn func(T) *Promise[U]) *Promise[U] {
	d := New[U]()
	go func() {
		<-p.cell.Done()
		o, _ := p.cell.TryGet()
		if o.err != nil {
			_ = d.Fail(o.err)
			return
		}
		inner := fn(o.value)
		<-inner.cell.Done()
		io, _ := inner.cell.TryGet()
		if io.err != nil {
			_ = d.Fail(io.err)
			return
		}
		_ = d.Complete(io.value)
	}()
	return d
}
