package promise

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestPromise_CompleteAndClaim(t *testing.T) {
	p := New[int]()

	if p.IsDone() {
		t.Error("fresh promise should not be done")
	}

	if err := p.Complete(42); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	got, err := p.Claim(context.Background())
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Claim() = %d, want 42", got)
	}
}

func TestPromise_FailAndClaim(t *testing.T) {
	p := New[int]()

	if err := p.Fail(errBoom); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	_, err := p.Claim(context.Background())
	if !errors.Is(err, errBoom) {
		t.Errorf("Claim() error = %v, want errBoom", err)
	}
}

func TestPromise_FailNilError(t *testing.T) {
	p := New[int]()

	if err := p.Fail(nil); err == nil {
		t.Error("Fail(nil) should be rejected")
	}
	if p.IsDone() {
		t.Error("a rejected Fail(nil) must not settle the promise")
	}
}

func TestPromise_SettleTwice(t *testing.T) {
	p := New[int]()

	if err := p.Complete(1); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if err := p.Complete(1); err != nil {
		t.Errorf("re-completing with an equal value should be a no-op, got %v", err)
	}
	if err := p.Complete(2); !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("Complete(2) error = %v, want ErrAlreadySettled", err)
	}
	if err := p.Fail(errBoom); !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("Fail() after Complete error = %v, want ErrAlreadySettled", err)
	}
}

func TestPromise_Resolved(t *testing.T) {
	p := Resolved("value")

	if !p.IsDone() {
		t.Error("Resolved() should be settled")
	}
	got, err := p.Claim(context.Background())
	if err != nil || got != "value" {
		t.Errorf("Claim() = (%q, %v), want (value, nil)", got, err)
	}
}

func TestPromise_Rejected(t *testing.T) {
	p := Rejected[string](errBoom)

	if !p.IsDone() {
		t.Error("Rejected() should be settled")
	}
	if _, err := p.Claim(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("Claim() error = %v, want errBoom", err)
	}
}

func TestPromise_ClaimCancelled(t *testing.T) {
	p := New[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Claim(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Claim() error = %v, want context.Canceled", err)
	}
}

func TestPromise_MustClaim(t *testing.T) {
	if got := Resolved(7).MustClaim(); got != 7 {
		t.Errorf("MustClaim() = %d, want 7", got)
	}
}

func TestPromise_MustClaimPanicsOnFailure(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustClaim() on a rejected promise should panic")
		}
	}()
	Rejected[int](errBoom).MustClaim()
}

func TestPromise_TryClaim(t *testing.T) {
	p := New[int]()

	if _, _, ok := p.TryClaim(); ok {
		t.Error("TryClaim() on an unsettled promise should report false")
	}

	p.Complete(3)
	got, err, ok := p.TryClaim()
	if !ok || err != nil || got != 3 {
		t.Errorf("TryClaim() = (%d, %v, %v), want (3, nil, true)", got, err, ok)
	}
}

func TestPromise_ThenSuccess(t *testing.T) {
	p := New[int]()

	got := make(chan int, 1)
	p.Then(func(v int) { got <- v }, func(err error) {
		t.Errorf("onFailure fired: %v", err)
	})

	p.Complete(5)

	select {
	case v := <-got:
		if v != 5 {
			t.Errorf("onSuccess got %d, want 5", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("onSuccess never fired")
	}
}

func TestPromise_ThenFailure(t *testing.T) {
	p := New[int]()

	got := make(chan error, 1)
	p.Then(func(v int) {
		t.Errorf("onSuccess fired: %d", v)
	}, func(err error) { got <- err })

	p.Fail(errBoom)

	select {
	case err := <-got:
		if !errors.Is(err, errBoom) {
			t.Errorf("onFailure got %v, want errBoom", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("onFailure never fired")
	}
}

func TestPromise_ThenAfterSettlement(t *testing.T) {
	p := Resolved(11)

	got := make(chan int, 1)
	p.Then(func(v int) { got <- v }, nil)

	select {
	case v := <-got:
		if v != 11 {
			t.Errorf("onSuccess got %d, want 11", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("late-registered callback never fired")
	}
}

func TestMap(t *testing.T) {
	p := New[int]()
	d := Map(p, func(v int) string {
		return string(rune('a' + v))
	})

	p.Complete(2)

	got, err := d.Claim(context.Background())
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if got != "c" {
		t.Errorf("Claim() = %q, want %q", got, "c")
	}
}

func TestMap_PropagatesFailure(t *testing.T) {
	p := New[int]()
	d := Map(p, func(v int) string {
		t.Error("fn should not run for a failed promise")
		return ""
	})

	p.Fail(errBoom)

	if _, err := d.Claim(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("Claim() error = %v, want errBoom", err)
	}
}

func TestFlatMap(t *testing.T) {
	p := New[int]()
	d := FlatMap(p, func(v int) *Promise[int] {
		inner := New[int]()
		go inner.Complete(v * 10)
		return inner
	})

	p.Complete(4)

	got, err := d.Claim(context.Background())
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if got != 40 {
		t.Errorf("Claim() = %d, want 40", got)
	}
}

func TestFlatMap_InnerFailure(t *testing.T) {
	p := New[int]()
	d := FlatMap(p, func(v int) *Promise[int] {
		return Rejected[int](errBoom)
	})

	p.Complete(1)

	if _, err := d.Claim(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("Claim() error = %v, want errBoom", err)
	}
}

func TestFlatMap_OuterFailure(t *testing.T) {
	p := New[int]()
	d := FlatMap(p, func(v int) *Promise[int] {
		t.Error("fn should not run for a failed promise")
		return nil
	})

	p.Fail(errBoom)

	if _, err := d.Claim(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("Claim() error = %v, want errBoom", err)
	}
}
