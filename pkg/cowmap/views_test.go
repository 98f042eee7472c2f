package cowmap

import (
	"errors"
	"sort"
	"testing"
)

func TestKeyView_Reads(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2, "c": 3})
	keys := m.Keys()

	if keys.Count() != 3 {
		t.Errorf("Count() = %d, want 3", keys.Count())
	}
	if keys.IsEmpty() {
		t.Error("view should not be empty")
	}
	if !keys.Contains("b") {
		t.Error("Contains(b) should be true")
	}
	if keys.Contains("z") {
		t.Error("Contains(z) should be false")
	}
	if !keys.ContainsAll([]string{"a", "c"}) {
		t.Error("ContainsAll(a, c) should be true")
	}
	if keys.ContainsAll([]string{"a", "z"}) {
		t.Error("ContainsAll(a, z) should be false")
	}

	got := keys.Slice()
	sort.Strings(got)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slice() = %v, want %v", got, want)
			break
		}
	}
}

func TestViews_AreLive(t *testing.T) {
	m := New[string, int]()
	keys := m.Keys()
	values := m.Values()
	entries := m.Entries()

	if !keys.IsEmpty() || !values.IsEmpty() || !entries.IsEmpty() {
		t.Fatal("views over an empty map should be empty")
	}

	// Views created before the write observe it: they hold no state of
	// their own.
	m.Set("k", 42)

	if keys.Count() != 1 || values.Count() != 1 || entries.Count() != 1 {
		t.Error("views should reflect writes made after their creation")
	}
	if !values.Contains(42) {
		t.Error("value view should see the new value")
	}
	if !entries.Contains(Entry[string, int]{Key: "k", Value: 42}) {
		t.Error("entry view should see the new entry")
	}
}

func TestViews_AddUnsupported(t *testing.T) {
	m := New[string, int]()

	if err := m.Keys().Add("x"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("KeyView.Add error = %v, want ErrUnsupported", err)
	}
	if err := m.Keys().AddAll([]string{"x"}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("KeyView.AddAll error = %v, want ErrUnsupported", err)
	}
	if err := m.Values().Add(1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ValueView.Add error = %v, want ErrUnsupported", err)
	}
	if err := m.Values().AddAll([]int{1}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ValueView.AddAll error = %v, want ErrUnsupported", err)
	}
	if err := m.Entries().Add(Entry[string, int]{Key: "x", Value: 1}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("EntryView.Add error = %v, want ErrUnsupported", err)
	}
	if err := m.Entries().AddAll(nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("EntryView.AddAll error = %v, want ErrUnsupported", err)
	}

	if m.Count() != 0 {
		t.Error("rejected adds must not mutate the map")
	}
}

func TestKeyView_Remove(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2})

	if !m.Keys().Remove("a") {
		t.Error("Remove(a) should report removal")
	}
	if m.Has("a") {
		t.Error("a should be gone from the map")
	}
	if m.Keys().Remove("a") {
		t.Error("second Remove(a) should report no removal")
	}
}

func TestKeyView_RemoveAll(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2, "c": 3})

	if !m.Keys().RemoveAll([]string{"a", "c"}) {
		t.Error("RemoveAll should report a change")
	}
	if m.Count() != 1 || !m.Has("b") {
		t.Errorf("only b should remain, Count() = %d", m.Count())
	}
}

func TestKeyView_RetainAll(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2, "c": 3})

	if !m.Keys().RetainAll([]string{"b"}) {
		t.Error("RetainAll should report a change")
	}
	if m.Count() != 1 || !m.Has("b") {
		t.Errorf("only b should remain, Count() = %d", m.Count())
	}

	before := m.Stats().Publishes
	if m.Keys().RetainAll([]string{"b"}) {
		t.Error("retaining everything should report no change")
	}
	if m.Stats().Publishes != before {
		t.Error("a no-op retain must not publish")
	}
}

func TestValueView_Remove(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2})

	if !m.Values().Remove(2) {
		t.Error("Remove(2) should report removal")
	}
	if m.HasValue(2) {
		t.Error("value 2 should be gone")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}

	before := m.Stats()
	if m.Values().Remove(99) {
		t.Error("Remove of an absent value should report no removal")
	}
	after := m.Stats()
	if after.Publishes != before.Publishes {
		t.Error("a missed value removal must not publish")
	}
	if after.SkippedCopies != before.SkippedCopies+1 {
		t.Error("a missed value removal should be counted as a skipped copy")
	}
}

func TestValueView_Remove_FirstMatchOnly(t *testing.T) {
	m := NewFrom(map[string]int{"a": 7, "b": 7})

	if !m.Values().Remove(7) {
		t.Fatal("Remove(7) should report removal")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1: only one holder of the value is removed", m.Count())
	}
	if !m.HasValue(7) {
		t.Error("the other holder of 7 should survive")
	}
}

func TestValueView_RemoveAllAndRetainAll(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2, "c": 2, "d": 3})

	if !m.Values().RemoveAll([]int{2}) {
		t.Error("RemoveAll(2) should report a change")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2: RemoveAll drops every holder", m.Count())
	}

	if !m.Values().RetainAll([]int{1}) {
		t.Error("RetainAll(1) should report a change")
	}
	if m.Count() != 1 || !m.Has("a") {
		t.Errorf("only a=1 should remain, Count() = %d", m.Count())
	}
}

func TestEntryView_Remove(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2})

	// Key present but value differs: no removal, no copy.
	before := m.Stats()
	if m.Entries().Remove(Entry[string, int]{Key: "a", Value: 99}) {
		t.Error("Remove with a mismatched value should report no removal")
	}
	after := m.Stats()
	if after.Publishes != before.Publishes {
		t.Error("a mismatched entry removal must not publish")
	}

	if !m.Entries().Remove(Entry[string, int]{Key: "a", Value: 1}) {
		t.Error("Remove with the matching value should report removal")
	}
	if m.Has("a") {
		t.Error("a should be gone")
	}
}

func TestEntryView_RemoveAllAndRetainAll(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2, "c": 3})

	if !m.Entries().RemoveAll([]Entry[string, int]{
		{Key: "a", Value: 1},
		{Key: "b", Value: 99}, // value mismatch, not removed
	}) {
		t.Error("RemoveAll should report a change")
	}
	if m.Count() != 2 || m.Has("a") || !m.Has("b") {
		t.Errorf("only a should be removed, Count() = %d", m.Count())
	}

	if !m.Entries().RetainAll([]Entry[string, int]{{Key: "b", Value: 2}}) {
		t.Error("RetainAll should report a change")
	}
	if m.Count() != 1 || !m.Has("b") {
		t.Errorf("only b should remain, Count() = %d", m.Count())
	}
}

func TestView_Clear(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2})

	m.Values().Clear()
	if !m.IsEmpty() {
		t.Error("clearing through a view should empty the map")
	}
}

func TestView_All(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2})

	sum := 0
	for v := range m.Values().All() {
		sum += v
	}
	if sum != 3 {
		t.Errorf("sum over Values().All() = %d, want 3", sum)
	}

	count := 0
	for e := range m.Entries().All() {
		if v, ok := m.Get(e.Key); !ok || v != e.Value {
			t.Errorf("entry %v disagrees with the map", e)
		}
		count++
	}
	if count != 2 {
		t.Errorf("Entries().All() yielded %d entries, want 2", count)
	}
}

func TestIterator(t *testing.T) {
	m := NewOrdered[string, int]()
	m.Set("one", 1)
	m.Set("two", 2)

	it := m.Keys().Iterator()
	defer it.Stop()

	k, ok := it.Next()
	if !ok || k != "one" {
		t.Errorf("Next() = (%q, %v), want (one, true)", k, ok)
	}
	k, ok = it.Next()
	if !ok || k != "two" {
		t.Errorf("Next() = (%q, %v), want (two, true)", k, ok)
	}
	if _, ok = it.Next(); ok {
		t.Error("exhausted iterator should report false")
	}
	if _, ok = it.Next(); ok {
		t.Error("Next() after exhaustion should keep reporting false")
	}
}

func TestIterator_SnapshotIsolation(t *testing.T) {
	m := NewOrdered[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	it := m.Entries().Iterator()
	defer it.Stop()

	// Writes after the iterator was created are invisible to it.
	m.Set("c", 3)
	m.Delete("a")

	seen := 0
	for {
		if _, ok := it.Next(); !ok {
			break
		}
		seen++
	}
	if seen != 2 {
		t.Errorf("iterator saw %d entries, want the 2 of its snapshot", seen)
	}
}

func TestIterator_RemoveUnsupported(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1})

	it := m.Keys().Iterator()
	defer it.Stop()

	if err := it.Remove(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Remove() error = %v, want ErrUnsupported", err)
	}
	if m.Count() != 1 {
		t.Error("rejected iterator removal must not mutate the map")
	}
}

func TestIterator_StopEarly(t *testing.T) {
	m := NewFrom(map[string]int{"a": 1, "b": 2, "c": 3})

	it := m.Values().Iterator()
	if _, ok := it.Next(); !ok {
		t.Fatal("first Next() should succeed")
	}
	it.Stop()
	it.Stop() // idempotent

	if _, ok := it.Next(); ok {
		t.Error("Next() after Stop() should report false")
	}
}
