// Package cowmap provides a copy-on-write map.
package cowmap

import "iter"

// The views are stateless proxies created once at map construction. Every
// accessor re-reads the owning map's current snapshot; two successive calls
// may observe different contents if a write interleaves. Mutations re-enter
// the map's exclusive section and publish a fresh snapshot, so a view
// removal carries the same atomicity guarantee as a direct map mutation.

// KeyView is a live, read-mostly view of the map's keys.
type KeyView[K comparable, V any] struct {
	m *Map[K, V]
}

// Count returns the number of keys.
func (v *KeyView[K, V]) Count() int {
	return v.m.Count()
}

// IsEmpty reports whether the view is empty.
func (v *KeyView[K, V]) IsEmpty() bool {
	return v.m.IsEmpty()
}

// Contains checks if a key exists.
func (v *KeyView[K, V]) Contains(key K) bool {
	return v.m.Has(key)
}

// ContainsAll checks if every key exists.
// All keys are resolved against one snapshot.
func (v *KeyView[K, V]) ContainsAll(keys []K) bool {
	snap := v.m.snapshot()
	for _, k := range keys {
		if _, ok := snap.Get(k); !ok {
			return false
		}
	}
	return true
}

// Range iterates over the keys of the current snapshot.
func (v *KeyView[K, V]) Range(fn func(key K) bool) {
	v.m.snapshot().Range(func(k K, _ V) bool {
		return fn(k)
	})
}

// All returns a one-shot sequence over the keys of the current snapshot.
func (v *KeyView[K, V]) All() iter.Seq[K] {
	snap := v.m.snapshot()
	return func(yield func(K) bool) {
		snap.Range(func(k K, _ V) bool {
			return yield(k)
		})
	}
}

// Iterator returns a one-shot, read-only iterator over the keys of the
// snapshot current at the moment of the call.
func (v *KeyView[K, V]) Iterator() *Iterator[K] {
	return newIterator(v.All())
}

// Slice returns the keys of the current snapshot as a slice.
func (v *KeyView[K, V]) Slice() []K {
	snap := v.m.snapshot()
	keys := make([]K, 0, snap.Len())
	snap.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Add is not supported: views only permit removal.
func (v *KeyView[K, V]) Add(key K) error {
	return ErrUnsupported
}

// AddAll is not supported: views only permit removal.
func (v *KeyView[K, V]) AddAll(keys []K) error {
	return ErrUnsupported
}

// Remove removes a key through the map's mutation path.
// Returns true if the key was present.
func (v *KeyView[K, V]) Remove(key K) bool {
	_, ok := v.m.Delete(key)
	return ok
}

// RemoveAll removes a batch of keys as one atomic publish.
func (v *KeyView[K, V]) RemoveAll(keys []K) bool {
	return v.m.DeleteAll(keys)
}

// RetainAll removes every key not present in keep, as one atomic publish.
// Returns true if anything was removed.
func (v *KeyView[K, V]) RetainAll(keep []K) bool {
	keepSet := make(map[K]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}
	return v.m.retain(func(k K, _ V) bool {
		_, ok := keepSet[k]
		return ok
	})
}

// Clear removes all entries from the map.
func (v *KeyView[K, V]) Clear() {
	v.m.Clear()
}

// ValueView is a live, read-mostly view of the map's values.
type ValueView[K comparable, V any] struct {
	m *Map[K, V]
}

// Count returns the number of values.
func (v *ValueView[K, V]) Count() int {
	return v.m.Count()
}

// IsEmpty reports whether the view is empty.
func (v *ValueView[K, V]) IsEmpty() bool {
	return v.m.IsEmpty()
}

// Contains checks if any entry holds the given value.
func (v *ValueView[K, V]) Contains(value V) bool {
	return v.m.HasValue(value)
}

// ContainsAll checks if every value is held by some entry.
// All values are resolved against one snapshot.
func (v *ValueView[K, V]) ContainsAll(values []V) bool {
	snap := v.m.snapshot()
	for _, val := range values {
		if !storeHasValue(snap, v.m.equal, val) {
			return false
		}
	}
	return true
}

// Range iterates over the values of the current snapshot.
func (v *ValueView[K, V]) Range(fn func(value V) bool) {
	v.m.snapshot().Range(func(_ K, val V) bool {
		return fn(val)
	})
}

// All returns a one-shot sequence over the values of the current snapshot.
func (v *ValueView[K, V]) All() iter.Seq[V] {
	snap := v.m.snapshot()
	return func(yield func(V) bool) {
		snap.Range(func(_ K, val V) bool {
			return yield(val)
		})
	}
}

// Iterator returns a one-shot, read-only iterator over the values of the
// snapshot current at the moment of the call.
func (v *ValueView[K, V]) Iterator() *Iterator[V] {
	return newIterator(v.All())
}

// Slice returns the values of the current snapshot as a slice.
func (v *ValueView[K, V]) Slice() []V {
	snap := v.m.snapshot()
	values := make([]V, 0, snap.Len())
	snap.Range(func(_ K, val V) bool {
		values = append(values, val)
		return true
	})
	return values
}

// Add is not supported: adding through a value has no well-defined key.
func (v *ValueView[K, V]) Add(value V) error {
	return ErrUnsupported
}

// AddAll is not supported: adding through a value has no well-defined key.
func (v *ValueView[K, V]) AddAll(values []V) error {
	return ErrUnsupported
}

// Remove removes the first entry holding the given value.
// Returns true if an entry was removed. A miss returns without copying.
func (v *ValueView[K, V]) Remove(value V) bool {
	return v.m.removeValue(value)
}

// RemoveAll removes every entry whose value matches any of the given
// values, as one atomic publish.
func (v *ValueView[K, V]) RemoveAll(values []V) bool {
	return v.m.retain(func(_ K, val V) bool {
		for _, candidate := range values {
			if v.m.equal(val, candidate) {
				return false
			}
		}
		return true
	})
}

// RetainAll removes every entry whose value matches none of keep, as one
// atomic publish. Returns true if anything was removed.
func (v *ValueView[K, V]) RetainAll(keep []V) bool {
	return v.m.retain(func(_ K, val V) bool {
		for _, candidate := range keep {
			if v.m.equal(val, candidate) {
				return true
			}
		}
		return false
	})
}

// Clear removes all entries from the map.
func (v *ValueView[K, V]) Clear() {
	v.m.Clear()
}

// EntryView is a live, read-mostly view of the map's entries.
type EntryView[K comparable, V any] struct {
	m *Map[K, V]
}

// Count returns the number of entries.
func (v *EntryView[K, V]) Count() int {
	return v.m.Count()
}

// IsEmpty reports whether the view is empty.
func (v *EntryView[K, V]) IsEmpty() bool {
	return v.m.IsEmpty()
}

// Contains checks if the entry's key is present with an equal value.
func (v *EntryView[K, V]) Contains(e Entry[K, V]) bool {
	val, ok := v.m.Get(e.Key)
	return ok && v.m.equal(val, e.Value)
}

// ContainsAll checks if every entry is present.
// All entries are resolved against one snapshot.
func (v *EntryView[K, V]) ContainsAll(entries []Entry[K, V]) bool {
	snap := v.m.snapshot()
	for _, e := range entries {
		val, ok := snap.Get(e.Key)
		if !ok || !v.m.equal(val, e.Value) {
			return false
		}
	}
	return true
}

// Range iterates over the entries of the current snapshot.
func (v *EntryView[K, V]) Range(fn func(e Entry[K, V]) bool) {
	v.m.snapshot().Range(func(k K, val V) bool {
		return fn(Entry[K, V]{Key: k, Value: val})
	})
}

// All returns a one-shot sequence over the entries of the current snapshot.
func (v *EntryView[K, V]) All() iter.Seq[Entry[K, V]] {
	snap := v.m.snapshot()
	return func(yield func(Entry[K, V]) bool) {
		snap.Range(func(k K, val V) bool {
			return yield(Entry[K, V]{Key: k, Value: val})
		})
	}
}

// Iterator returns a one-shot, read-only iterator over the entries of the
// snapshot current at the moment of the call.
func (v *EntryView[K, V]) Iterator() *Iterator[Entry[K, V]] {
	return newIterator(v.All())
}

// Slice returns the entries of the current snapshot as a slice.
func (v *EntryView[K, V]) Slice() []Entry[K, V] {
	return v.m.Items()
}

// Add is not supported: views only permit removal.
func (v *EntryView[K, V]) Add(e Entry[K, V]) error {
	return ErrUnsupported
}

// AddAll is not supported: views only permit removal.
func (v *EntryView[K, V]) AddAll(entries []Entry[K, V]) error {
	return ErrUnsupported
}

// Remove removes the entry if its key is present with an equal value.
// Returns true if removed. A miss returns without copying.
func (v *EntryView[K, V]) Remove(e Entry[K, V]) bool {
	return v.m.removeEntry(e)
}

// RemoveAll removes every matching entry, as one atomic publish.
func (v *EntryView[K, V]) RemoveAll(entries []Entry[K, V]) bool {
	return v.m.retain(func(k K, val V) bool {
		for _, e := range entries {
			if e.Key == k && v.m.equal(val, e.Value) {
				return false
			}
		}
		return true
	})
}

// RetainAll removes every entry not matching keep, as one atomic publish.
// Returns true if anything was removed.
func (v *EntryView[K, V]) RetainAll(keep []Entry[K, V]) bool {
	return v.m.retain(func(k K, val V) bool {
		for _, e := range keep {
			if e.Key == k && v.m.equal(val, e.Value) {
				return true
			}
		}
		return false
	})
}

// Clear removes all entries from the map.
func (v *EntryView[K, V]) Clear() {
	v.m.Clear()
}

//
// map-side helpers for view mutations
//

// retain keeps only the entries for which keep returns true, publishing the
// result as one snapshot. Returns true if anything was removed. When
// nothing matches the filter the fresh copy is discarded unpublished.
func (m *Map[K, V]) retain(keep func(key K, value V) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.copyFn(m.snapshot())
	var drop []K
	next.Range(func(k K, v V) bool {
		if !keep(k, v) {
			drop = append(drop, k)
		}
		return true
	})
	if len(drop) == 0 {
		return false
	}
	for _, k := range drop {
		next.Delete(k)
	}
	m.mutations.Add(uint64(len(drop)))
	m.publish(next)
	return true
}

// removeValue removes the first entry holding value. The presence check
// reads the live snapshot under the same lock that performs the copy.
func (m *Map[K, V]) removeValue(value V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !storeHasValue(m.snapshot(), m.equal, value) {
		m.skipped.Add(1)
		return false
	}

	next := m.copyFn(m.snapshot())
	var key K
	found := false
	next.Range(func(k K, v V) bool {
		if m.equal(v, value) {
			key = k
			found = true
			return false
		}
		return true
	})
	if !found {
		return false
	}
	next.Delete(key)
	m.mutations.Add(1)
	m.publish(next)
	return true
}

// removeEntry removes e if its key is present with an equal value, under
// the same check-then-copy discipline as removeValue.
func (m *Map[K, V]) removeEntry(e Entry[K, V]) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if val, ok := m.snapshot().Get(e.Key); !ok || !m.equal(val, e.Value) {
		m.skipped.Add(1)
		return false
	}

	next := m.copyFn(m.snapshot())
	if val, ok := next.Get(e.Key); !ok || !m.equal(val, e.Value) {
		return false
	}
	next.Delete(e.Key)
	m.mutations.Add(1)
	m.publish(next)
	return true
}
