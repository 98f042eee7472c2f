// Package cowmap provides a copy-on-write map.
//
// Mutations serialize on one mutex, copy the current snapshot through the
// configured CopyFunc, mutate the copy, and publish it through an atomic
// pointer. Reads load the pointer once and delegate.
//
// @req RQ-0201
// @design DS-0201
package cowmap

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
)

// ErrUnsupported is returned by structural mutations that are not allowed
// through a view: Add/AddAll on any view and Remove on a view iterator.
// Removal must go through the view's own Remove, which re-enters the map's
// exclusive mutation path.
var ErrUnsupported = errors.New("cowmap: operation not supported through a read-only view")

// Map is a copy-on-write map.
//
// The zero value is not usable; construct with New, NewFrom, NewOrdered or
// NewOrderedFrom.
type Map[K comparable, V any] struct {
	mu      sync.Mutex
	current atomic.Pointer[Store[K, V]]

	copyFn CopyFunc[K, V]
	equal  func(a, b V) bool

	keys    *KeyView[K, V]
	values  *ValueView[K, V]
	entries *EntryView[K, V]

	mutations atomic.Uint64
	publishes atomic.Uint64
	skipped   atomic.Uint64
}

// Option configures a Map.
type Option[K comparable, V any] func(*Map[K, V])

// WithCopyFunc sets the snapshot copy strategy.
func WithCopyFunc[K comparable, V any](fn CopyFunc[K, V]) Option[K, V] {
	return func(m *Map[K, V]) {
		if fn != nil {
			m.copyFn = fn
		}
	}
}

// WithValueEqual sets the value equality used by HasValue, the value view
// and the entry view. Defaults to reflect.DeepEqual.
func WithValueEqual[K comparable, V any](eq func(a, b V) bool) Option[K, V] {
	return func(m *Map[K, V]) {
		if eq != nil {
			m.equal = eq
		}
	}
}

// New creates an empty copy-on-write map with the hash copy strategy.
func New[K comparable, V any](opts ...Option[K, V]) *Map[K, V] {
	return NewFrom(nil, opts...)
}

// NewFrom creates a copy-on-write map initialized with the entries of init.
// The initial snapshot is built through the copy strategy, so init is never
// retained.
func NewFrom[K comparable, V any](init map[K]V, opts ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		copyFn: HashCopy[K, V],
		equal: func(a, b V) bool {
			return reflect.DeepEqual(a, b)
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	seed := make(hashStore[K, V], len(init))
	for k, v := range init {
		seed[k] = v
	}
	snap := m.copyFn(seed)
	m.current.Store(&snap)

	m.keys = &KeyView[K, V]{m: m}
	m.values = &ValueView[K, V]{m: m}
	m.entries = &EntryView[K, V]{m: m}
	return m
}

// NewOrdered creates an empty map whose snapshots preserve insertion order.
func NewOrdered[K comparable, V any](opts ...Option[K, V]) *Map[K, V] {
	return NewFrom(nil, append([]Option[K, V]{WithCopyFunc(OrderedCopy[K, V])}, opts...)...)
}

// NewOrderedFrom creates an insertion-order-preserving map initialized with
// the entries of init. The initial order is unspecified since init is a
// plain map.
func NewOrderedFrom[K comparable, V any](init map[K]V, opts ...Option[K, V]) *Map[K, V] {
	return NewFrom(init, append([]Option[K, V]{WithCopyFunc(OrderedCopy[K, V])}, opts...)...)
}

// snapshot returns the current published snapshot.
// Readers call this once per operation and work against the result.
func (m *Map[K, V]) snapshot() Store[K, V] {
	return *m.current.Load()
}

// publish replaces the current snapshot. Callers must hold m.mu.
func (m *Map[K, V]) publish(next Store[K, V]) {
	m.current.Store(&next)
	m.publishes.Add(1)
}

//
// read operations
//

// Get retrieves a value by key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	return m.snapshot().Get(key)
}

// Has checks if a key exists.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.snapshot().Get(key)
	return ok
}

// HasValue checks if any entry holds the given value.
func (m *Map[K, V]) HasValue(value V) bool {
	return storeHasValue(m.snapshot(), m.equal, value)
}

// Count returns the number of entries.
func (m *Map[K, V]) Count() int {
	return m.snapshot().Len()
}

// IsEmpty reports whether the map has no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.snapshot().Len() == 0
}

// Range iterates over the entries of the current snapshot.
//
// The callback returns false to stop iteration. Unlike a sharded map, the
// iteration is fully consistent: it covers exactly one published snapshot.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	m.snapshot().Range(fn)
}

// Entry is a key-value pair.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Items returns all entries of the current snapshot as a slice.
func (m *Map[K, V]) Items() []Entry[K, V] {
	snap := m.snapshot()
	items := make([]Entry[K, V], 0, snap.Len())
	snap.Range(func(k K, v V) bool {
		items = append(items, Entry[K, V]{Key: k, Value: v})
		return true
	})
	return items
}

// Keys returns the live key view.
func (m *Map[K, V]) Keys() *KeyView[K, V] {
	return m.keys
}

// Values returns the live value view.
func (m *Map[K, V]) Values() *ValueView[K, V] {
	return m.values
}

// Entries returns the live entry view.
func (m *Map[K, V]) Entries() *EntryView[K, V] {
	return m.entries
}

//
// write operations
//

// Set stores a key-value pair and returns the previous value, if any.
func (m *Map[K, V]) Set(key K, value V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.copyFn(m.snapshot())
	prev, ok := next.Put(key, value)
	m.mutations.Add(1)
	m.publish(next)
	return prev, ok
}

// SetAll stores all entries as a single atomic publish. Readers observe
// either none or all of the batch, never a partially-applied subset.
func (m *Map[K, V]) SetAll(entries map[K]V) {
	if len(entries) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.copyFn(m.snapshot())
	for k, v := range entries {
		next.Put(k, v)
	}
	m.mutations.Add(uint64(len(entries)))
	m.publish(next)
}

// Delete removes a key and returns the removed value, if any.
//
// A miss returns without copying: the presence check reads the live
// snapshot inside the same critical section that would perform the copy,
// so it cannot race a concurrent Set.
func (m *Map[K, V]) Delete(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snapshot().Get(key); !ok {
		m.skipped.Add(1)
		var zero V
		return zero, false
	}

	next := m.copyFn(m.snapshot())
	prev, _ := next.Delete(key)
	m.mutations.Add(1)
	m.publish(next)
	return prev, true
}

// DeleteAll removes a batch of keys as one atomic publish.
// Returns true if any key was present. If none are present the copy is
// skipped entirely.
func (m *Map[K, V]) DeleteAll(keys []K) bool {
	if len(keys) == 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	present := false
	for _, k := range keys {
		if _, ok := snap.Get(k); ok {
			present = true
			break
		}
	}
	if !present {
		m.skipped.Add(1)
		return false
	}

	next := m.copyFn(snap)
	removed := uint64(0)
	for _, k := range keys {
		if _, ok := next.Delete(k); ok {
			removed++
		}
	}
	m.mutations.Add(removed)
	m.publish(next)
	return true
}

// Clear removes all entries. Clearing an empty map skips the copy.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot().Len() == 0 {
		m.skipped.Add(1)
		return
	}

	next := m.copyFn(m.snapshot())
	next.Clear()
	m.mutations.Add(1)
	m.publish(next)
}

// GetOrSet returns the existing value for a key, or stores and returns the
// given value if absent. The boolean reports whether the value was already
// present. A hit returns without copying.
func (m *Map[K, V]) GetOrSet(key K, value V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.snapshot().Get(key); ok {
		m.skipped.Add(1)
		return existing, true
	}

	next := m.copyFn(m.snapshot())
	next.Put(key, value)
	m.mutations.Add(1)
	m.publish(next)
	return value, false
}

// SetIfAbsent stores the value only if the key does not exist.
// Returns true if the value was stored.
func (m *Map[K, V]) SetIfAbsent(key K, value V) bool {
	_, loaded := m.GetOrSet(key, value)
	return !loaded
}

// Update atomically replaces the value for a key with the result of fn,
// which receives the current value and whether the key exists. The new
// value is published as a single snapshot and returned.
func (m *Map[K, V]) Update(key K, fn func(value V, exists bool) V) V {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.copyFn(m.snapshot())
	existing, ok := next.Get(key)
	value := fn(existing, ok)
	next.Put(key, value)
	m.mutations.Add(1)
	m.publish(next)
	return value
}

//
// telemetry
//

// Stats is a point-in-time snapshot of the map's counters.
type Stats struct {
	// Entries is the number of entries in the current snapshot.
	Entries int
	// Mutations is the total number of entry-level changes applied.
	Mutations uint64
	// Publishes is the number of snapshots published.
	Publishes uint64
	// SkippedCopies counts mutations short-circuited without a copy
	// (deletes of absent keys, clears of empty maps, GetOrSet hits).
	SkippedCopies uint64
}

// Stats returns the map's counters. Safe to call concurrently with writers.
func (m *Map[K, V]) Stats() Stats {
	return Stats{
		Entries:       m.snapshot().Len(),
		Mutations:     m.mutations.Load(),
		Publishes:     m.publishes.Load(),
		SkippedCopies: m.skipped.Load(),
	}
}

// storeHasValue scans a store for a value using the configured equality.
func storeHasValue[K comparable, V any](s Store[K, V], eq func(a, b V) bool, value V) bool {
	found := false
	s.Range(func(_ K, v V) bool {
		if eq(v, value) {
			found = true
			return false
		}
		return true
	})
	return found
}
