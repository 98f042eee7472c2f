package cowmap

// Store is the contract a backing snapshot must satisfy.
//
// A Store is mutated only while it is private to a writer: either during
// construction by a CopyFunc or inside the map's exclusive section before
// the snapshot is published. Once published a Store is never written again.
type Store[K comparable, V any] interface {
	// Get retrieves a value by key.
	Get(key K) (V, bool)

	// Put stores a key-value pair and returns the previous value, if any.
	Put(key K, value V) (V, bool)

	// Delete removes a key and returns the removed value, if any.
	Delete(key K) (V, bool)

	// Len returns the number of entries.
	Len() int

	// Clear removes all entries.
	Clear()

	// Range iterates over all entries. The callback returns false to stop.
	Range(fn func(key K, value V) bool)
}

// CopyFunc creates a new store copied from the one supplied.
//
// Implementations must not keep a reference to the source, must not modify
// it, and must return a distinct store with equivalent contents. A CopyFunc
// is called inside the map's exclusive section, so it must not do any IO or
// blocking work.
type CopyFunc[K comparable, V any] func(src Store[K, V]) Store[K, V]

// HashCopy copies a store into a plain hash-backed store.
// Iteration order of the copy is not specified.
func HashCopy[K comparable, V any](src Store[K, V]) Store[K, V] {
	dst := make(hashStore[K, V], src.Len())
	src.Range(func(k K, v V) bool {
		dst[k] = v
		return true
	})
	return dst
}

// OrderedCopy copies a store into an insertion-order-preserving store.
// The copy iterates in the source's iteration order; entries inserted later
// keep their insertion order.
func OrderedCopy[K comparable, V any](src Store[K, V]) Store[K, V] {
	dst := &orderedStore[K, V]{
		items: make(map[K]V, src.Len()),
		order: make([]K, 0, src.Len()),
	}
	src.Range(func(k K, v V) bool {
		dst.items[k] = v
		dst.order = append(dst.order, k)
		return true
	})
	return dst
}

// hashStore is the default map-backed store.
type hashStore[K comparable, V any] map[K]V

func (s hashStore[K, V]) Get(key K) (V, bool) {
	v, ok := s[key]
	return v, ok
}

func (s hashStore[K, V]) Put(key K, value V) (V, bool) {
	prev, ok := s[key]
	s[key] = value
	return prev, ok
}

func (s hashStore[K, V]) Delete(key K) (V, bool) {
	prev, ok := s[key]
	if ok {
		delete(s, key)
	}
	return prev, ok
}

func (s hashStore[K, V]) Len() int {
	return len(s)
}

func (s hashStore[K, V]) Clear() {
	clear(s)
}

func (s hashStore[K, V]) Range(fn func(key K, value V) bool) {
	for k, v := range s {
		if !fn(k, v) {
			return
		}
	}
}

// orderedStore keeps a parallel key slice so iteration follows insertion
// order. Delete is O(n) on the key slice; acceptable since every mutation
// already pays a full copy.
type orderedStore[K comparable, V any] struct {
	items map[K]V
	order []K
}

func (s *orderedStore[K, V]) Get(key K) (V, bool) {
	v, ok := s.items[key]
	return v, ok
}

func (s *orderedStore[K, V]) Put(key K, value V) (V, bool) {
	prev, ok := s.items[key]
	if !ok {
		s.order = append(s.order, key)
	}
	s.items[key] = value
	return prev, ok
}

func (s *orderedStore[K, V]) Delete(key K) (V, bool) {
	prev, ok := s.items[key]
	if !ok {
		return prev, false
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return prev, true
}

func (s *orderedStore[K, V]) Len() int {
	return len(s.items)
}

func (s *orderedStore[K, V]) Clear() {
	clear(s.items)
	s.order = s.order[:0]
}

func (s *orderedStore[K, V]) Range(fn func(key K, value V) bool) {
	for _, k := range s.order {
		if !fn(k, s.items[k]) {
			return
		}
	}
}
