// Package cowmap provides a copy-on-write map implementation for CowKit.
//
// This package implements an associative container optimized for
// read-dominated workloads with the following features:
//
//   - Lock-free Reads: Readers load one snapshot pointer, never a lock
//   - Snapshot Atomicity: Every write publishes a complete new snapshot
//   - Pluggable Copying: Hash or insertion-ordered copy strategies
//   - Live Views: Key/value/entry views resolved against the current snapshot
//
// Usage:
//
//	m := cowmap.New[string, int]()
//	m.Set("key", 1)
//	val, ok := m.Get("key")
//
// Thread Safety:
//
// All operations are thread-safe. Write operations (Set, Delete, SetAll,
// Clear and view mutations) serialize on a single mutex and republish the
// snapshot; read operations never block and always observe a snapshot that
// was complete at some prior instant. The design trades write cost (a full
// copy per mutation) for zero read cost.
//
// @adr AD-0201
package cowmap
