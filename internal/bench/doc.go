// Package bench provides a read/write contention harness for the
// copy-on-write map.
//
// A run prefills one map, then races a pool of readers against a pool of
// rate-limited writers for a fixed duration. The point is to observe the
// map's trade-off under load: reader throughput should be unaffected by
// writer count, while writer throughput is bounded by copy cost.
//
// Each run is identified by a ULID and produces a Report renderable as a
// table or JSON.
package bench
