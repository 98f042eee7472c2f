// Package atomicx provides atomic reference helpers with supplier-based
// conditional updates.
//
// Ref extends a plain atomic pointer with compare-and-set operations that
// take the expected *value* rather than the expected pointer, plus update
// forms that re-invoke their supplier when a concurrent writer wins the
// race.
//
// Usage:
//
//	r := atomicx.NewRef("idle")
//	state := r.GetOrSetIf("idle", func() string { return "running" })
//
// @req RQ-0303
package atomicx
