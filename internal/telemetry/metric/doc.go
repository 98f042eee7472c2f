// Package metric provides Prometheus metrics for CowKit.
//
// It exposes copy-on-write map statistics in Prometheus format: entry
// counts, mutation and publish totals, and copies skipped by the
// short-circuit paths. Maps are scraped through their Stats method, so
// collection never locks a map or blocks its readers.
package metric
