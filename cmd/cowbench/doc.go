// Package main provides the entry point for cowbench.
//
// cowbench runs a read/write contention benchmark against a single
// copy-on-write map and reports throughput and snapshot statistics. It can
// expose live map metrics in Prometheus format while a run is in flight.
package main
