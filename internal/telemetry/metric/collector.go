package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/cowkit-go/pkg/cowmap"
)

// StatsSource yields a point-in-time stats snapshot. Satisfied by any
// *cowmap.Map instantiation.
type StatsSource interface {
	Stats() cowmap.Stats
}

// Collector collects copy-on-write map statistics.
//
// It implements prometheus.Collector with const metrics, reading the
// source's counters at scrape time.
type Collector struct {
	src StatsSource

	entries       *prometheus.Desc
	mutations     *prometheus.Desc
	publishes     *prometheus.Desc
	skippedCopies *prometheus.Desc
}

// NewCollector creates a collector for one map. The name label
// distinguishes multiple maps registered in the same registry.
func NewCollector(name string, src StatsSource) *Collector {
	labels := prometheus.Labels{"map": name}
	return &Collector{
		src: src,
		entries: prometheus.NewDesc(
			"cowkit_map_entries",
			"Number of entries in the current published snapshot.",
			nil, labels,
		),
		mutations: prometheus.NewDesc(
			"cowkit_map_mutations_total",
			"Total number of entry-level changes applied.",
			nil, labels,
		),
		publishes: prometheus.NewDesc(
			"cowkit_map_publishes_total",
			"Total number of snapshots published.",
			nil, labels,
		),
		skippedCopies: prometheus.NewDesc(
			"cowkit_map_copies_skipped_total",
			"Total number of mutations short-circuited without copying.",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.mutations
	ch <- c.publishes
	ch <- c.skippedCopies
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.mutations, prometheus.CounterValue, float64(s.Mutations))
	ch <- prometheus.MustNewConstMetric(c.publishes, prometheus.CounterValue, float64(s.Publishes))
	ch <- prometheus.MustNewConstMetric(c.skippedCopies, prometheus.CounterValue, float64(s.SkippedCopies))
}

// Handler returns an HTTP handler serving the registry in Prometheus
// exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
