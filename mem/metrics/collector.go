// Package metrics exports arena counters and occupancy to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/memkit/mem/arena"
)

// Source is what the collector reads on every scrape. *arena.Arena
// satisfies it.
type Source interface {
	Stats() arena.Stats
	Usage() (arena.Usage, error)
}

// Collector is a prometheus.Collector over one arena.
//
// Scrapes read the arena directly, so they must be serialized with every
// other call on it, the same as any other arena access.
type Collector struct {
	src Source

	calls      *prometheus.Desc
	failures   *prometheus.Desc
	splits     *prometheus.Desc
	coalesces  *prometheus.Desc
	bytesTotal *prometheus.Desc
	occupancy  *prometheus.Desc
	blocks     *prometheus.Desc
	largest    *prometheus.Desc
}

// NewCollector returns a collector labelling every series with arena=name.
func NewCollector(src Source, name string) *Collector {
	labels := prometheus.Labels{"arena": name}
	return &Collector{
		src: src,
		calls: prometheus.NewDesc("memkit_arena_calls_total",
			"Allocator calls by operation", []string{"op"}, labels),
		failures: prometheus.NewDesc("memkit_arena_failures_total",
			"Allocator calls that returned an error, by operation", []string{"op"}, labels),
		splits: prometheus.NewDesc("memkit_arena_splits_total",
			"Blocks split on allocation", nil, labels),
		coalesces: prometheus.NewDesc("memkit_arena_coalesces_total",
			"Free block merges by direction", []string{"direction"}, labels),
		bytesTotal: prometheus.NewDesc("memkit_arena_payload_bytes_total",
			"Payload bytes handed out or returned, by operation", []string{"op"}, labels),
		occupancy: prometheus.NewDesc("memkit_arena_bytes",
			"Region bytes by block state, headers included", []string{"state"}, labels),
		blocks: prometheus.NewDesc("memkit_arena_blocks",
			"Blocks in the list by state", []string{"state"}, labels),
		largest: prometheus.NewDesc("memkit_arena_largest_free_bytes",
			"Payload size of the largest free block", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.calls
	ch <- c.failures
	ch <- c.splits
	ch <- c.coalesces
	ch <- c.bytesTotal
	ch <- c.occupancy
	ch <- c.blocks
	ch <- c.largest
}

// Collect implements prometheus.Collector. Occupancy series are omitted when
// the arena cannot be walked (before Initialize or after Close).
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	counter := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, v, labels...)
	}
	counter(c.calls, float64(s.AllocCalls), "allocate")
	counter(c.calls, float64(s.FreeCalls), "free")
	counter(c.failures, float64(s.AllocFailures), "allocate")
	counter(c.failures, float64(s.FreeFailures), "free")
	counter(c.splits, float64(s.Splits))
	counter(c.coalesces, float64(s.CoalesceForward), "forward")
	counter(c.coalesces, float64(s.CoalesceBackward), "backward")
	counter(c.bytesTotal, float64(s.BytesAllocated), "allocate")
	counter(c.bytesTotal, float64(s.BytesFreed), "free")

	u, err := c.src.Usage()
	if err != nil {
		return
	}
	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}
	gauge(c.occupancy, float64(u.Busy), "busy")
	gauge(c.occupancy, float64(u.Free), "free")
	gauge(c.blocks, float64(u.Blocks-u.FreeBlocks), "busy")
	gauge(c.blocks, float64(u.FreeBlocks), "free")
	gauge(c.largest, float64(u.LargestFree))
}
