// Package metrics exposes parseas cache statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/parseas"
)

// CacheCollector reports the counters of one parseas.Cache.
type CacheCollector struct {
	cache *parseas.Cache

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	entries   *prometheus.Desc
	capacity  *prometheus.Desc
}

// NewCacheCollector returns a collector for c (DefaultCache when nil).
// Metric names are prefixed with namespace when it is not empty.
func NewCacheCollector(c *parseas.Cache, namespace string) *CacheCollector {
	if c == nil {
		c = parseas.DefaultCache()
	}
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "schema_cache", n)
	}
	return &CacheCollector{
		cache:     c,
		hits:      prometheus.NewDesc(name("hits_total"), "Wrapper schema cache hits.", nil, nil),
		misses:    prometheus.NewDesc(name("misses_total"), "Wrapper schema cache misses (schema synthesized).", nil, nil),
		evictions: prometheus.NewDesc(name("evictions_total"), "Wrapper schemas evicted for capacity.", nil, nil),
		entries:   prometheus.NewDesc(name("entries"), "Wrapper schemas currently cached.", nil, nil),
		capacity:  prometheus.NewDesc(name("capacity"), "Maximum number of cached wrapper schemas.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.entries
	ch <- c.capacity
}

// Collect implements prometheus.Collector.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Len))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity))
}
