// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bureau-foundation/litehost/lib/pool"
)

// CountsSource is anything that reports pool counts, such as a
// connpool.Manager or a pool.Registry.
type CountsSource interface {
	GetCounts(fileName string) pool.Counts
}

// PoolCollector is a prometheus.Collector over a CountsSource.
type PoolCollector struct {
	source CountsSource

	idle      *prometheus.Desc
	idleTotal *prometheus.Desc
	checkouts *prometheus.Desc
	returns   *prometheus.Desc
}

var _ prometheus.Collector = (*PoolCollector)(nil)

// NewPoolCollector returns a collector reporting source under
// namespace.
func NewPoolCollector(namespace string, source CountsSource) *PoolCollector {
	name := func(metric string) string {
		return prometheus.BuildFQName(namespace, "pool", metric)
	}
	return &PoolCollector{
		source: source,
		idle: prometheus.NewDesc(name("idle_connections"),
			"Idle connections queued per database file.", []string{"file"}, nil),
		idleTotal: prometheus.NewDesc(name("idle_connections_total"),
			"Idle connections queued across all database files.", nil, nil),
		checkouts: prometheus.NewDesc(name("checkouts_total"),
			"Pooled connections handed out since the last counter reset.", nil, nil),
		returns: prometheus.NewDesc(name("returns_total"),
			"Connections accepted back into the pool since the last counter reset.", nil, nil),
	}
}

// Describe sends the descriptors of every exported series.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.idle
	ch <- c.idleTotal
	ch <- c.checkouts
	ch <- c.returns
}

// Collect reads a counts snapshot and sends one metric per series.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	counts := c.source.GetCounts("")
	for file, queued := range counts.Files {
		ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(queued), file)
	}
	ch <- prometheus.MustNewConstMetric(c.idleTotal, prometheus.GaugeValue, float64(counts.Queued))
	ch <- prometheus.MustNewConstMetric(c.checkouts, prometheus.CounterValue, float64(counts.Opened))
	ch <- prometheus.MustNewConstMetric(c.returns, prometheus.CounterValue, float64(counts.Closed))
}
