// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exports connection pool diagnostics as Prometheus
// metrics.
//
// [PoolCollector] reads a fresh [pool.Counts] snapshot on every
// scrape, so it never holds state of its own and never influences pool
// behavior:
//
//	registry := prometheus.NewRegistry()
//	registry.MustRegister(metrics.NewPoolCollector("litehost", app.Pools))
//
// Exported series:
//
//	<namespace>_pool_idle_connections{file}   gauge
//	<namespace>_pool_idle_connections_total   gauge
//	<namespace>_pool_checkouts_total          counter
//	<namespace>_pool_returns_total            counter
//
// The counters restart from zero when the pool's counts are reset.
package metrics
