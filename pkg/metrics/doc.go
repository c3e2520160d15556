// Package metrics exposes apisim counters in the Prometheus text format
// (text/plain; version=0.0.4).
//
// Supported metric types:
//   - Counter: monotonically increasing value, optionally labelled
//   - Histogram: distribution of observed values over fixed buckets
//   - GaugeFunc: a value read from a callback at scrape time
//
// All metrics are safe for concurrent use.
//
// Usage:
//
//	reg := metrics.NewRegistry()
//	hits := reg.NewCounter("apisim_example_total", "Example counter", "status")
//	hits.WithLabels("200").Inc()
//	mux.Handle("GET /metrics", reg.Handler())
package metrics
