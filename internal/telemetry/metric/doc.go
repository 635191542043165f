// Package metric provides Prometheus metrics for minredis.
//
//   - prometheus.go: the metric registry and nil-safe recording helpers
//   - collector.go: a collector reporting the live key count at scrape time
//   - server.go: the /metrics HTTP endpoint
//
// A nil *Registry is valid and records nothing, so components can take one
// unconditionally.
package metric
