// Package metrics exposes client pipeline and control-channel counters in
// the Prometheus format. Each Metrics value owns its registry so tests and
// multiple clients in one process do not collide.
package metrics
