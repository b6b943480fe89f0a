// Package metrics tracks external command invocations with Prometheus.
//
// Key components:
//   - Metrics: Queues invocation results and applies them on a background goroutine.
//   - Metric: Hook point, exit status and duration of one invocation.
//   - WriteTextfile: Dumps a registry for a node exporter textfile collector.
//
// Usage example:
//
//	registry := prometheus.NewRegistry()
//	m, _ := metrics.NewWithRegistry(registry)
//	m.Register(&metrics.Metric{Point: "label", Status: types.StatusSuccess})
//	m.Shutdown()
//	_ = metrics.WriteTextfile("/var/lib/node_exporter/commandhook.prom", registry)
//
// The agent is short lived per call, so Shutdown drains the queue before returning.
package metrics
