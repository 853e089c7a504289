// Package telemetry wires logging, Prometheus metrics and OpenTelemetry
// tracing for lattice trees.
//
// Metrics implements both dom.Observer and update.Observer, so one value
// can be passed to dom.WithObserver and update.WithObserver:
//
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	q := update.New(update.WithObserver(m))
//	tree := dom.NewTree(surface, dom.WithQueue(q), dom.WithObserver(m))
//
// Metrics collected:
//   - lattice_nodes_materialized_total: nodes promoted by creating surface objects, by kind
//   - lattice_nodes_hydrated_total: nodes promoted by taking over existing objects, by kind
//   - lattice_hydration_failures_total: failed Hydrate calls, by error code
//   - lattice_surface_errors_total: surface calls that returned an error, by operation
//   - lattice_updates_applied_total / lattice_updates_failed_total: deferred updates
//   - lattice_flush_duration_seconds: time spent draining the update queue
//   - lattice_http_requests_total: requests served, by route and status
package telemetry
