package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultTracerName is the instrumentation name used by lattice.
const DefaultTracerName = "lattice"

// Tracer returns the tracer for name from the global provider. An empty
// name uses DefaultTracerName. When enabled is false a no-op tracer is
// returned.
func Tracer(name string, enabled bool) trace.Tracer {
	if !enabled {
		return noop.NewTracerProvider().Tracer(DefaultTracerName)
	}
	if name == "" {
		name = DefaultTracerName
	}
	return otel.Tracer(name)
}
