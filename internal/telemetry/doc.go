// Package telemetry wires Prometheus metrics and an OpenTelemetry
// tracer across every subsystem: storage operations, decay sweeps,
// consolidation quality, validation pass rate, retrieval latency, and
// concurrency queue depth.
//
// Grounded on cuemby-warren's pkg/metrics (Gauge/Counter/Histogram
// naming and a Timer helper for ObserveDuration, ported structurally)
// and steveyegge-beads's use of a package-scoped otel.Tracer plus
// span.RecordError/SetStatus/End around a traced operation (ported
// structurally). Unlike warren's package-level prometheus.MustRegister
// in init(), metrics here are fields on a constructed *Metrics bound to
// its own *prometheus.Registry, so a process (or a test) can build more
// than one without a duplicate-registration panic; the tracer follows
// spec.md §6's "tracing is off unless explicitly enabled" by simply
// never calling otel.SetTracerProvider when disabled, leaving otel's
// own default no-op global tracer in effect, the same no-cost-when-off
// behavior beads relies on implicitly.
package telemetry
