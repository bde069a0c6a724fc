// Package metrics defines the recorder interfaces used to observe charging
// passes, producer faults, derived stats changes and vessel status. Sinks
// such as the Prometheus and InfluxDB implementations in infra/metrics are
// built from configuration through NewMetricsSink, which returns a
// MultiSink when more than one sink is configured.
package metrics
