// Package report owns the result stream of a run.
//
// Every test outcome and lifecycle message becomes an Entry recorded
// through a single Recorder, which fans entries out to the attached
// sinks as they happen. Sinks are presentation only: the console with
// level highlighting, an append-only text log, a standalone HTML
// report, and optional MQTT/InfluxDB publication for external
// consumers. Counters and exit status are derived from the stream by
// the engine, never by a sink.
//
// The run is strictly sequential, so the Recorder and all sinks are
// single-goroutine and unlocked.
package report
