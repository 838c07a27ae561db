/*
Package observability turns engine lifecycle events into structured log records.

The hooks returned by LogHooks can be combined with the Prometheus hooks of
pkg/adapters/metrics through metrics.Chain.
*/
package observability
