// Package metrics implements the in-process atomic counter set used
// by the gateway. Exporters are out of scope; integrators read
// snapshots and bridge them to their telemetry system.
package metrics
