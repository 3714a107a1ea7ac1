// Package metrics defines the sink interfaces used to observe the round
// loop. Every sink implements MetricsSink; optional recorder interfaces
// cover penalties, stock snapshots and allocator strategy changes. Sinks
// are built from configuration through the registry in this package and
// combined with MultiSink when several are configured.
package metrics
