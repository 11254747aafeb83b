// Package metric provides Prometheus metrics for DocMesh.
//
// It exposes counters for message and update throughput, gauges for
// room and client population, and a latency histogram for update
// handling, all registered on a dedicated Prometheus registry served
// by the metrics HTTP endpoint.
package metric
