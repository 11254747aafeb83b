// Package main provides the entry point for docmesh-server.
//
// The server is one DocMesh instance:
//
//   - WebSocket endpoint for realtime document synchronization
//   - HTTP health and diagnostics endpoints
//   - Prometheus metrics on a separate listener
//   - Redis pub/sub replication between instances
//
// Usage:
//
//	docmesh-server [flags]
//	docmesh-server --config /path/to/config.yaml
//
// The server loads configuration, connects the replication bus,
// and starts all configured listeners.
package main
