// Package connection provides connection management for docmesh-cli.
//
// This package manages connections to DocMesh servers:
//
//   - http.go: HTTP client for the health and diagnostics endpoints
//   - ws.go: WebSocket client for room traffic
package connection
