// Package httpserver provides the HTTP server for DocMesh.
//
// This package implements the client-facing HTTP surface:
//
//   - server.go: thin http.Server wrapper with graceful shutdown
//   - router.go: gorilla/mux routing for /health, /diagnostics, /ws
//   - middleware.go: request ID, panic recovery, request logging
//
// Prometheus metrics are served by a separate listener owned by
// cmd/docmesh-server, not by this router.
package httpserver
