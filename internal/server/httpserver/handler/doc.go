// Package handler provides HTTP request handlers for DocMesh.
//
// Handlers cover the operational surface only: health checks and
// instance diagnostics. Document traffic flows over the WebSocket
// endpoint served by internal/gateway.
package handler
