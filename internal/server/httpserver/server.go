// Package httpserver provides the HTTP server for DocMesh.
//
// It hosts the WebSocket endpoint clients connect through, plus the
// health and diagnostics endpoints.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server wraps the standard http.Server with DocMesh defaults.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// New creates a server listening on addr. Only the header read is
// bounded by a timeout; request timeouts would sever long-lived
// WebSocket connections.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		handler: handler,
	}
}

// ListenAndServe blocks serving requests until Shutdown or a listener
// error.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
