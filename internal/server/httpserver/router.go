// Package httpserver provides the HTTP server for DocMesh.
package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yndnr/docmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// InstanceID identifies this server instance in health and
	// diagnostics responses.
	InstanceID string

	// Registry reports room and client population.
	Registry handler.RegistryStats

	// Bus reports replication connectivity.
	Bus handler.BusStatus

	// WebSocket serves the client WebSocket endpoint.
	WebSocket http.HandlerFunc

	// Logger for request logging.
	Logger logger.Logger
}

// NewRouter creates and configures the HTTP router with all routes
// and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	h := handler.New(cfg.InstanceID, cfg.Registry, cfg.Bus, log)

	r := mux.NewRouter()
	r.Handle("/health",
		Chain(h.Health(), RequestID(log), Recover(), RequestLog())).Methods(http.MethodGet)
	r.Handle("/diagnostics",
		Chain(h.Diagnostics(), RequestID(log), Recover(), RequestLog())).Methods(http.MethodGet)

	// The WebSocket route skips the logging middleware; a connection
	// is long-lived and logged by the gateway itself.
	if cfg.WebSocket != nil {
		r.Handle("/ws", Chain(cfg.WebSocket, RequestID(log), Recover()))
	}

	return r
}
