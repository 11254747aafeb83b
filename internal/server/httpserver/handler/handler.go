// Package handler provides HTTP request handlers for DocMesh.
//
// This package implements the health and diagnostics endpoints
// served alongside the WebSocket endpoint.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yndnr/docmesh-go/internal/registry"
	"github.com/yndnr/docmesh-go/internal/replication"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// RegistryStats reports room and client population. Satisfied by
// *registry.Registry.
type RegistryStats interface {
	Stats() registry.Stats
}

// BusStatus reports replication bus connectivity. Satisfied by any
// replication.Bus.
type BusStatus interface {
	Status() replication.Status
}

// Handler serves the health and diagnostics endpoints.
type Handler struct {
	instanceID string
	reg        RegistryStats
	bus        BusStatus
	logger     logger.Logger
}

// New creates a new Handler.
func New(instanceID string, reg RegistryStats, bus BusStatus, log logger.Logger) *Handler {
	return &Handler{
		instanceID: instanceID,
		reg:        reg,
		bus:        bus,
		logger:     log,
	}
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
