// Package handler provides HTTP request handlers for DocMesh.
package handler

import (
	"net/http"
	"time"
)

// HealthResponse is the GET /health response body.
type HealthResponse struct {
	Status     string `json:"status"`
	InstanceID string `json:"instanceId"`
	Time       string `json:"time"`
}

// DiagnosticsResponse is the GET /diagnostics response body.
type DiagnosticsResponse struct {
	InstanceID string         `json:"instanceId"`
	Rooms      int            `json:"rooms"`
	Clients    int            `json:"clients"`
	Bus        BusDiagnostics `json:"bus"`
}

// BusDiagnostics describes replication bus connectivity.
type BusDiagnostics struct {
	Connected bool     `json:"connected"`
	Channels  []string `json:"channels"`
}

// Health handles GET /health.
func (h *Handler) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, HealthResponse{
			Status:     "healthy",
			InstanceID: h.instanceID,
			Time:       time.Now().UTC().Format(time.RFC3339),
		})
	})
}

// Diagnostics handles GET /diagnostics.
func (h *Handler) Diagnostics() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := h.reg.Stats()
		status := h.bus.Status()

		channels := status.Channels
		if channels == nil {
			channels = []string{}
		}

		h.writeJSON(w, http.StatusOK, DiagnosticsResponse{
			InstanceID: h.instanceID,
			Rooms:      stats.Rooms,
			Clients:    stats.Clients,
			Bus: BusDiagnostics{
				Connected: status.Connected,
				Channels:  channels,
			},
		})
	})
}
