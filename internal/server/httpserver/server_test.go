package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/docmesh-go/internal/registry"
	"github.com/yndnr/docmesh-go/internal/replication"
)

func TestNew(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := New(":8080", handler)
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.httpServer == nil {
		t.Error("httpServer is nil")
	}
	if s.handler == nil {
		t.Error("handler is nil")
	}
}

func TestServer_Shutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := New(":0", handler) // Use port 0 to get a random available port

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ListenAndServe()
	}()

	// Give server time to start
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Shutdown(ctx)
	if err != nil {
		t.Errorf("Shutdown error: %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			t.Errorf("ListenAndServe returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for ListenAndServe to return")
	}
}

type fakeRegistry struct{ stats registry.Stats }

func (f *fakeRegistry) Stats() registry.Stats { return f.stats }

type fakeBus struct{ status replication.Status }

func (f *fakeBus) Status() replication.Status { return f.status }

func newTestRouter() http.Handler {
	return NewRouter(&RouterConfig{
		InstanceID: "inst-test",
		Registry:   &fakeRegistry{stats: registry.Stats{Rooms: 2, Clients: 5}},
		Bus: &fakeBus{status: replication.Status{
			Connected: true,
			Channels:  []string{"room:alpha:updates"},
		}},
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want %q", body["status"], "healthy")
	}
	if body["instanceId"] != "inst-test" {
		t.Errorf("instanceId = %q, want %q", body["instanceId"], "inst-test")
	}

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set")
	}
}

func TestRouter_Diagnostics(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		InstanceID string `json:"instanceId"`
		Rooms      int    `json:"rooms"`
		Clients    int    `json:"clients"`
		Bus        struct {
			Connected bool     `json:"connected"`
			Channels  []string `json:"channels"`
		} `json:"bus"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}

	if body.InstanceID != "inst-test" {
		t.Errorf("instanceId = %q, want %q", body.InstanceID, "inst-test")
	}
	if body.Rooms != 2 {
		t.Errorf("rooms = %d, want 2", body.Rooms)
	}
	if body.Clients != 5 {
		t.Errorf("clients = %d, want 5", body.Clients)
	}
	if !body.Bus.Connected {
		t.Error("bus.connected should be true")
	}
	if len(body.Bus.Channels) != 1 || body.Bus.Channels[0] != "room:alpha:updates" {
		t.Errorf("bus.channels = %v", body.Bus.Channels)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestRouter_UnknownPath(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRequestID_PropagatesExisting(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
	}), RequestID(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-fixed")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "req-fixed" {
		t.Errorf("request id = %q, want %q", seen, "req-fixed")
	}
	if rec.Header().Get("X-Request-ID") != "req-fixed" {
		t.Errorf("response header = %q, want %q", rec.Header().Get("X-Request-ID"), "req-fixed")
	}
}

func TestRecover_ReturnsInternalError(t *testing.T) {
	router := NewRouter(&RouterConfig{
		InstanceID: "inst-test",
		Registry:   &fakeRegistry{},
		Bus:        &fakeBus{},
		WebSocket: func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if rec.Header().Get("X-Error-Code") != "DM-SYS-5000" {
		t.Errorf("X-Error-Code = %q, want %q", rec.Header().Get("X-Error-Code"), "DM-SYS-5000")
	}
}
