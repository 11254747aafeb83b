package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name       string
		server     string
		wantPrefix string
	}{
		{"with http prefix", "http://localhost:7080", "http://localhost:7080"},
		{"with https prefix", "https://localhost:7080", "https://localhost:7080"},
		{"without prefix", "localhost:7080", "http://localhost:7080"},
		{"hostname only", "api.example.com", "http://api.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewHTTPClient(tt.server)
			if client.BaseURL() != tt.wantPrefix {
				t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), tt.wantPrefix)
			}
		})
	}
}

func TestHTTPClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check method
		if r.Method != http.MethodGet {
			t.Errorf("method = %q, want GET", r.Method)
		}

		if r.Header.Get("User-Agent") != "docmesh-cli/1.0" {
			t.Errorf("User-Agent = %q, want %q", r.Header.Get("User-Agent"), "docmesh-cli/1.0")
		}

		// Check path
		if r.URL.Path != "/test/path" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/test/path")
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	resp, err := client.Get(context.Background(), "/test/path")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestParseResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","instanceId":"inst-1"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	resp, err := client.Get(context.Background(), "/health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	var body struct {
		Status     string `json:"status"`
		InstanceID string `json:"instanceId"`
	}
	if err := ParseResponse(resp, &body); err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}

	if body.Status != "healthy" {
		t.Errorf("status = %q, want %q", body.Status, "healthy")
	}
	if body.InstanceID != "inst-1" {
		t.Errorf("instanceId = %q, want %q", body.InstanceID, "inst-1")
	}
}

func TestParseResponse_ErrorWithCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"DM-SYS-5000","message":"internal server error"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	resp, err := client.Get(context.Background(), "/boom")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	err = ParseResponse(resp, nil)
	if err == nil {
		t.Fatal("ParseResponse should fail for 500 response")
	}
	if !strings.Contains(err.Error(), "DM-SYS-5000") {
		t.Errorf("error = %q, want error code included", err.Error())
	}
}

func TestParseResponse_ErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	resp, err := client.Get(context.Background(), "/missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	err = ParseResponse(resp, nil)
	if err == nil {
		t.Fatal("ParseResponse should fail for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q, want status code included", err.Error())
	}
}
