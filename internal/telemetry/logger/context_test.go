package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if FromContext(t.Context()) == nil {
		t.Fatal("FromContext() returned nil for a bare context")
	}
}

func TestWithLogger_RoundTrip(t *testing.T) {
	log, err := New(Config{Level: "info", Format: "json", Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(t.Context(), log)
	if FromContext(ctx) != log {
		t.Error("FromContext() did not return the stored logger")
	}
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(t.Context(), "req-42")
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "req-42")
	}

	if got := RequestIDFromContext(t.Context()); got != "" {
		t.Errorf("RequestIDFromContext(bare) = %q, want empty", got)
	}
}

func TestL_EnrichesWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(t.Context(), log)
	ctx = WithRequestID(ctx, "req-99")

	L(ctx).Info("diagnostics served")

	got := buf.String()
	if !strings.Contains(got, `"request_id":"req-99"`) {
		t.Errorf("request id missing from record: %q", got)
	}
	if !strings.Contains(got, "diagnostics served") {
		t.Errorf("message missing from record: %q", got)
	}
}
