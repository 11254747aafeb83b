package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info("client joined room", "room", "alpha", "client", "c1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["msg"] != "client joined room" {
		t.Errorf("msg = %v, want %q", record["msg"], "client joined room")
	}
	if record["room"] != "alpha" {
		t.Errorf("room = %v, want %q", record["room"], "alpha")
	}
}

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info("bus connected", "addr", "127.0.0.1:6379")

	got := buf.String()
	if !strings.Contains(got, "bus connected") || !strings.Contains(got, "addr=127.0.0.1:6379") {
		t.Errorf("text output wrong: %q", got)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer SetLevel("info")

	log.Debug("dropped")
	log.Info("dropped too")
	if buf.Len() != 0 {
		t.Errorf("below-level records written: %q", buf.String())
	}

	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestSetLevel_AffectsExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer SetLevel("info")

	log.Debug("before")
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}

	SetLevel("debug")
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want %q", GetLevel(), "debug")
	}

	log.Debug("after")
	if !strings.Contains(buf.String(), "after") {
		t.Errorf("debug record missing after SetLevel: %q", buf.String())
	}
}

func TestWith_AttachesFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.With("instance", "inst-a").Info("started")

	if !strings.Contains(buf.String(), `"instance":"inst-a"`) {
		t.Errorf("With field missing: %q", buf.String())
	}
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	SetDefault(log)
	if Default() != log {
		t.Error("Default() did not return the installed logger")
	}

	Info("via package function")
	if !strings.Contains(buf.String(), "via package function") {
		t.Errorf("package-level Info did not use the default logger: %q", buf.String())
	}

	// nil must not replace the installed default.
	SetDefault(nil)
	if Default() != log {
		t.Error("SetDefault(nil) replaced the default logger")
	}
}
