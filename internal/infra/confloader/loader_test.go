package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type serverSettings struct {
	Server struct {
		Addr        string `koanf:"addr"`
		MetricsAddr string `koanf:"metrics_addr"`
	} `koanf:"server"`
	Replication struct {
		Mode string `koanf:"mode"`
		Addr string `koanf:"addr"`
	} `koanf:"replication"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docmesh.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoader_FileOnly(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "0.0.0.0:7080"
  metrics_addr: "0.0.0.0:7090"
replication:
  mode: "redis"
  addr: "127.0.0.1:6379"
`)

	var cfg serverSettings
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:7080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "0.0.0.0:7080")
	}
	if cfg.Server.MetricsAddr != "0.0.0.0:7090" {
		t.Errorf("Server.MetricsAddr = %q, want %q", cfg.Server.MetricsAddr, "0.0.0.0:7090")
	}
	if cfg.Replication.Mode != "redis" {
		t.Errorf("Replication.Mode = %q, want %q", cfg.Replication.Mode, "redis")
	}
}

func TestLoader_EnvOnly(t *testing.T) {
	t.Setenv("DOCMESH_SERVER_ADDR", "127.0.0.1:8080")
	t.Setenv("DOCMESH_REPLICATION_MODE", "memory")

	var cfg serverSettings
	if err := NewLoader().Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:8080")
	}
	if cfg.Replication.Mode != "memory" {
		t.Errorf("Replication.Mode = %q, want %q", cfg.Replication.Mode, "memory")
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "from-file:7080"
log:
  level: "info"
`)
	t.Setenv("DOCMESH_SERVER_ADDR", "from-env:8080")

	var cfg serverSettings
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "from-env:8080" {
		t.Errorf("Server.Addr = %q, want env value %q", cfg.Server.Addr, "from-env:8080")
	}
	// File values the env does not touch survive.
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoader_KeepsDefaultsForUnsetKeys(t *testing.T) {
	var cfg serverSettings
	cfg.Server.Addr = "default:7080"
	cfg.Log.Level = "warn"

	path := writeConfig(t, `
replication:
  mode: "memory"
`)

	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "default:7080" {
		t.Errorf("Server.Addr = %q, want untouched default", cfg.Server.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want untouched default", cfg.Log.Level)
	}
	if cfg.Replication.Mode != "memory" {
		t.Errorf("Replication.Mode = %q, want %q", cfg.Replication.Mode, "memory")
	}
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MESH_LOG_LEVEL", "debug")

	var cfg serverSettings
	if err := NewLoader(WithEnvPrefix("MESH_")).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoader_MissingFile(t *testing.T) {
	var cfg serverSettings
	err := NewLoader(WithConfigFile("/nonexistent/docmesh.yaml")).Load(&cfg)
	if err == nil {
		t.Error("Load() should fail for a missing config file")
	}
}
