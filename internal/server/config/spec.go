// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for docmesh-server.
type ServerConfig struct {
	Server      ServerSection      `koanf:"server"`
	Replication ReplicationSection `koanf:"replication"`
	Limits      LimitsSection      `koanf:"limits"`
	Log         LogSection         `koanf:"log"`
}

// ServerSection configures server endpoints and identity.
type ServerSection struct {
	// Addr is the listen address for the client-facing HTTP server
	// (WebSocket endpoint plus health and diagnostics).
	Addr string `koanf:"addr"`

	// MetricsAddr is the listen address for the Prometheus metrics
	// endpoint. Empty disables the metrics server.
	MetricsAddr string `koanf:"metrics_addr"`

	// InstanceID identifies this server instance on the replication
	// bus. If empty, a random ID is generated at startup.
	InstanceID string `koanf:"instance_id"`
}

// ReplicationSection configures the replication bus.
type ReplicationSection struct {
	// Mode selects the bus implementation: "redis" or "memory".
	// Memory mode is single-instance only.
	Mode string `koanf:"mode"`

	// Addr is the Redis address (host:port) for redis mode.
	Addr string `koanf:"addr"`

	// Password authenticates against Redis when set.
	Password string `koanf:"password"`

	// ConnectAttempts is how many times to try connecting to the bus
	// before giving up at startup.
	ConnectAttempts int `koanf:"connect_attempts"`

	// BackoffBase is the base delay between connect attempts; attempt
	// n waits n*BackoffBase.
	BackoffBase time.Duration `koanf:"backoff_base"`
}

// LimitsSection configures per-connection rate limiting.
type LimitsSection struct {
	// MessageRate is the sustained inbound message rate allowed per
	// connection (messages/second).
	MessageRate float64 `koanf:"message_rate"`

	// MessageBurst is the burst size allowed per connection.
	MessageBurst int `koanf:"message_burst"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
