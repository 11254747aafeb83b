// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultAddr        = "127.0.0.1:7080"
	DefaultMetricsAddr = "127.0.0.1:7090"

	DefaultReplicationMode = "redis"
	DefaultReplicationAddr = "127.0.0.1:6379"
	DefaultConnectAttempts = 5
	DefaultBackoffBase     = 500 * time.Millisecond

	DefaultMessageRate  = 200.0
	DefaultMessageBurst = 400

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:        DefaultAddr,
			MetricsAddr: DefaultMetricsAddr,
		},
		Replication: ReplicationSection{
			Mode:            DefaultReplicationMode,
			Addr:            DefaultReplicationAddr,
			ConnectAttempts: DefaultConnectAttempts,
			BackoffBase:     DefaultBackoffBase,
		},
		Limits: LimitsSection{
			MessageRate:  DefaultMessageRate,
			MessageBurst: DefaultMessageBurst,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
