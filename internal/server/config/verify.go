// Package config defines the server configuration structure.
package config

import "errors"

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyReplication(&cfg.Replication); err != nil {
		return err
	}
	return verifyLimits(&cfg.Limits)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

func verifyReplication(cfg *ReplicationSection) error {
	switch cfg.Mode {
	case "redis":
		if cfg.Addr == "" {
			return errors.New("replication.addr is required in redis mode")
		}
	case "memory":
	default:
		return errors.New("replication.mode must be \"redis\" or \"memory\"")
	}

	if cfg.ConnectAttempts < 1 {
		return errors.New("replication.connect_attempts must be at least 1")
	}
	if cfg.BackoffBase <= 0 {
		return errors.New("replication.backoff_base must be positive")
	}
	return nil
}

func verifyLimits(cfg *LimitsSection) error {
	if cfg.MessageRate <= 0 {
		return errors.New("limits.message_rate must be positive")
	}
	if cfg.MessageBurst < 1 {
		return errors.New("limits.message_burst must be at least 1")
	}
	return nil
}
