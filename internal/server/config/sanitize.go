// Package config defines the server configuration structure.
package config

import "strings"

// Sanitize returns a copy of cfg safe to log: secrets are masked,
// everything else passes through.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	out := *cfg
	if out.Replication.Password != "" {
		out.Replication.Password = maskSecret(out.Replication.Password)
	}
	return &out
}

// maskSecret keeps the first and last two characters of longer
// secrets so operators can tell credentials apart in logs.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
