// Package logger provides structured logging for DocMesh.
//
// It wraps the standard library log/slog to provide structured JSON
// logging with dynamic level adjustment and context propagation:
//
//   - logger.go: slog-backed logger and global default
//   - context.go: context-aware logging with connection/room fields
//
// Features:
//
//   - JSON structured logging (default) or text output
//   - Runtime log level adjustment (config hot-reload)
//   - Context propagation for per-connection tracing
package logger
