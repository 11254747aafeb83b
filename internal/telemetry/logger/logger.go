package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the structured logging interface used across DocMesh.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Format selects the handler: "text" or "json".
	Format string
	// Output defaults to os.Stderr when nil.
	Output io.Writer
	// AddSource includes the caller position in each record.
	AddSource bool
}

// DefaultConfig returns the configuration used before any explicit
// setup: info-level JSON to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

// levelVar backs every logger built by New, so SetLevel takes effect
// across all of them at once.
var levelVar = new(slog.LevelVar)

// New builds a Logger from cfg.
func New(cfg Config) (Logger, error) {
	levelVar.Set(parseLevel(cfg.Level))
	return &adapter{sl: slog.New(newHandler(cfg)), ctx: context.Background()}, nil
}

func newHandler(cfg Config) slog.Handler {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: levelVar, AddSource: cfg.AddSource}
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		return slog.NewTextHandler(out, opts)
	default:
		return slog.NewJSONHandler(out, opts)
	}
}

// SetLevel adjusts the level of every logger at runtime, used by the
// config hot-reload path.
func SetLevel(level string) {
	levelVar.Set(parseLevel(level))
}

// GetLevel reports the currently effective level.
func GetLevel() string {
	switch levelVar.Level() {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// adapter bridges the Logger interface onto slog, carrying a context
// for the *Context logging variants.
type adapter struct {
	sl  *slog.Logger
	ctx context.Context
}

func (a *adapter) Debug(msg string, args ...any) { a.sl.DebugContext(a.ctx, msg, args...) }
func (a *adapter) Info(msg string, args ...any)  { a.sl.InfoContext(a.ctx, msg, args...) }
func (a *adapter) Warn(msg string, args ...any)  { a.sl.WarnContext(a.ctx, msg, args...) }
func (a *adapter) Error(msg string, args ...any) { a.sl.ErrorContext(a.ctx, msg, args...) }

func (a *adapter) With(args ...any) Logger {
	return &adapter{sl: a.sl.With(args...), ctx: a.ctx}
}

func (a *adapter) WithContext(ctx context.Context) Logger {
	return &adapter{sl: a.sl, ctx: ctx}
}

// holder wraps the Logger so atomic.Value sees one concrete type even
// when callers install different Logger implementations.
type holder struct{ l Logger }

var defaultLogger atomic.Value

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(holder{l})
}

// SetDefault installs the process-wide default logger.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger.Store(holder{l})
	}
}

// Default returns the process-wide default logger.
func Default() Logger {
	return defaultLogger.Load().(holder).l
}

// Debug logs at debug level on the default logger.
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }

// Info logs at info level on the default logger.
func Info(msg string, args ...any) { Default().Info(msg, args...) }

// Warn logs at warn level on the default logger.
func Warn(msg string, args ...any) { Default().Warn(msg, args...) }

// Error logs at error level on the default logger.
func Error(msg string, args ...any) { Default().Error(msg, args...) }
