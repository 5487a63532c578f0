// Package logger extends log/slog with the trace level used for
// per-packet logging, and provides the nop logger installed when a
// client is built without one.
package logger

import (
	"context"
	"log/slog"
	"strings"
)

// LevelTrace sits below slog.LevelDebug. Trace records describe every
// packet sent and received, without bulk data.
const LevelTrace = slog.Level(-8)

// Nop returns a logger that discards every record.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Trace emits a trace-level record on l.
func Trace(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

// ParseLevel maps a level name to its slog.Level. Recognized names are
// trace, debug, info, warn and error, case-insensitively.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
