// Package gwlog is the gateway's logging sink: a thin wrapper over
// log/slog that attaches device-id/port correlation fields consistently
// (spec § 7: "all caught errors are logged with the device ID and port
// for correlation"), and that can be switched off entirely by
// logging_active=false in the config snapshot.
package gwlog

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the gateway-wide logging façade. The zero value is not
// usable; construct one with New or Discard.
type Logger struct {
	slog *slog.Logger
}

// New builds a Logger writing text-formatted lines to w. If active is
// false, the returned Logger discards everything (spec § 3:
// logging_active gates all log output).
func New(w io.Writer, active bool) *Logger {
	if !active {
		return Discard()
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &Logger{slog: slog.New(handler)}
}

// Discard returns a Logger that drops every record. Used both for
// logging_active=false and as a safe default in tests.
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Info logs at info level with the given key/value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs at warn level with the given key/value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs at error level with the given key/value pairs.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// Device returns a Logger that prepends device_id and port to every
// subsequent record, for the per-device correlation spec § 7 requires
// of reader, send-path, and admission-failure logging.
func (l *Logger) Device(deviceID, port string) *Logger {
	return &Logger{slog: l.slog.With("device_id", deviceID, "port", port)}
}

// Port returns a Logger that prepends only a port field, for admission
// failures that occur before a device has been assigned an ID.
func (l *Logger) Port(port string) *Logger {
	return &Logger{slog: l.slog.With("port", port)}
}

// OpenLogFile opens path for appending, creating it if necessary, for
// use as the gateway's log sink (the fourth CLI positional argument,
// spec § 6).
func OpenLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
