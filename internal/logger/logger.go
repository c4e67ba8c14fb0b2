// ABOUTME: Structured logging configuration using log/slog
// ABOUTME: CLI logs go to stderr; the TUI logs to a file so the screen stays clean

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Init configures the default slog logger to write to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) {
	slog.SetDefault(slog.New(newHandler(w, level, format)))
}

// InitFile points the default logger at <dir>/debug.log and returns a
// closer. With an empty dir, logs are discarded.
func InitFile(dir, level, format string) (io.Closer, error) {
	if dir == "" {
		Init(io.Discard, level, format)
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		Init(io.Discard, level, format)
		return nopCloser{}, err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		Init(io.Discard, level, format)
		return nopCloser{}, err
	}
	Init(f, level, format)
	return f, nil
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts a string log level to slog.Level.
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
