package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New returns a JSON logger writing to path when enabled, and a logger that
// discards everything otherwise. The returned closer must be closed on exit.
// Nothing goes to stderr: the TUI owns the terminal.
func New(path string, enabled bool) (*slog.Logger, io.Closer, error) {
	if !enabled || path == "" {
		return Discard(), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, f, nil
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
