// Package runlog builds the per-run logger. Every backtest run owns its
// own logger writing into its own results directory; nothing is shared
// between parallel runs.
package runlog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New opens (or creates) dir/name.log and returns a text slog.Logger
// writing to it, plus a closer for the underlying file.
func New(dir, name string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, name+".log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h), f, nil
}

// Discard returns a logger that drops everything. Handy default so callers
// never have to nil-check.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
