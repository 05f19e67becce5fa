// Package logger owns the process-wide structured logger. The terminal
// belongs to the TUI, so records go to a file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultPath is used when Init has not been called.
var DefaultPath = filepath.Join(os.TempDir(), "workbench.log")

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	current  *slog.Logger
	file     *os.File
	path     string
)

// SetDebug switches between debug and info level.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Init opens (appending) the log file at p and makes it the destination of
// Get. Calling Init again switches files.
func Init(p string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory for %s: %w", p, err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", p, err)
	}
	if file != nil {
		_ = file.Close()
	}
	file, path = f, p
	current = newLogger(f)
	current.Info("logger initialized", "path", p)
	return nil
}

// InitWriter sends records to w. Tests use it to capture output.
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	current = newLogger(w)
	path = ""
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
}

// Get returns the process logger, opening DefaultPath on first use. If the
// file cannot be opened records are discarded.
func Get() *slog.Logger {
	mu.Lock()
	if current != nil {
		l := current
		mu.Unlock()
		return l
	}
	mu.Unlock()

	if err := Init(DefaultPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		mu.Lock()
		defer mu.Unlock()
		if current == nil {
			current = newLogger(io.Discard)
		}
		return current
	}
	mu.Lock()
	defer mu.Unlock()
	return current
}

// With returns the process logger with a component attribute.
func With(component string) *slog.Logger {
	return Get().With("component", component)
}

// Path returns the current log file path, or "" when writing elsewhere.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return path
}

// Close flushes and closes the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	current = nil
	return err
}
