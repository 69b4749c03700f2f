// Package logger provides file-based structured logging for parley.
// The TUI owns the terminal, so nothing is ever written to stdout or stderr.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	// DefaultLogName is the log file created in the temp dir when no path is
	// configured.
	DefaultLogName = "parley-debug.log"

	envLogFile = "PARLEY_LOG_FILE"
	logGlob    = "parley-*.log"
)

var (
	slogLogger *slog.Logger
	levelVar   = new(slog.LevelVar)
	debug      bool
	logFile    *os.File
	mu         sync.Mutex
	logPath    string
)

// DefaultPath is where the log goes unless Init picks another file:
// $PARLEY_LOG_FILE, or parley-debug.log in the temp dir.
func DefaultPath() string {
	if p := os.Getenv(envLogFile); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), DefaultLogName)
}

// SetDebug switches between debug and info level. It can be called before
// or after the log file is opened.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debug = enabled
	levelVar.Set(level())
}

func level() slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Init opens the log at path. The first successful Init wins; later calls
// are no-ops until Reset.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if slogLogger != nil {
		return nil
	}
	return openLocked(path)
}

func openLocked(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logPath = path
	logFile = f
	levelVar.Set(level())
	slogLogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	slogLogger.Info("logger initialized", "path", path, "debug", debug)
	return nil
}

// Close closes the log file. Loggers obtained earlier keep working but
// their output is discarded.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	slogLogger = slog.New(slog.DiscardHandler)
}

// Reset restores the initial state so the next use reopens a file.
// Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logPath = ""
	slogLogger = nil
	debug = false
	levelVar = new(slog.LevelVar)
}

// Path returns the active log file path, or "" before initialization.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// ClearLogs removes parley log files from dir, skipping the one currently
// open. It returns the number of files removed.
func ClearLogs(dir string) (int, error) {
	mu.Lock()
	active := logPath
	mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(dir, logGlob))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, p := range matches {
		if p == active {
			continue
		}
		if err := os.Remove(p); err == nil {
			count++
		} else if !os.IsNotExist(err) {
			return count, err
		}
	}
	return count, nil
}

func with(attr slog.Attr) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if slogLogger == nil {
		if err := openLocked(DefaultPath()); err != nil {
			slogLogger = slog.New(slog.DiscardHandler)
		}
	}
	return slogLogger.With(attr)
}

// WithComponent returns a slog.Logger with the component attribute pre-attached.
//
// Example:
//
//	log := logger.WithComponent("chat")
//	log.Info("reply received", "conversationID", id, "bytes", len(reply))
func WithComponent(component string) *slog.Logger {
	return with(slog.String("component", component))
}

// WithConversation returns a slog.Logger scoped to one conversation.
func WithConversation(conversationID string) *slog.Logger {
	return with(slog.String("conversationID", conversationID))
}
