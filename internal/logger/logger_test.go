package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestLogger creates a temp log file and initializes the logger with it.
func setupTestLogger(t *testing.T) string {
	t.Helper()
	Reset()

	logPath := filepath.Join(t.TempDir(), "test-debug.log")
	if err := Init(logPath); err != nil {
		t.Fatalf("Failed to init logger: %v", err)
	}
	t.Cleanup(Reset)
	return logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestInit_WritesHeader(t *testing.T) {
	logPath := setupTestLogger(t)

	if Path() != logPath {
		t.Errorf("Path() = %q, want %q", Path(), logPath)
	}
	if !strings.Contains(readLog(t, logPath), "logger initialized") {
		t.Error("log should contain initialization line")
	}

	// A second Init keeps the first file.
	if err := Init(filepath.Join(t.TempDir(), "other.log")); err != nil {
		t.Fatal(err)
	}
	if Path() != logPath {
		t.Errorf("Path() = %q after second Init, want %q", Path(), logPath)
	}
}

func TestInit_BadPath(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if err := Init(filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(envLogFile, "")
	if got, want := DefaultPath(), filepath.Join(os.TempDir(), DefaultLogName); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}

	t.Setenv(envLogFile, "/var/log/parley.log")
	if got := DefaultPath(); got != "/var/log/parley.log" {
		t.Errorf("DefaultPath() = %q, want the env override", got)
	}
}

func TestLazyInitUsesDefaultPath(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	logPath := filepath.Join(t.TempDir(), "lazy.log")
	t.Setenv(envLogFile, logPath)

	WithComponent("api").Info("request sent")

	if Path() != logPath {
		t.Errorf("Path() = %q, want %q", Path(), logPath)
	}
	if !strings.Contains(readLog(t, logPath), "request sent") {
		t.Error("expected the message in the default log")
	}
}

func TestSetDebug(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		present bool
	}{
		{"debug hidden at info", false, false},
		{"debug shown at debug", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logPath := setupTestLogger(t)
			SetDebug(tt.debug)

			WithComponent("reveal").Debug("tick", "marker", "debug-marker")

			got := strings.Contains(readLog(t, logPath), "debug-marker")
			if got != tt.present {
				t.Errorf("marker present = %v, want %v", got, tt.present)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	logPath := setupTestLogger(t)

	WithComponent("chat").Info("reply received", "bytes", 42)

	content := readLog(t, logPath)
	if !strings.Contains(content, "component=chat") {
		t.Errorf("expected component attribute, got %q", content)
	}
	if !strings.Contains(content, "bytes=42") {
		t.Errorf("expected bytes attribute, got %q", content)
	}
}

func TestWithConversation(t *testing.T) {
	logPath := setupTestLogger(t)

	WithConversation("conv-9").Warn("delete failed")

	if !strings.Contains(readLog(t, logPath), "conversationID=conv-9") {
		t.Error("expected conversationID attribute")
	}
}

func TestClose_ThenLogIsNoop(t *testing.T) {
	logPath := setupTestLogger(t)
	log := WithComponent("x")
	Close()

	// Must not panic after close.
	log.Info("after close")
	WithComponent("y").Info("after close")

	if strings.Contains(readLog(t, logPath), "after close") {
		t.Error("nothing should be written after Close")
	}
}

func TestClearLogs(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, "parley-debug.log")

	Reset()
	t.Cleanup(Reset)
	if err := Init(active); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"parley-old.log", "parley-demo.log", "other.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	n, err := ClearLogs(dir)
	if err != nil {
		t.Fatalf("ClearLogs: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d files, want 2", n)
	}
	if _, err := os.Stat(active); err != nil {
		t.Error("the active log must be kept")
	}
	if _, err := os.Stat(filepath.Join(dir, "other.log")); err != nil {
		t.Error("unrelated files must be kept")
	}
}

func TestConcurrentLogging(t *testing.T) {
	setupTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log := WithComponent("worker")
			for j := 0; j < 50; j++ {
				log.Info("message", "goroutine", n, "seq", j)
			}
		}(i)
	}
	wg.Wait()
}
