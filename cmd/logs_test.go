package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zhubert/parley/internal/logger"
)

// useTempLog points the logger at a fresh dir for one test.
func useTempLog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	logger.Reset()
	if err := logger.Init(filepath.Join(dir, "parley-debug.log")); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		logger.Reset()
		logger.Init(os.DevNull)
	})
	return dir
}

func TestLogs_PrintsPath(t *testing.T) {
	dir := useTempLog(t)

	out, _, err := run(t, "", "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(dir, "parley-debug.log") {
		t.Errorf("output = %q", out)
	}
}

func TestLogs_Clear(t *testing.T) {
	dir := useTempLog(t)
	for _, name := range []string{"parley-old.log", "parley-demo.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := run(t, "", "logs", "--clear")
	if err != nil {
		t.Fatalf("logs --clear: %v", err)
	}
	if !strings.Contains(out, "Removed 2 log file(s)") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "parley-debug.log")); err != nil {
		t.Error("the active log should survive --clear")
	}
}
