package cmd

import (
	"bytes"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/mockserver"
)

const testEmail = "ada@example.com"

func TestMain(m *testing.M) {
	logger.Reset()
	logger.Init(os.DevNull)

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}

// testEnv points the config at a temp dir and starts a mock backend.
func testEnv(t *testing.T, opts mockserver.Options) (*mockserver.Server, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PARLEY_CONFIG_DIR", dir)
	t.Setenv("PARLEY_SERVER_URL", "")
	t.Setenv("PARLEY_TOKEN", "")

	cfg := `{"reveal_interval_ms": 1, "reveal_chunk_size": 64}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}

	srv := mockserver.New(opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

// loggedInEnv is testEnv plus a completed login.
func loggedInEnv(t *testing.T, opts mockserver.Options) (*mockserver.Server, string) {
	t.Helper()
	srv, url := testEnv(t, opts)
	if _, _, err := run(t, "", "--server", url, "login", "--email", testEmail, "--password", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return srv, url
}

func resetFlags() {
	debugMode, quietMode, serverURL, logFilePath = true, false, "", ""
	clearLogs = false
	loginEmail, loginPassword = "", ""
	askConversation, askContinue, askFiles, askInstant = "", false, nil, false
	skipConfirm = false
	demoEmail, demoServeOnly, demoAddr = "demo@parley.dev", false, "127.0.0.1:0"
	demoMessageLimit, demoConfirmAfter = mockserver.DefaultFreeMessageLimit, mockserver.DefaultConfirmAfter
	demoReplyDelay = 600 * time.Millisecond
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// savedConfig reloads the config the commands wrote.
func savedConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

type errorReader struct{}

func (errorReader) Read(p []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
