package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/app"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/mockserver"
)

var (
	demoEmail        string
	demoMessageLimit int
	demoConfirmAfter int
	demoReplyDelay   time.Duration
	demoServeOnly    bool
	demoAddr         string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the TUI against a built-in mock backend",
	Long: `Starts an in-memory backend on localhost and opens the TUI signed in to a
fresh free account. Nothing is written to ~/.parley.

Payments confirm on their own after a few status checks, so the whole
upgrade flow can be tried without a real gateway.

With --serve the backend runs alone, for pointing other commands at it:
  parley demo --serve --addr 127.0.0.1:8787
  parley --server http://127.0.0.1:8787 login`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoEmail, "email", "demo@parley.dev", "Account to sign in as")
	demoCmd.Flags().IntVar(&demoMessageLimit, "limit", mockserver.DefaultFreeMessageLimit, "Free plan message limit")
	demoCmd.Flags().IntVar(&demoConfirmAfter, "confirm-after", mockserver.DefaultConfirmAfter, "Status checks before a payment confirms (negative: never)")
	demoCmd.Flags().DurationVar(&demoReplyDelay, "delay", 600*time.Millisecond, "Simulated reply latency")
	demoCmd.Flags().BoolVar(&demoServeOnly, "serve", false, "Only run the mock backend")
	demoCmd.Flags().StringVar(&demoAddr, "addr", "127.0.0.1:0", "Listen address for the mock backend")
	rootCmd.AddCommand(demoCmd)
}

func demoOptions() mockserver.Options {
	return mockserver.Options{
		FreeMessageLimit: demoMessageLimit,
		ConfirmAfter:     demoConfirmAfter,
		ReplyDelay:       demoReplyDelay,
	}
}

// startDemoBackend serves a mock backend on addr until ctx is done. It
// returns the base URL once the listener is up.
func startDemoBackend(ctx context.Context, srv *mockserver.Server, addr string) (string, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to start mock backend: %w", err)
	}

	hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		err := hs.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hs.Shutdown(shutdownCtx)
	}()

	return "http://" + ln.Addr().String(), errc, nil
}

// demoConfig is a throwaway config signed in to the mock backend.
func demoConfig(dir, baseURL, token, email string) (*config.Config, error) {
	cfg, err := config.LoadFrom(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, err
	}
	cfg.SetServerURL(baseURL)
	cfg.SetCredentials(token, email)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runDemo(cmd *cobra.Command, _ []string) error {
	defer logger.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	srv := mockserver.New(demoOptions())
	baseURL, errc, err := startDemoBackend(ctx, srv, demoAddr)
	if err != nil {
		return err
	}
	log := logger.WithComponent("demo")
	log.Info("mock backend listening", "url", baseURL)

	if demoServeOnly {
		fmt.Fprintf(cmd.OutOrStdout(), "Mock backend listening on %s (ctrl+c to stop)\n", baseURL)
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		}
	}

	dir, err := os.MkdirTemp("", "parley-demo-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	cfg, err := demoConfig(dir, baseURL, srv.IssueToken(demoEmail), demoEmail)
	if err != nil {
		return err
	}
	return runApp(app.New(cfg, newClient(cfg), app.WithoutPersistence()))
}
