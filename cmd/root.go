package cmd

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/app"
	"github.com/zhubert/parley/internal/clipboard"
	"github.com/zhubert/parley/internal/config"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	serverURL             string
	logFilePath           string
	version, commit, date string
)

var errNotLoggedIn = perrors.NotSignedIn()

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Terminal chat client for the parley assistant",
	Long: `Parley is a terminal client for the parley assistant service.

Run it without a subcommand to open the chat TUI: browse past conversations,
attach files, and upgrade your plan without leaving the terminal.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging (on by default)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend URL (overrides server_url and PARLEY_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "", "Debug log file (default $PARLEY_LOG_FILE or parley-debug.log in the temp dir)")
}

func initConfig() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
	if logFilePath != "" {
		if err := logger.Init(logFilePath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("parley %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("parley %s\n", version)
}

func userAgent() string {
	if version == "" {
		return "parley/dev"
	}
	return "parley/" + version
}

// loadConfig reads the config and applies --server on top of it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if serverURL != "" {
		cfg.SetServerURL(serverURL)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *api.Client {
	return api.New(cfg.GetServerURL(),
		api.WithToken(cfg.GetToken()),
		api.WithUserAgent(userAgent()),
	)
}

// loggedInClient returns a client for commands that need an account.
func loggedInClient() (*config.Config, *api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.IsLoggedIn() {
		return nil, nil, errNotLoggedIn
	}
	return cfg, newClient(cfg), nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Close()

	return runApp(app.New(cfg, newClient(cfg)))
}

func runApp(m *app.Model) error {
	if err := clipboard.Init(); err != nil {
		logger.WithComponent("clipboard").Warn("clipboard unavailable", "error", err)
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
