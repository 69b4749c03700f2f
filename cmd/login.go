package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	huh "charm.land/huh/v2"
	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/logger"
)

const requestTimeout = 30 * time.Second

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the access token",
	Long: `Signs in to the backend and stores the bearer token in ~/.parley/config.json.

Missing credentials are prompted for interactively.

Examples:
  parley login
  parley login --email you@example.com
  parley login --server http://localhost:8000`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// promptCredentials asks for whatever the flags left out.
var promptCredentials = func(email, password string) (string, string, error) {
	var fields []huh.Field
	if email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&email))
	}
	if password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password))
	}
	if len(fields) == 0 {
		return email, password, nil
	}
	err := huh.NewForm(huh.NewGroup(fields...)).Run()
	return email, password, err
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	email, password := strings.TrimSpace(loginEmail), loginPassword
	if email == "" || password == "" {
		email, password, err = promptCredentials(email, password)
		if err != nil {
			return err
		}
		email = strings.TrimSpace(email)
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	sess, err := newClient(cfg).Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign in failed: %s", api.Reason(err))
	}

	cfg.SetCredentials(sess.AccessToken, email)
	if err := cfg.Save(); err != nil {
		return err
	}
	logger.WithComponent("cmd").Info("signed in", "email", email, "server", cfg.GetServerURL())

	printUser(cmd.OutOrStdout(), sess.User)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.IsLoggedIn() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
		return nil
	}

	cfg.ClearCredentials()
	cfg.SetLastConversationID("")
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func printUser(w io.Writer, u api.User) {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	fmt.Fprintf(w, "Signed in as %s (%s plan)\n", name, u.Role)
	if u.IsFree() && u.MessageLimit > 0 {
		fmt.Fprintf(w, "  %d/%d messages used\n", u.MessageCount, u.MessageLimit)
	}
}
