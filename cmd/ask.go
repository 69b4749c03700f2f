package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/attach"
	perrors "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/reveal"
)

var (
	askConversation string
	askContinue     bool
	askFiles        []string
	askInstant      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the reply",
	Long: `Sends a single message and prints the assistant's reply progressively,
the same way the TUI reveals it.

Examples:
  parley ask "explain goroutines"
  parley ask --file main.go "review this"
  parley ask --continue "and channels?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "Conversation ID to continue")
	askCmd.Flags().BoolVar(&askContinue, "continue", false, "Continue the last conversation")
	askCmd.Flags().StringArrayVarP(&askFiles, "file", "f", nil, "Attach a file (repeatable)")
	askCmd.Flags().BoolVar(&askInstant, "instant", false, "Print the reply at once instead of revealing it")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return perrors.EmptyMessage()
	}

	cfg, client, err := loggedInClient()
	if err != nil {
		return err
	}

	stager := attach.NewStager()
	for _, path := range askFiles {
		f, err := attach.Load(path)
		if err != nil {
			return err
		}
		if rejected := stager.Stage(f); len(rejected) > 0 {
			return rejected[0].Err
		}
	}

	conversationID := askConversation
	if conversationID == "" && askContinue {
		conversationID = cfg.GetLastConversationID()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sendCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := client.Send(sendCtx, api.SendRequest{
		Message:        message,
		ConversationID: conversationID,
		Files:          stager.Files(),
	})
	if err != nil {
		return fmt.Errorf("send failed: %s", api.Reason(err))
	}

	cfg.SetLastConversationID(resp.ConversationID)
	if err := cfg.Save(); err != nil {
		logger.WithComponent("cmd").Warn("failed to remember conversation", "error", err)
	}

	out := cmd.OutOrStdout()
	if askInstant {
		fmt.Fprintln(out, resp.Reply)
	} else if err := revealTo(ctx, out, resp.Reply, reveal.Options{
		Interval:  cfg.RevealInterval(),
		ChunkSize: cfg.GetRevealChunkSize(),
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "conversation: %s\n", resp.ConversationID)
	return nil
}

// revealTo prints text to w as the reveal engine discloses it. Each snapshot
// extends the previous one, so only the new suffix is written.
func revealTo(ctx context.Context, w io.Writer, text string, opts reveal.Options) error {
	printed := 0
	h := reveal.Run(text, opts, func(snapshot string) {
		io.WriteString(w, snapshot[printed:])
		printed = len(snapshot)
	}, nil)

	select {
	case <-h.Done():
	case <-ctx.Done():
		h.Cancel()
		<-h.Done()
		fmt.Fprintln(w)
		return ctx.Err()
	}

	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(w)
	}
	return nil
}
