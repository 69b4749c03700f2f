package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/logger"
)

var skipConfirm bool

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "List or delete past conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, newest first",
	Args:  cobra.NoArgs,
	RunE:  runConversationsList,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete conversations",
	Long: `Deletes one or more conversations from the backend.
Prompts for confirmation unless --yes is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConversationsDelete,
}

func init() {
	conversationsDeleteCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)
	rootCmd.AddCommand(conversationsCmd)
}

func runConversationsList(cmd *cobra.Command, _ []string) error {
	cfg, client, err := loggedInClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	items, err := client.ListConversations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %s", api.Reason(err))
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No conversations yet")
		return nil
	}
	last := cfg.GetLastConversationID()
	for _, it := range items {
		marker := " "
		if it.ID == last {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-36s  %s\n", marker, it.ID, chat.SummarizeTitle(it.Title))
	}
	return nil
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	cfg, client, err := loggedInClient()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !skipConfirm {
		prompt := fmt.Sprintf("Delete %d conversation(s)?", len(args))
		if !confirm(cmd.InOrStdin(), out, prompt) {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
	}

	var failed int
	for _, id := range args {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		err := client.DeleteConversation(ctx, id)
		cancel()
		if err != nil {
			failed++
			logger.WithConversation(id).Warn("delete failed", "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to delete %s: %s\n", id, api.Reason(err))
			continue
		}
		if cfg.GetLastConversationID() == id {
			cfg.SetLastConversationID("")
		}
		fmt.Fprintf(out, "Deleted %s\n", id)
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d deletions failed", failed, len(args))
	}
	return nil
}

// confirm prompts for a yes/no answer; anything but y/yes is a no.
func confirm(input io.Reader, out io.Writer, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
