package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/logger"
)

var clearLogs bool

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show or clear the debug log",
	Long: `Prints the path of the debug log. With --clear, removes old parley-*.log
files from the log directory; the log in use is kept.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&clearLogs, "clear", false, "Remove old log files")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, _ []string) error {
	path := logger.Path()
	if path == "" {
		path = logger.DefaultPath()
	}

	out := cmd.OutOrStdout()
	if !clearLogs {
		fmt.Fprintln(out, path)
		return nil
	}

	n, err := logger.ClearLogs(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}
	fmt.Fprintf(out, "Removed %d log file(s)\n", n)
	return nil
}
