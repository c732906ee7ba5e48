// Package task implements the `orca task` subcommands: amending and
// converting markdown task files, executing tasks and inspecting records.
package task

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// TaskCmd is the parent command for task-related subcommands.
var TaskCmd = &cobra.Command{
	Use:   "task",
	Short: "Convert, execute and inspect tasks",
	Long:  `Commands for turning markdown task files into executable tasks, running them and reading their results.`,
}

func init() {
	TaskCmd.AddCommand(amendCmd, convertCmd, executeCmd, statusCmd, reportCmd)
}

// stdout returns the command's output writer, or os.Stdout when run outside
// cobra.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func contextOf(cmd *cobra.Command) context.Context {
	if cmd == nil || cmd.Context() == nil {
		return context.Background()
	}
	return cmd.Context()
}
