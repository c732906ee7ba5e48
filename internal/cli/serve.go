package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pablasso/orca/internal/ai"
	"github.com/pablasso/orca/internal/cli/app"
	"github.com/pablasso/orca/internal/executor"
	"github.com/pablasso/orca/internal/rpc"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task orchestration endpoints over stdio",
	Long: `Reads line-delimited JSON-RPC 2.0 requests from stdin and writes one response
per line to stdout. Endpoints are called as "Task Orchestration__<endpoint>".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a := app.From(cmd)

	agent := a.Agent()
	claude := ai.NewClaudeRunner(agent)
	claude.Logger = a.Logger

	exec := a.Executor().
		WithEvents(a.Progress()).
		WithRunner(executor.CommandOrPromptRunner{
			Shell: executor.NewShellRunner(),
			Agent: claude,
		})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := rpc.NewServer(exec, agent, a.Logger)
	return server.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
