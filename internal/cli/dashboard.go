package cli

import (
	"github.com/pablasso/orca/internal/cli/app"
	"github.com/pablasso/orca/internal/tui"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live task dashboard",
	Long:  "Shows every execution record and reloads as running tasks save progress. Running orca with no arguments opens it too.",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a := app.From(cmd)
	return tui.Run(a.Config.Storage.Dir, a.Logger)
}
