package cli

import (
	"github.com/pablasso/orca/internal/cli/app"
	taskcmd "github.com/pablasso/orca/internal/cli/task"
	"github.com/pablasso/orca/internal/config"
	"github.com/pablasso/orca/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "orca",
	Short: "Dependency-aware task orchestration for AI coding agents",
	Long: `Orca turns markdown task files into dependency graphs and runs their subtasks
as shell commands or agent prompts, sequentially or in parallel stages.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
	RunE:              runDashboard,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .orca/config.yaml, then ~/.config/orca/config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("storage-dir", "", "directory holding execution records")

	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("storage.dir", flags.Lookup("storage-dir"))

	rootCmd.AddCommand(initCmd, deinitCmd, serveCmd, tasksCmd, dashboardCmd, taskcmd.TaskCmd)
}

// setup loads configuration and opens the log before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	a.Logger.Debug("command started", "command", cmd.CommandPath(), "config", v.ConfigFileUsed())
	cmd.SetContext(app.WithApp(cmd.Context(), a))
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	_ = app.From(cmd).Close()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
