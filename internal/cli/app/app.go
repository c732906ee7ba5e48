// Package app carries the loaded configuration and logger from the root
// command to its subcommands.
package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pablasso/orca/internal/ai"
	"github.com/pablasso/orca/internal/config"
	"github.com/pablasso/orca/internal/executor"
	"github.com/pablasso/orca/internal/logging"
	"github.com/pablasso/orca/internal/task"
	"github.com/spf13/cobra"
)

// App is the per-invocation state shared by commands.
type App struct {
	Config *config.Config
	Logger *logging.Logger
}

type ctxKey struct{}

// Default returns an App with default configuration and a discarding logger.
func Default() *App {
	return &App{Config: config.Default(), Logger: logging.NopLogger()}
}

// New builds an App from cfg. The log file is only opened when the parent of
// the log directory exists, so commands run outside an initialized project do
// not create .orca/ as a side effect.
func New(cfg *config.Config) (*App, error) {
	if cfg.Logging.Dir != "" {
		if _, err := os.Stat(filepath.Dir(filepath.Clean(cfg.Logging.Dir))); err != nil {
			return &App{Config: cfg, Logger: logging.NopLogger()}, nil
		}
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, err
	}
	return &App{Config: cfg, Logger: logger}, nil
}

// WithApp returns a context carrying a.
func WithApp(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// From returns the App attached to cmd, or Default when there is none.
func From(cmd *cobra.Command) *App {
	if cmd != nil && cmd.Context() != nil {
		if a, ok := cmd.Context().Value(ctxKey{}).(*App); ok {
			return a
		}
	}
	return Default()
}

// Store opens the record store.
func (a *App) Store() *task.Store {
	return task.NewStore(a.Config.Storage.Dir)
}

// Progress opens the progress logger next to the records.
func (a *App) Progress() *task.ProgressLogger {
	return task.NewProgressLogger(a.Config.Storage.Dir)
}

// Agent returns the configured agent CLI.
func (a *App) Agent() *ai.Agent {
	return ai.NewAgent(a.Config.Agent.Command, a.Config.Agent.Timeout)
}

// Executor returns an executor over the record store, honoring the
// configured parallelism and logging to the app logger.
func (a *App) Executor() *executor.Executor {
	return executor.New(a.Store()).
		WithLogger(a.Logger).
		WithMaxParallel(a.Config.Execution.MaxParallel)
}

// Close releases the log file.
func (a *App) Close() error {
	return a.Logger.Close()
}
