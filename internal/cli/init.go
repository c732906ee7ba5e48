package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pablasso/orca/internal/cli/app"
	"github.com/pablasso/orca/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize Orca in the current directory",
	Long:  "Creates a .orca/ folder for execution records, reports, logs and a default config.yaml.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if IsInitialized() {
		return fmt.Errorf("orca is already initialized in this directory")
	}

	cfg := app.From(cmd).Config

	dirs := []string{orcaDir, cfg.Storage.Dir, cfg.Reports.Dir}
	if cfg.Logging.Dir != "" {
		dirs = append(dirs, cfg.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := config.Write(config.Default(), filepath.Join(orcaDir, config.FileName)); err != nil {
		return err
	}

	if err := addToGitignore(gitignoreEntry); err != nil {
		return fmt.Errorf("failed to update .gitignore: %w", err)
	}

	fmt.Println("Initialized Orca in", orcaDir)
	if err := checkAgent(cfg.Agent.Command); err != nil {
		fmt.Printf("\nWarning: %v\n", err)
	}
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Write a task file following the template (orca task amend <task.md> fills gaps)")
	fmt.Println("  2. Run: orca task convert <task.md> --output-path task.json")
	fmt.Println("  3. Run: orca task execute task.json")
	return nil
}
