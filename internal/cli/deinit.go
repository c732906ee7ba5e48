package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pablasso/orca/internal/cli/app"
	"github.com/spf13/cobra"
)

var (
	deinitForce bool

	// confirmInput is read for the confirmation answer.
	confirmInput io.Reader = os.Stdin
)

var deinitCmd = &cobra.Command{
	Use:   "deinit",
	Short: "Remove Orca from the current directory",
	Long:  "Removes the .orca/ folder with all records, reports and logs. This action cannot be undone.",
	RunE:  runDeinit,
}

func init() {
	deinitCmd.Flags().BoolVarP(&deinitForce, "force", "f", false, "Skip confirmation prompt")
}

func runDeinit(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(orcaDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("orca is not initialized in this directory")
	}
	if err != nil {
		return fmt.Errorf("failed to check .orca directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf(".orca exists but is not a directory")
	}

	a := app.From(cmd)
	taskCount, totalSize, err := calculateDirStats(orcaDir, a.Config.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to analyze .orca/: %w", err)
	}

	if !deinitForce {
		fmt.Printf("This will delete .orca/ (%d tasks, %s). Continue? [y/N] ", taskCount, humanize.Bytes(uint64(totalSize)))

		reader := bufio.NewReader(confirmInput)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// The log file lives under .orca/ on the default layout.
	_ = a.Close()

	if err := os.RemoveAll(orcaDir); err != nil {
		return fmt.Errorf("failed to remove .orca/: %w", err)
	}

	if err := removeFromGitignore(gitignoreEntry); err != nil {
		return fmt.Errorf("failed to update .gitignore: %w", err)
	}

	fmt.Println("Orca has been removed from this directory.")
	return nil
}

// calculateDirStats counts execution records in storageDir and sums the size
// of every file under dir.
func calculateDirStats(dir, storageDir string) (taskCount int, totalSize int64, err error) {
	if matches, globErr := filepath.Glob(filepath.Join(storageDir, "*.json")); globErr == nil {
		taskCount = len(matches)
	}

	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	return
}
