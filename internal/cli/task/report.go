package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pablasso/orca/internal/cli/app"
	"github.com/pablasso/orca/internal/report"
	"github.com/pablasso/orca/internal/task"
	"github.com/spf13/cobra"
)

var reportOutputPath string

var reportCmd = &cobra.Command{
	Use:   "report <task-id> <subtask-id>",
	Short: "Generate a report for an executed subtask",
	Long:  "Renders the markdown report for one subtask from its persisted record. Without --output-path the report is printed.",
	Args:  cobra.ExactArgs(2),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOutputPath, "output-path", "", "Where to save the report")
}

func runReport(cmd *cobra.Command, args []string) error {
	taskID, subtaskID := args[0], args[1]

	rec, err := app.From(cmd).Store().Load(taskID)
	if errors.Is(err, task.ErrNotFound) {
		return fmt.Errorf("task %s not found", taskID)
	}
	if err != nil {
		return err
	}

	r, ok := report.FromRecord(rec, subtaskID, "")
	if !ok {
		return fmt.Errorf("subtask %s not found in task %s", subtaskID, taskID)
	}

	content, err := report.RenderSubtask(r)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	if reportOutputPath == "" {
		fmt.Fprint(out, content)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(reportOutputPath), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(reportOutputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(out, "Report generated successfully: %s\n", reportOutputPath)
	return nil
}
