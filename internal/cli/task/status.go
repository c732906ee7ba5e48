package task

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/pablasso/orca/internal/cli/app"
	"github.com/pablasso/orca/internal/report"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/tui/styles"
	"github.com/spf13/cobra"
)

const errorColumnWidth = 40

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show the status of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	rec, err := app.From(cmd).Store().Load(args[0])
	if errors.Is(err, task.ErrNotFound) {
		return fmt.Errorf("task %s not found", args[0])
	}
	if err != nil {
		return err
	}
	printStatus(stdout(cmd), rec)
	return nil
}

func printStatus(w io.Writer, rec *task.Record) {
	fmt.Fprintf(w, "Status for task %s: %s (%s mode, %s)\n",
		rec.TaskID, rec.Status, rec.ExecutionMode, report.HumanDuration(rec.Duration()))
	if rec.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", rec.Error)
	}

	t := styles.Table("SUBTASK", "STATUS", "EXIT", "DURATION", "ERROR")
	for _, st := range rec.Subtasks {
		exit, duration := "-", "-"
		if st.ExitCode != nil {
			exit = strconv.Itoa(*st.ExitCode)
		}
		if st.StartTime != nil && st.EndTime != nil {
			duration = report.HumanDuration(st.EndTime.Sub(*st.StartTime))
		}
		t.Row(st.ID, styles.Status(st.Status).Render(string(st.Status)), exit, duration, truncate(st.Error, errorColumnWidth))
	}
	fmt.Fprintln(w, t.Render())

	counts := rec.Counts()
	total := len(rec.Subtasks)
	percent := 0
	if total > 0 {
		percent = counts[task.StatusCompleted] * 100 / total
	}
	fmt.Fprintf(w, "Overall progress: %d%% (%d/%d subtasks complete)\n", percent, counts[task.StatusCompleted], total)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
