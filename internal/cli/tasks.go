package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pablasso/orca/internal/cli/app"
	"github.com/pablasso/orca/internal/report"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/tui/styles"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List execution records",
	Long:  "Lists the execution records in the storage directory, most recently started first.",
	Args:  cobra.NoArgs,
	RunE:  runTasks,
}

func runTasks(cmd *cobra.Command, args []string) error {
	records, err := app.From(cmd).Store().List()
	if err != nil {
		return err
	}
	return printTasks(os.Stdout, records)
}

func printTasks(w io.Writer, records []*task.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found.")
		return err
	}

	t := styles.Table("TASK", "STATUS", "DONE", "MODE", "STARTED", "DURATION")
	for _, rec := range records {
		counts := rec.Counts()
		t.Row(
			rec.TaskID,
			styles.Status(rec.Status).Render(string(rec.Status)),
			fmt.Sprintf("%d/%d", counts[task.StatusCompleted], len(rec.Subtasks)),
			string(rec.ExecutionMode),
			humanize.Time(rec.StartTime),
			report.HumanDuration(rec.Duration()),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
