package task

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pablasso/orca/internal/ai"
	"github.com/pablasso/orca/internal/cli/app"
	"github.com/pablasso/orca/internal/display"
	"github.com/pablasso/orca/internal/executor"
	"github.com/pablasso/orca/internal/graph"
	"github.com/pablasso/orca/internal/markdown"
	"github.com/pablasso/orca/internal/report"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/util"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	executeMode       string
	executeReportsDir string
)

var executeCmd = &cobra.Command{
	Use:   "execute <task.json>",
	Short: "Execute a task",
	Long: `Runs every subtask of a task file in dependency order. The file is either a
document produced by 'orca task convert', whose subtasks run as agent prompts,
or a task descriptor whose subtasks carry shell commands or prompts.`,
	Args: cobra.ExactArgs(1),
	RunE: runExecute,
}

func init() {
	executeCmd.Flags().StringVar(&executeMode, "mode", "", "Execution mode: sequential or parallel (default from config)")
	executeCmd.Flags().StringVar(&executeReportsDir, "reports-dir", "", "Directory for subtask and summary reports (default from config)")
}

// loaded is a task file ready to run.
type loaded struct {
	task     task.Task
	titles   map[string]string
	document bool
}

// loadTaskFile reads a converted document or a task descriptor. A document is
// recognised by its metadata.task_id. An explicit mode overrides the file.
func loadTaskFile(data []byte, mode, fallback graph.Mode) (loaded, error) {
	if gjson.GetBytes(data, "metadata.task_id").Exists() {
		doc, err := markdown.LoadJSON(data)
		if err != nil {
			return loaded{}, err
		}
		if mode == "" {
			mode = fallback
		}
		t := doc.ToTask(mode)
		return loaded{task: t, titles: titlesOf(t), document: true}, nil
	}

	var t task.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return loaded{}, fmt.Errorf("failed to parse task: %w", err)
	}
	switch {
	case mode != "":
		t.ExecutionMode = mode
	case t.ExecutionMode == "":
		t.ExecutionMode = fallback
	}
	if t.ID == "" {
		t.ID = util.NewTaskID()
	}
	return loaded{task: t, titles: titlesOf(t)}, nil
}

func titlesOf(t task.Task) map[string]string {
	titles := make(map[string]string, len(t.Subtasks))
	for _, st := range t.Subtasks {
		titles[st.ID] = st.Title
	}
	return titles
}

func needsAgent(t task.Task) bool {
	for _, st := range t.Subtasks {
		if st.Command == "" && st.Prompt != "" {
			return true
		}
	}
	return false
}

func runExecute(cmd *cobra.Command, args []string) error {
	a := app.From(cmd)
	out := stdout(cmd)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read task file: %w", err)
	}

	var mode graph.Mode
	if executeMode != "" {
		if mode, err = graph.ParseMode(executeMode); err != nil {
			return err
		}
	}
	fallback, err := graph.ParseMode(a.Config.Execution.DefaultMode)
	if err != nil {
		return err
	}

	l, err := loadTaskFile(data, mode, fallback)
	if err != nil {
		return err
	}
	t := l.task
	if len(t.Subtasks) == 0 {
		return fmt.Errorf("no subtasks found in %s", args[0])
	}

	if needsAgent(t) && !ai.IsAvailable(a.Config.Agent.Command) {
		return fmt.Errorf("agent CLI %q not found on PATH; it is needed for subtasks that only carry a prompt", a.Config.Agent.Command)
	}

	reportsDir := executeReportsDir
	if reportsDir == "" {
		reportsDir = a.Config.Reports.Dir
	}

	lock := task.NewTaskLock(a.Config.Storage.Dir, t.ID)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	claude := ai.NewClaudeRunner(a.Agent())
	claude.TaskID = t.ID
	claude.Mode = string(t.ExecutionMode)
	claude.Logger = a.Logger
	if l.document {
		claude.ReportsDir = reportsDir
	}

	status := display.New(out)
	exec := a.Executor().
		WithRunner(executor.CommandOrPromptRunner{Shell: executor.NewShellRunner(), Agent: claude}).
		WithEvents(executor.MultiEvents{status, a.Progress()})

	ctx, cancel := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(out, "Task execution started in %s mode...\n", t.ExecutionMode)
	fmt.Fprintf(out, "Found %d subtasks to execute\n", len(t.Subtasks))

	status.Start()
	rec, runErr := exec.Execute(ctx, t)
	status.Stop()

	if rec == nil {
		return runErr
	}

	counts := rec.Counts()
	fmt.Fprintf(out, "Task %s %s in %s: %d completed, %d failed\n",
		rec.TaskID, rec.Status, report.HumanDuration(rec.Duration()),
		counts[task.StatusCompleted], counts[task.StatusFailed])

	if l.document {
		path, err := report.WriteSummary(reportsDir, rec, l.titles)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Results summary saved to %s\n", path)
	}

	if rec.Status == task.StatusFailed {
		return fmt.Errorf("task %s failed: %w", rec.TaskID, runErr)
	}
	return nil
}
