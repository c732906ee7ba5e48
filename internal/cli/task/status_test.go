package task

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pablasso/orca/internal/graph"
	"github.com/pablasso/orca/internal/task"
)

func savedRecord(t *testing.T, store *task.Store) *task.Record {
	t.Helper()
	start := time.Now().Add(-2 * time.Second)
	end := start.Add(1500 * time.Millisecond)
	code := 1
	rec := &task.Record{
		TaskID:        "task-st",
		Status:        task.StatusCompleted,
		ExecutionMode: graph.ModeParallel,
		StartTime:     start,
		EndTime:       &end,
		Subtasks: []task.SubtaskState{
			{ID: "1", Status: task.StatusCompleted, Output: "indexed 42 files", StartTime: &start, EndTime: &end},
			{ID: "2", Status: task.StatusFailed, Error: "exit status 1", ExitCode: &code, StartTime: &start, EndTime: &end},
			{ID: "3", Status: task.StatusPending},
		},
	}
	if err := store.Save(rec); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}
	return rec
}

func TestRunStatus(t *testing.T) {
	t.Run("renders subtasks and overall progress", func(t *testing.T) {
		cmd, out, a := newTestCommand(t)
		savedRecord(t, a.Store())

		if err := runStatus(cmd, []string{"task-st"}); err != nil {
			t.Fatalf("status failed: %v", err)
		}

		got := out.String()
		for _, want := range []string{"Status for task task-st: completed", "SUBTASK", "exit status 1", "Overall progress: 33% (1/3 subtasks complete)"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, got)
			}
		}
	})

	t.Run("unknown task fails", func(t *testing.T) {
		cmd, _, _ := newTestCommand(t)

		err := runStatus(cmd, []string{"task-missing"})
		if err == nil || err.Error() != "task task-missing not found" {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("truncate(long) = %q, want abcde...", got)
	}
}

func TestRunReport(t *testing.T) {
	t.Run("prints the report", func(t *testing.T) {
		cmd, out, a := newTestCommand(t)
		savedRecord(t, a.Store())

		if err := runReport(cmd, []string{"task-st", "1"}); err != nil {
			t.Fatalf("report failed: %v", err)
		}
		if !strings.Contains(out.String(), "# Task 1: 1") || !strings.Contains(out.String(), "indexed 42 files") {
			t.Errorf("unexpected report:\n%s", out.String())
		}
	})

	t.Run("writes to output path", func(t *testing.T) {
		cmd, _, a := newTestCommand(t)
		savedRecord(t, a.Store())
		output := filepath.Join(t.TempDir(), "reports", "r.md")
		setFlag(t, &reportOutputPath, output)

		if err := runReport(cmd, []string{"task-st", "2"}); err != nil {
			t.Fatalf("report failed: %v", err)
		}
		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if !strings.Contains(string(data), "## Errors") {
			t.Errorf("expected errors section, got:\n%s", data)
		}
	})

	t.Run("unknown subtask fails", func(t *testing.T) {
		cmd, _, a := newTestCommand(t)
		savedRecord(t, a.Store())

		if err := runReport(cmd, []string{"task-st", "9"}); err == nil {
			t.Fatal("expected error for unknown subtask")
		}
	})
}
