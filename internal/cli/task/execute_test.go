package task

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pablasso/orca/internal/graph"
	"github.com/pablasso/orca/internal/task"
)

func writeTaskFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "task.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write task file: %v", err)
	}
	return path
}

func TestLoadTaskFile(t *testing.T) {
	t.Run("descriptor keeps its own mode", func(t *testing.T) {
		l, err := loadTaskFile([]byte(`{"id":"task-x","executionMode":"parallel","subtasks":[{"id":"a","command":"true"}]}`), "", graph.ModeSequential)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if l.document || l.task.ID != "task-x" || l.task.ExecutionMode != graph.ModeParallel {
			t.Errorf("got %+v", l)
		}
	})

	t.Run("explicit mode overrides the descriptor", func(t *testing.T) {
		l, err := loadTaskFile([]byte(`{"executionMode":"parallel","subtasks":[{"id":"a","command":"true"}]}`), graph.ModeSequential, graph.ModeParallel)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if l.task.ExecutionMode != graph.ModeSequential {
			t.Errorf("mode = %s, want sequential", l.task.ExecutionMode)
		}
		if !strings.HasPrefix(l.task.ID, "task-") {
			t.Errorf("expected a generated task id, got %q", l.task.ID)
		}
	})

	t.Run("document is detected by metadata.task_id", func(t *testing.T) {
		cmd, _, _ := newTestCommand(t)
		output := filepath.Join(t.TempDir(), "doc.json")
		setFlag(t, &convertOutputPath, output)
		setFlag(t, &convertAutoAmend, false)
		if err := runConvert(cmd, []string{copyTestdata(t, "sample_task.md")}); err != nil {
			t.Fatalf("convert failed: %v", err)
		}
		data, _ := os.ReadFile(output)

		l, err := loadTaskFile(data, "", graph.ModeParallel)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if !l.document || l.task.ID != "task-007" || l.task.ExecutionMode != graph.ModeParallel {
			t.Errorf("got document=%v id=%s mode=%s", l.document, l.task.ID, l.task.ExecutionMode)
		}
		if l.titles["1"] != "HTTP Intake" {
			t.Errorf("titles[1] = %q, want HTTP Intake", l.titles["1"])
		}
		if !needsAgent(l.task) {
			t.Error("expected document subtasks to need the agent")
		}
	})

	t.Run("malformed JSON fails", func(t *testing.T) {
		if _, err := loadTaskFile([]byte(`{`), "", graph.ModeSequential); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestNeedsAgent(t *testing.T) {
	tests := []struct {
		name     string
		subtasks []task.Subtask
		want     bool
	}{
		{"commands only", []task.Subtask{{ID: "a", Command: "true"}}, false},
		{"prompt only", []task.Subtask{{ID: "a", Prompt: "do it"}}, true},
		{"command wins over prompt", []task.Subtask{{ID: "a", Command: "true", Prompt: "do it"}}, false},
		{"neither field", []task.Subtask{{ID: "a", Command: "true"}, {ID: "b"}}, false},
		{"mixed", []task.Subtask{{ID: "a", Command: "true"}, {ID: "b", Prompt: "do it"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsAgent(task.Task{Subtasks: tt.subtasks}); got != tt.want {
				t.Errorf("needsAgent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunExecute(t *testing.T) {
	t.Run("runs shell subtasks and persists the record", func(t *testing.T) {
		cmd, out, a := newTestCommand(t)
		path := writeTaskFile(t, `{
			"id": "task-cli",
			"executionMode": "parallel",
			"subtasks": [
				{"id": "a", "command": "echo alpha"},
				{"id": "b", "command": "echo beta"},
				{"id": "c", "command": "echo gamma", "dependencies": ["a", "b"]}
			]
		}`)

		if err := runExecute(cmd, []string{path}); err != nil {
			t.Fatalf("execute failed: %v", err)
		}

		rec, err := a.Store().Load("task-cli")
		if err != nil {
			t.Fatalf("expected persisted record: %v", err)
		}
		if rec.Status != task.StatusCompleted {
			t.Errorf("status = %s, want completed", rec.Status)
		}
		if got := rec.Subtask("c").Output; got != "gamma\n" {
			t.Errorf("output of c = %q, want gamma", got)
		}
		if !strings.Contains(out.String(), "Task task-cli completed") {
			t.Errorf("expected summary line, got %q", out.String())
		}

		events, err := a.Progress().ReadEvents("task-cli")
		if err != nil || len(events) == 0 {
			t.Errorf("expected progress events, got %d (%v)", len(events), err)
		}
	})

	t.Run("failed task returns an error", func(t *testing.T) {
		cmd, _, a := newTestCommand(t)
		path := writeTaskFile(t, `{"id":"task-bad","subtasks":[{"id":"a","command":"exit 3"},{"id":"b","command":"echo never","dependencies":["a"]}]}`)

		if err := runExecute(cmd, []string{path}); err == nil {
			t.Fatal("expected error for failed task")
		}

		rec, err := a.Store().Load("task-bad")
		if err != nil {
			t.Fatalf("expected persisted record: %v", err)
		}
		if rec.Status != task.StatusFailed {
			t.Errorf("status = %s, want failed", rec.Status)
		}
		if st := rec.Subtask("b"); st.Status != task.StatusPending {
			t.Errorf("b status = %s, want pending", st.Status)
		}
	})

	t.Run("invalid mode flag fails", func(t *testing.T) {
		cmd, _, _ := newTestCommand(t)
		setFlag(t, &executeMode, "sideways")
		path := writeTaskFile(t, `{"subtasks":[{"id":"a","command":"true"}]}`)

		if err := runExecute(cmd, []string{path}); err == nil {
			t.Fatal("expected error for invalid mode")
		}
	})

	t.Run("empty task fails", func(t *testing.T) {
		cmd, _, _ := newTestCommand(t)
		path := writeTaskFile(t, `{"subtasks":[]}`)

		if err := runExecute(cmd, []string{path}); err == nil {
			t.Fatal("expected error for task without subtasks")
		}
	})

	t.Run("prompt subtasks need the agent", func(t *testing.T) {
		cmd, _, a := newTestCommand(t)
		a.Config.Agent.Command = "orca-agent-that-does-not-exist"
		path := writeTaskFile(t, `{"subtasks":[{"id":"a","prompt":"do it"}]}`)

		err := runExecute(cmd, []string{path})
		if err == nil || !strings.Contains(err.Error(), "not found on PATH") {
			t.Fatalf("expected missing agent error, got %v", err)
		}
	})

	t.Run("subtask without command fails on its own", func(t *testing.T) {
		cmd, _, a := newTestCommand(t)
		a.Config.Agent.Command = "orca-agent-that-does-not-exist"
		path := writeTaskFile(t, `{"id":"task-nocmd","executionMode":"parallel","subtasks":[{"id":"a","command":"echo hi"},{"id":"b"}]}`)

		if err := runExecute(cmd, []string{path}); err != nil {
			t.Fatalf("execute failed: %v", err)
		}

		rec, err := a.Store().Load("task-nocmd")
		if err != nil {
			t.Fatalf("expected persisted record: %v", err)
		}
		if st := rec.Subtask("a"); st.Status != task.StatusCompleted {
			t.Errorf("a status = %s, want completed", st.Status)
		}
		st := rec.Subtask("b")
		if st.Status != task.StatusFailed || st.Error != "subtask command is required" {
			t.Errorf("b = %s %q, want failed with missing command", st.Status, st.Error)
		}
	})
}
