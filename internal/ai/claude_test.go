package ai

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pablasso/orca/internal/executor"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/testutil"
)

func withCommand(t *testing.T, fn testutil.CommandFunc) {
	t.Helper()
	orig := CommandContext
	CommandContext = fn
	t.Cleanup(func() { CommandContext = orig })
}

func TestAgent_Ask(t *testing.T) {
	rec := testutil.NewCommandRecorder(testutil.MockCommandFunc("  the answer\n"))
	withCommand(t, rec.Func())

	out, err := NewAgent("", 0).Ask(context.Background(), "what is it?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "the answer" {
		t.Errorf("expected trimmed output, got %q", out)
	}

	if len(rec.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(rec.Calls))
	}
	want := []string{"claude", "--print", "what is it?"}
	if strings.Join(rec.Calls[0], "|") != strings.Join(want, "|") {
		t.Errorf("unexpected invocation: %v", rec.Calls[0])
	}
}

func TestAgent_AskFailure(t *testing.T) {
	withCommand(t, testutil.FailingCommandFunc("rate limited", 2))

	_, err := NewAgent("claude", time.Minute).Ask(context.Background(), "p", "")

	var execErr *executor.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %v", err)
	}
	if execErr.ExitCode != 2 || execErr.Stderr != "rate limited" {
		t.Errorf("unexpected error details: %+v", execErr)
	}
}

func TestAgent_AskTimeout(t *testing.T) {
	withCommand(t, testutil.SleepingCommandFunc())

	_, err := NewAgent("claude", 50*time.Millisecond).Ask(context.Background(), "p", "")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestAgent_AskCancelled(t *testing.T) {
	withCommand(t, testutil.SleepingCommandFunc())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := NewAgent("claude", time.Minute).Ask(ctx, "p", "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var execErr *executor.ExecutionError
	if errors.As(err, &execErr) {
		t.Errorf("a killed agent should not report an exit code, got %v", execErr)
	}
}

func TestClaudeRunner_RequiresPrompt(t *testing.T) {
	rec := testutil.NewCommandRecorder(testutil.MockCommandFunc("x"))
	withCommand(t, rec.Func())

	_, err := NewClaudeRunner(NewAgent("", 0)).Run(context.Background(), task.Subtask{ID: "a"})
	if !errors.Is(err, executor.ErrMissingPrompt) {
		t.Errorf("expected ErrMissingPrompt, got %v", err)
	}
	if len(rec.Calls) != 0 {
		t.Error("agent should not be invoked without a prompt")
	}
}

func TestClaudeRunner_WritesReport(t *testing.T) {
	withCommand(t, testutil.MockCommandFunc("all steps done"))
	dir := t.TempDir()

	runner := NewClaudeRunner(NewAgent("", 0))
	runner.TaskID = "task-7"
	runner.Mode = "sequential"
	runner.ReportsDir = dir

	res, err := runner.Run(context.Background(), task.Subtask{
		ID:          "subtask-1",
		Title:       "Write Docs",
		Description: "Document the API.",
		Prompt:      "write docs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Output != "all steps done" || res.ExitCode != 0 {
		t.Errorf("unexpected result: %+v", res)
	}

	data, err := os.ReadFile(filepath.Join(dir, "task-7_task_subtask-1_write_docs.md"))
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	content := string(data)
	for _, want := range []string{"# Task subtask-1: Write Docs", "Document the API.", "all steps done", "sequential mode"} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestBuildSubtaskPrompt(t *testing.T) {
	prompt := BuildSubtaskPrompt("Setup", "Prepare the env.", []string{"1.1 Install", "1.2 Configure"}, "parallel")

	for _, want := range []string{
		"# Task Execution: Setup",
		"## Description\nPrepare the env.",
		"- 1.1 Install\n- 1.2 Configure\n",
		"This task should be executed in parallel mode.",
		"## Instructions",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildRequestPrompt(t *testing.T) {
	if got := BuildRequestPrompt("do it", ""); got != "do it" {
		t.Errorf("expected prompt unchanged, got %q", got)
	}
	got := BuildRequestPrompt("do it", "Refactor the parser")
	if !strings.HasPrefix(got, "## Task\nRefactor the parser\n\n") || !strings.HasSuffix(got, "do it") {
		t.Errorf("unexpected prompt: %q", got)
	}
}
