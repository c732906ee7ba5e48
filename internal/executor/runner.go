package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/pablasso/orca/internal/task"
)

// CommandContext builds the child process. Tests replace it to avoid
// spawning real commands.
var CommandContext = exec.CommandContext

// Result is what a subtask produced.
type Result struct {
	Output   string
	ExitCode int
}

// Runner executes a single subtask.
type Runner interface {
	Run(ctx context.Context, st task.Subtask) (Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, st task.Subtask) (Result, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, st task.Subtask) (Result, error) {
	return f(ctx, st)
}

// ShellRunner runs the subtask command through sh -c and captures its output.
// It applies no timeout; callers bound it through ctx.
type ShellRunner struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// NewShellRunner creates a ShellRunner.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{}
}

// Run executes st.Command. A non-zero exit returns an *ExecutionError along
// with the partial result.
func (r *ShellRunner) Run(ctx context.Context, st task.Subtask) (Result, error) {
	if st.Command == "" {
		return Result{}, ErrMissingCommand
	}

	cmd := CommandContext(ctx, "sh", "-c", st.Command)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Output: stdout.String()}
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExecutionError{
			ExitCode: res.ExitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
	}
	return res, err
}

// CommandOrPromptRunner dispatches subtasks that carry only a prompt to Agent
// and everything else to Shell, so a subtask with neither fails with
// ErrMissingCommand. It lets one task mix shell steps with agent steps.
type CommandOrPromptRunner struct {
	Shell Runner
	Agent Runner
}

// Run picks the runner for st.
func (r CommandOrPromptRunner) Run(ctx context.Context, st task.Subtask) (Result, error) {
	if st.Command != "" || st.Prompt == "" || r.Agent == nil {
		return r.Shell.Run(ctx, st)
	}
	return r.Agent.Run(ctx, st)
}
