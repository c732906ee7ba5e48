// Package ai invokes the Claude Code CLI for prompt-driven subtasks.
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pablasso/orca/internal/executor"
	"github.com/pablasso/orca/internal/logging"
	"github.com/pablasso/orca/internal/report"
	"github.com/pablasso/orca/internal/task"
)

// CommandContext is the function used to create exec.Cmd instances.
// It can be replaced in tests to mock command execution.
var CommandContext = exec.CommandContext

// DefaultCommand is the agent binary looked up on PATH.
const DefaultCommand = "claude"

// DefaultTimeout bounds a single agent invocation.
const DefaultTimeout = 5 * time.Minute

// ErrTimeout is returned when the agent does not finish within its timeout.
var ErrTimeout = errors.New("agent invocation timed out")

// IsAvailable checks if binary exists in PATH.
func IsAvailable(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// Agent runs prompts through the CLI in print mode.
type Agent struct {
	Command string
	Timeout time.Duration
}

// NewAgent creates an Agent. Empty or zero values fall back to the defaults.
func NewAgent(command string, timeout time.Duration) *Agent {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Agent{Command: command, Timeout: timeout}
}

// Ask runs `<command> --print <prompt>` in workDir and returns trimmed stdout.
// A non-zero exit returns an *executor.ExecutionError.
func (a *Agent) Ask(ctx context.Context, prompt, workDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	cmd := CommandContext(ctx, a.Command, "--print", prompt)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%w after %s", ErrTimeout, a.Timeout)
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &executor.ExecutionError{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("failed to execute %s: %w", a.Command, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// ClaudeRunner is an executor.Runner for subtasks that carry a prompt.
// When ReportsDir is set, each subtask leaves a markdown report behind.
type ClaudeRunner struct {
	Agent      *Agent
	TaskID     string
	Mode       string
	ReportsDir string
	Logger     *logging.Logger
}

// NewClaudeRunner creates a runner using agent.
func NewClaudeRunner(agent *Agent) *ClaudeRunner {
	return &ClaudeRunner{Agent: agent, Logger: logging.NopLogger()}
}

// Run sends st.Prompt to the agent.
func (r *ClaudeRunner) Run(ctx context.Context, st task.Subtask) (executor.Result, error) {
	if st.Prompt == "" {
		return executor.Result{}, executor.ErrMissingPrompt
	}

	start := time.Now()
	output, err := r.Agent.Ask(ctx, st.Prompt, "")
	elapsed := time.Since(start)

	res := executor.Result{Output: output}
	var execErr *executor.ExecutionError
	if errors.As(err, &execErr) {
		res.ExitCode = execErr.ExitCode
	}

	if r.ReportsDir != "" {
		r.writeReport(st, res, err, elapsed)
	}
	return res, err
}

func (r *ClaudeRunner) writeReport(st task.Subtask, res executor.Result, runErr error, elapsed time.Duration) {
	rep := report.SubtaskReport{
		TaskID:      r.TaskID,
		SubtaskID:   st.ID,
		Title:       st.Title,
		Description: st.Description,
		Mode:        string(st.ExecutionMode),
		Executor:    r.Agent.Command,
		Status:      task.StatusCompleted,
		Response:    res.Output,
		ExitCode:    &res.ExitCode,
		Duration:    elapsed,
	}
	if rep.Mode == "" {
		rep.Mode = r.Mode
	}
	if rep.Title == "" {
		rep.Title = st.ID
	}
	if runErr != nil {
		rep.Status = task.StatusFailed
		rep.Error = runErr.Error()
	}

	path, err := report.WriteSubtask(r.ReportsDir, rep)
	if err != nil {
		r.logger().Warn("failed to write subtask report", "subtask_id", st.ID, "error", err)
		return
	}
	r.logger().Debug("subtask report written", "subtask_id", st.ID, "path", path)
}

func (r *ClaudeRunner) logger() *logging.Logger {
	if r.Logger == nil {
		return logging.NopLogger()
	}
	return r.Logger
}
