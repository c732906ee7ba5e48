package executor

import (
	"errors"
	"fmt"
	"strings"
)

// Subtask input errors. The runner returns these without spawning anything.
var (
	ErrMissingCommand = errors.New("subtask command is required")
	ErrMissingPrompt  = errors.New("subtask prompt is required")
)

// ExecutionError reports a command that exited non-zero.
type ExecutionError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// DuplicateIDError is returned when a task declares the same subtask id twice.
type DuplicateIDError struct {
	IDs []string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate subtask ids: %s", strings.Join(e.IDs, ", "))
}

// StageError wraps the failure of a singleton stage, which aborts the task.
type StageError struct {
	Stage     int
	SubtaskID string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d: subtask %s failed: %v", e.Stage, e.SubtaskID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
