// Package testutil provides testing utilities for orca.
package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// CommandFunc matches exec.CommandContext and the package-level seams that
// replace it.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// MockCommandFunc creates a mock command that prints output and exits 0.
// Usage: ai.CommandContext = testutil.MockCommandFunc("done")
func MockCommandFunc(output string) CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "printf", "%s", output)
	}
}

// FailingCommandFunc creates a mock command that writes stderr and exits with code.
func FailingCommandFunc(stderr string, code int) CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		script := fmt.Sprintf("printf '%%s' \"$0\" >&2; exit %d", code)
		return exec.CommandContext(ctx, "sh", "-c", script, stderr)
	}
}

// SleepingCommandFunc creates a mock command that blocks until ctx ends.
func SleepingCommandFunc() CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sleep", "30")
	}
}

// CommandRecorder wraps a CommandFunc and records each invocation.
type CommandRecorder struct {
	mu    sync.Mutex
	next  CommandFunc
	Calls [][]string
}

// NewCommandRecorder records calls before delegating to next.
func NewCommandRecorder(next CommandFunc) *CommandRecorder {
	return &CommandRecorder{next: next}
}

// Func returns the recording CommandFunc.
func (r *CommandRecorder) Func() CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		r.mu.Lock()
		r.Calls = append(r.Calls, append([]string{name}, args...))
		r.mu.Unlock()
		return r.next(ctx, name, args...)
	}
}

// SetupTestDir creates a temp directory, resolves symlinks (for macOS),
// changes to it, and registers cleanup to restore the original working directory.
// Returns the resolved temp directory path.
func SetupTestDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	// Resolve symlinks for macOS (/var -> /private/var)
	if resolved, err := filepath.EvalSymlinks(tmpDir); err != nil {
		t.Logf("warning: could not resolve symlinks for temp dir: %v", err)
	} else {
		tmpDir = resolved
	}

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}

	t.Cleanup(func() {
		os.Chdir(originalWd)
	})

	return tmpDir
}
