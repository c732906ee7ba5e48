package task

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const lockExt = ".lock"

// TaskLock manages a lock file that prevents concurrent executions of the
// same task id against one storage directory.
type TaskLock struct {
	taskID string
	path   string
}

// NewTaskLock creates a lock manager for taskID inside dir.
func NewTaskLock(dir, taskID string) *TaskLock {
	return &TaskLock{
		taskID: taskID,
		path:   filepath.Join(dir, taskID+lockExt),
	}
}

// Acquire attempts to acquire the lock.
// Returns an error if the lock is held by another running process.
// Stale locks (from dead processes) are removed and acquisition is retried once.
func (l *TaskLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	err := l.create()
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	held, err := l.IsLocked()
	if err != nil {
		return err
	}
	if held {
		pid, _ := l.owner()
		return fmt.Errorf("task %s is already running (PID %d)", l.taskID, pid)
	}

	// IsLocked removed the stale file; try exactly once more.
	if err := l.create(); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("lock acquired by another process during retry")
		}
		return fmt.Errorf("failed to create lock file on retry: %w", err)
	}
	return nil
}

func (l *TaskLock) create() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()
	if writeErr != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", writeErr)
	}
	return nil
}

// Release removes the lock file. Releasing an absent lock is not an error.
func (l *TaskLock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// IsLocked reports whether the lock is currently held by a live process.
// If the lock file is stale or invalid, it is removed and false is returned.
func (l *TaskLock) IsLocked() (bool, error) {
	pid, err := l.owner()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		if _, ok := err.(*strconv.NumError); !ok {
			return false, fmt.Errorf("failed to read existing lock file: %w", err)
		}
	} else if processExists(pid) {
		return true, nil
	}

	if removeErr := os.Remove(l.path); removeErr != nil && !os.IsNotExist(removeErr) {
		return false, fmt.Errorf("failed to remove stale lock file: %w", removeErr)
	}
	return false, nil
}

func (l *TaskLock) owner() (int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// processExists uses signal 0, which checks for existence without delivering anything.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
