package cli

import (
	"errors"
	"os"
	"testing"
)

func TestPrerequisiteError(t *testing.T) {
	t.Run("formats error with check, message, and help", func(t *testing.T) {
		err := &PrerequisiteError{
			Check:   "Test Check",
			Message: "Something went wrong",
			Help:    "Try doing X to fix it.",
		}

		expected := "Test Check: Something went wrong\n\nTry doing X to fix it."
		if err.Error() != expected {
			t.Errorf("got %q, want %q", err.Error(), expected)
		}
	})
}

func TestCheckAgent(t *testing.T) {
	original := lookupAgent
	defer func() { lookupAgent = original }()

	t.Run("agent on PATH returns nil", func(t *testing.T) {
		lookupAgent = func(string) bool { return true }

		if err := checkAgent("claude"); err != nil {
			t.Errorf("expected nil error, got: %v", err)
		}
	})

	t.Run("missing agent returns PrerequisiteError", func(t *testing.T) {
		lookupAgent = func(string) bool { return false }

		err := checkAgent("claude")
		var prereqErr *PrerequisiteError
		if !errors.As(err, &prereqErr) {
			t.Fatalf("expected PrerequisiteError, got %T", err)
		}
		if prereqErr.Check != "Agent CLI" {
			t.Errorf("expected check 'Agent CLI', got %q", prereqErr.Check)
		}
	})
}

func TestIsInitialized(t *testing.T) {
	t.Run("returns false without .orca", func(t *testing.T) {
		t.Chdir(t.TempDir())

		if IsInitialized() {
			t.Error("expected IsInitialized to be false")
		}
		if err := RequireInitialized(); err == nil {
			t.Error("expected RequireInitialized to fail")
		}
	})

	t.Run("returns true with .orca directory", func(t *testing.T) {
		t.Chdir(t.TempDir())

		if err := os.Mkdir(".orca", 0755); err != nil {
			t.Fatalf("failed to create .orca: %v", err)
		}

		if !IsInitialized() {
			t.Error("expected IsInitialized to be true")
		}
		if err := RequireInitialized(); err != nil {
			t.Errorf("expected RequireInitialized to pass, got %v", err)
		}
	})
}
