package cli

import (
	"fmt"
	"os"

	"github.com/pablasso/orca/internal/ai"
	"github.com/pablasso/orca/internal/config"
)

const orcaDir = config.DirName

// PrerequisiteError represents a failed prerequisite check with helpful remediation info.
type PrerequisiteError struct {
	Check   string
	Message string
	Help    string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s\n\n%s", e.Check, e.Message, e.Help)
}

// lookupAgent is swapped in tests.
var lookupAgent = ai.IsAvailable

// checkAgent verifies the agent CLI is on PATH. Shell-only tasks run without
// it, so callers treat this as a warning outside of prompt execution.
func checkAgent(command string) error {
	if !lookupAgent(command) {
		return &PrerequisiteError{
			Check:   "Agent CLI",
			Message: fmt.Sprintf("%s not found on PATH", command),
			Help:    "Install the agent CLI or set agent.command in .orca/config.yaml. Subtasks with a shell command still run without it.",
		}
	}
	return nil
}

// IsInitialized checks if orca is initialized in the current directory.
func IsInitialized() bool {
	info, err := os.Stat(orcaDir)
	return err == nil && info.IsDir()
}

// RequireInitialized returns an error if orca is not initialized.
func RequireInitialized() error {
	if !IsInitialized() {
		return fmt.Errorf("orca is not initialized. Run 'orca init' first")
	}
	return nil
}
