package cli

import (
	"fmt"
	"os"
	"strings"
)

const gitignoreFile = ".gitignore"

// gitignoreEntry keeps task lock files out of version control.
const gitignoreEntry = ".orca/**/*.lock"

// addToGitignore appends entry to .gitignore unless a line already matches.
func addToGitignore(entry string) error {
	content, err := os.ReadFile(gitignoreFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}

	var b strings.Builder
	b.Write(content)
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(entry + "\n")

	return os.WriteFile(gitignoreFile, []byte(b.String()), 0644)
}

// removeFromGitignore drops every line equal to entry. The file is deleted
// when nothing else is left in it.
func removeFromGitignore(entry string) error {
	content, err := os.ReadFile(gitignoreFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var kept []string
	for _, line := range strings.Split(strings.TrimRight(string(content), "\n"), "\n") {
		if strings.TrimSpace(line) == entry {
			continue
		}
		kept = append(kept, line)
	}

	if strings.TrimSpace(strings.Join(kept, "")) == "" {
		if err := os.Remove(gitignoreFile); err != nil {
			return fmt.Errorf("failed to remove %s: %w", gitignoreFile, err)
		}
		return nil
	}
	return os.WriteFile(gitignoreFile, []byte(strings.Join(kept, "\n")+"\n"), 0644)
}
