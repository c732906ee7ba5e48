package task

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pablasso/orca/internal/cli/app"
	"github.com/pablasso/orca/internal/config"
	"github.com/pablasso/orca/internal/logging"
	"github.com/spf13/cobra"
)

// newTestCommand returns a command writing to a buffer, with an app whose
// storage and reports live under a temp dir.
func newTestCommand(t *testing.T) (*cobra.Command, *bytes.Buffer, *app.App) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Storage.Dir = filepath.Join(dir, "tasks")
	cfg.Reports.Dir = filepath.Join(dir, "reports")
	cfg.Logging.Dir = ""
	a := &app.App{Config: cfg, Logger: logging.NopLogger()}

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(app.WithApp(context.Background(), a))
	return cmd, &buf, a
}

// copyTestdata copies a markdown fixture into a temp dir and returns its path.
func copyTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "markdown", "testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// setFlag sets a package-level flag variable for the duration of the test.
func setFlag[T any](t *testing.T, p *T, v T) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}
