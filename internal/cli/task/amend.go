package task

import (
	"errors"
	"fmt"

	"github.com/pablasso/orca/internal/markdown"
	"github.com/spf13/cobra"
)

var (
	amendCheckOnly  bool
	amendOutputPath string
)

// errNotConforming makes `amend --check-only` exit non-zero.
var errNotConforming = errors.New("task file does not conform to template")

var amendCmd = &cobra.Command{
	Use:   "amend <task.md>",
	Short: "Make a markdown task file conform to the template",
	Long: `Adds missing template sections, execution mode and dependency lines, status
markers and checkboxes. With --check-only, only reports the missing sections.`,
	Args: cobra.ExactArgs(1),
	RunE: runAmend,
}

func init() {
	amendCmd.Flags().BoolVar(&amendCheckOnly, "check-only", false, "Only check for template conformance without modifying")
	amendCmd.Flags().StringVar(&amendOutputPath, "output-path", "", "Where to save the amended markdown (default: overwrite the input)")
}

func runAmend(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := stdout(cmd)

	if amendCheckOnly {
		content, err := markdown.ReadFile(path)
		if err != nil {
			return err
		}

		missing := markdown.CheckRequiredSections(content)
		if len(missing) > 0 {
			fmt.Fprintln(out, "Task file does not conform to template. Missing sections:")
			for _, section := range missing {
				fmt.Fprintf(out, "  - %s\n", section)
			}
			return errNotConforming
		}
		fmt.Fprintln(out, "Task file conforms to template guide.")
		return nil
	}

	output := amendOutputPath
	if output == "" {
		output = path
	}
	if _, err := markdown.AmendFile(path, output); err != nil {
		return fmt.Errorf("failed to amend task: %w", err)
	}

	fmt.Fprintf(out, "Task amended successfully. Updated file saved to %s\n", output)
	return nil
}
