package task

import (
	"encoding/json"
	"fmt"

	"github.com/pablasso/orca/internal/markdown"
	"github.com/spf13/cobra"
)

var (
	convertOutputPath string
	convertAutoAmend  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <task.md>",
	Short: "Convert a markdown task file to JSON",
	Long: `Parses a structured markdown task file into a validated JSON document that
'orca task execute' accepts. Without --output-path the JSON is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertOutputPath, "output-path", "", "Where to write the JSON output")
	convertCmd.Flags().BoolVar(&convertAutoAmend, "auto-amend", true, "Amend the task to the template before converting when sections are missing")
}

func runConvert(cmd *cobra.Command, args []string) error {
	out := stdout(cmd)

	content, err := markdown.ReadFile(args[0])
	if err != nil {
		return err
	}

	if convertAutoAmend && len(markdown.CheckRequiredSections(content)) > 0 {
		fmt.Fprintln(out, "Task file does not fully conform to template guide. Amending...")
		content = markdown.Amend(content)
	}

	doc, err := markdown.Convert(content)
	if err != nil {
		return fmt.Errorf("failed to convert task: %w", err)
	}

	if convertOutputPath != "" {
		if err := markdown.WriteJSON(doc, convertOutputPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Task converted successfully. JSON written to %s\n", convertOutputPath)
		return nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
