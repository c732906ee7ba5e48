package ai

import (
	"fmt"
	"strings"
)

// BuildSubtaskPrompt creates the agent prompt for one subtask of a task document.
func BuildSubtaskPrompt(title, description string, steps []string, mode string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Task Execution: %s\n\n", title))

	sb.WriteString("## Description\n")
	sb.WriteString(description)
	sb.WriteString("\n\n")

	sb.WriteString("## Steps to Execute\n")
	for _, step := range steps {
		sb.WriteString(fmt.Sprintf("- %s\n", step))
	}
	sb.WriteString("\n")

	sb.WriteString("## Execution Mode\n")
	sb.WriteString(fmt.Sprintf("This task should be executed in %s mode.\n\n", mode))

	sb.WriteString("## Instructions\n")
	sb.WriteString("Please execute the task described above. For each step:\n")
	sb.WriteString("1. Execute the step\n")
	sb.WriteString("2. Record the results\n")
	sb.WriteString("3. Measure execution time\n\n")

	sb.WriteString("Provide a detailed report of your execution, including:\n")
	sb.WriteString("- What you did for each step\n")
	sb.WriteString("- The results of each step\n")
	sb.WriteString("- Any errors or difficulties encountered\n")
	sb.WriteString("- Time measurements\n")
	sb.WriteString("- A summary of the overall task execution\n")

	return sb.String()
}

// BuildRequestPrompt prefixes prompt with a task description when one is
// given, for ad-hoc agent requests.
func BuildRequestPrompt(prompt, taskDescription string) string {
	if strings.TrimSpace(taskDescription) == "" {
		return prompt
	}
	return fmt.Sprintf("## Task\n%s\n\n%s", taskDescription, prompt)
}
