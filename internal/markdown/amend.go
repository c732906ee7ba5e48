package markdown

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/pablasso/orca/internal/graph"
)

var (
	dependsOnRe     = regexp.MustCompile(`(?i)depends\s+on:?\s+([^.\n]+)`)
	titleLineRe     = regexp.MustCompile(`^#\s+Task\s+\d+:`)
	subtaskLineRe   = regexp.MustCompile(`^###\s+Task\s+\d+:`)
	taskNumberRe    = regexp.MustCompile(`#\s*Task\s+(\d+)`)
	priorityLineRe  = regexp.MustCompile(`^\*\*Priority\*\*:`)
	plainListItemRe = regexp.MustCompile(`^(\s*-\s+)([^\[\]]+)$`)
)

// CheckRequiredSections returns the required sections missing from content,
// in template order.
func CheckRequiredSections(content string) []string {
	var missing []string
	for _, s := range RequiredSections {
		if !hasSection(content, s) {
			missing = append(missing, s)
		}
	}
	return missing
}

func hasSection(content, s string) bool {
	if !strings.HasPrefix(s, "#") {
		return strings.Contains(content, s)
	}
	re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(s) + `(?:[:\s]|$)`)
	return re.MatchString(content)
}

// DetectExecutionMode reads the execution mode and dependencies a subtask
// describes in prose. Any mention of "parallel" selects parallel mode.
// Dependencies come from a "depends on" phrase and are returned as task-N.
func DetectExecutionMode(text string) (graph.Mode, []string) {
	mode := graph.ModeSequential
	if strings.Contains(strings.ToLower(text), "parallel") {
		mode = graph.ModeParallel
	}

	deps := []string{}
	if m := dependsOnRe.FindStringSubmatch(text); m != nil {
		deps = taskRefs(m[1])
	}
	return mode, deps
}

// Amend rewrites content to follow the task list template: subtasks gain
// execution mode and dependency lines, missing sections are filled in from
// templates, titles get status markers and list items get checkboxes.
func Amend(content string) string {
	missing := CheckRequiredSections(content)

	if len(missing) > 0 {
		content = addMissingSections(content, missing)
	}
	content = addExecutionInfo(content)
	content = ensureStatusMarkers(content)
	return ensureCheckboxes(content)
}

// AmendFile amends the file at path and returns the result. When outputPath
// is set the result is written there.
func AmendFile(path, outputPath string) (string, error) {
	content, err := ReadFile(path)
	if err != nil {
		return "", err
	}

	amended := Amend(content)
	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(amended), 0644); err != nil {
			return "", fmt.Errorf("failed to write amended document: %w", err)
		}
	}
	return amended, nil
}

func addExecutionInfo(content string) string {
	lines := strings.Split(content, "\n")

	var out []string
	for i := 0; i < len(lines); {
		if !subtaskLineRe.MatchString(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}

		end := i + 1
		for end < len(lines) && !strings.HasPrefix(lines[end], "## ") && !strings.HasPrefix(lines[end], "### ") {
			end++
		}
		out = append(out, amendSubtask(lines[i:end])...)
		i = end
	}
	return strings.Join(out, "\n")
}

// amendSubtask adds the lines a subtask block is missing. block[0] is the
// subtask heading.
func amendSubtask(block []string) []string {
	text := strings.Join(block, "\n")
	lower := strings.ToLower(text)
	mode, deps := DetectExecutionMode(text)

	modeIdx := -1
	for i, line := range block {
		if modeLineRe.MatchString(line) {
			modeIdx = i
			break
		}
	}
	hasMode := modeIdx >= 0 || strings.Contains(lower, "execution mode") || strings.Contains(text, "executionMode")
	hasDeps := strings.Contains(text, "**Dependencies**")

	var insert []string
	if !hasMode {
		insert = append(insert, "**Execution Mode**: "+strings.ToUpper(string(mode)))
	}
	if len(deps) > 0 && !hasDeps {
		insert = append(insert, "**Dependencies**: "+strings.Join(deps, ", "))
	}
	if len(insert) == 0 {
		return block
	}

	if modeIdx >= 0 {
		return slices.Insert(slices.Clone(block), modeIdx+1, insert...)
	}

	at := 0
	for i, line := range block {
		if priorityLineRe.MatchString(line) {
			at = i
			break
		}
	}
	insert = append([]string{""}, insert...)
	return slices.Insert(slices.Clone(block), at+1, insert...)
}

func addMissingSections(content string, missing []string) string {
	taskNum := "001"
	if m := taskNumberRe.FindStringSubmatch(content); m != nil {
		taskNum = m[1]
	}

	for _, s := range sectionOrder {
		if !slices.Contains(missing, s) {
			continue
		}

		switch {
		case s == "# Task":
			content = fmt.Sprintf("# Task %s: [DESCRIPTIVE NAME] %s Not Started\n\n%s", taskNum, markerPending, content)
		case strings.HasPrefix(s, "**"):
			content = insertAfterTitle(content, s)
		case s == "## Implementation Tasks":
			content = addImplementationTasks(content)
		default:
			content = appendSection(content, mustTemplate(s))
		}
	}

	return strings.ReplaceAll(content, "[TASK_NUMBER]", taskNum)
}

func appendSection(content, section string) string {
	return strings.TrimRight(content, "\n") + "\n\n" + section + "\n"
}

// insertAfterTitle places a bold section below the title. Requirements go
// after the objective paragraph when there is one.
func insertAfterTitle(content, s string) string {
	lines := strings.Split(content, "\n")

	at := -1
	for i, line := range lines {
		if titleLineRe.MatchString(line) {
			at = i
			break
		}
	}
	if s == "**Requirements**" {
		if i := indexPrefix(lines, 0, "**Objective**"); i >= 0 {
			at = i
			for at+1 < len(lines) && !isBlank(lines[at+1]) {
				at++
			}
		}
	}

	tmpl := strings.Split(mustTemplate(s), "\n")
	if at < 0 {
		return strings.Join(append(append(tmpl, ""), lines...), "\n")
	}

	insert := append([]string{""}, tmpl...)
	if at+1 < len(lines) && !isBlank(lines[at+1]) {
		insert = append(insert, "")
	}
	return strings.Join(slices.Insert(lines, at+1, insert...), "\n")
}

// addImplementationTasks adds the section heading above existing subtasks,
// or a template subtask plus the verification subtask when there are none.
func addImplementationTasks(content string) string {
	heading := mustTemplate("## Implementation Tasks")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if subtaskLineRe.MatchString(line) {
			return strings.Join(slices.Insert(lines, i, heading, ""), "\n")
		}
	}

	body := heading + "\n\n" +
		strings.ReplaceAll(mustTemplate("### Task"), "[NUMBER]", "1") + "\n\n" +
		strings.ReplaceAll(mustTemplate("### Task Verification"), "[NUMBER]", "2")
	return appendSection(content, body)
}

// ensureStatusMarkers appends a not-started marker to the title and to
// every subtask heading that has neither marker.
func ensureStatusMarkers(content string) string {
	lines := strings.Split(content, "\n")

	titleDone := false
	for i, line := range lines {
		isTitle := !titleDone && titleLineRe.MatchString(line)
		if !isTitle && !subtaskLineRe.MatchString(line) {
			continue
		}
		if isTitle {
			titleDone = true
		}
		if strings.Contains(line, markerPending) || strings.Contains(line, markerCompleted) {
			continue
		}
		lines[i] = strings.TrimRight(line, " ") + " " + markerPending + " Not Started"
	}
	return strings.Join(lines, "\n")
}

// ensureCheckboxes turns plain list items into unchecked checkboxes. Items
// containing brackets and lines inside code fences are left alone.
func ensureCheckboxes(content string) string {
	lines := strings.Split(content, "\n")

	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := plainListItemRe.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + "[ ] " + m[2]
		}
	}
	return strings.Join(lines, "\n")
}
