package markdown

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pablasso/orca/internal/util"
)

// Parse errors for sections every document must have.
var (
	ErrMissingHeader       = errors.New("could not find task ID and title in the first line")
	ErrMissingObjective    = errors.New("could not find objective section")
	ErrMissingRequirements = errors.New("could not find requirements section")
	ErrMissingOverview     = errors.New("could not find overview section")
)

const (
	markerPending   = "⏳"
	markerCompleted = "✅"
)

var (
	headerRe        = regexp.MustCompile(`^# Task (\d+): (.*)$`)
	subtaskHeaderRe = regexp.MustCompile(`^### Task (\d+): (.*)$`)
	requirementRe   = regexp.MustCompile(`^\d+\.\s*(.*)$`)
	stepRe          = regexp.MustCompile(`^- \[[ xX]\] (\d+\.\d+) (.*)$`)
	subStepRe       = regexp.MustCompile(`^\s{2,}- (.*)$`)
	resourceHeadRe  = regexp.MustCompile(`^\*\*(.+?)\*\*:\s*$`)
	linkRe          = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	modeLineRe      = regexp.MustCompile(`(?i)^\*\*Execution Mode\*\*:\s*(\w+)`)
	depsLineRe      = regexp.MustCompile(`^\*\*Dependencies\*\*:\s*(.*)$`)
	taskRefRe       = regexp.MustCompile(`(?i)task[\s-]*(\d+)`)
	separatorRowRe  = regexp.MustCompile(`^[\s|:-]+$`)
)

// resourceKeys maps resource subsection names to the keys used in JSON.
// Other subsections are keyed by their slug.
var resourceKeys = map[string]string{
	"Python Packages":         "python_packages",
	"Packages":                "packages",
	"Documentation":           "documentation",
	"Example Implementations": "examples",
}

// Parse reads a task document written in the task list template.
func Parse(content string) (*Document, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	doc := &Document{
		Metadata: Metadata{Priority: PriorityMedium},
	}

	headerFound := false
	for _, line := range lines {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			doc.Metadata.TaskID = m[1]
			doc.Metadata.Title, doc.Metadata.Status = splitStatus(m[2])
			headerFound = true
			break
		}
	}
	if !headerFound {
		return nil, ErrMissingHeader
	}

	objective, ok := parseObjective(lines)
	if !ok {
		return nil, ErrMissingObjective
	}
	doc.Objective = objective

	requirements, ok := parseRequirements(lines)
	if !ok {
		return nil, ErrMissingRequirements
	}
	doc.Requirements = requirements

	overview, ok := parseOverview(lines)
	if !ok {
		return nil, ErrMissingOverview
	}
	doc.Overview = overview

	doc.Subtasks = parseSubtasks(lines)
	doc.Resources = parseResources(lines)
	doc.UsageExamples = parseUsageTable(lines)

	doc.normalize()
	return doc, nil
}

// splitStatus removes a trailing status marker from a title and reports the
// status it stands for.
func splitStatus(title string) (string, string) {
	status := StatusNotStarted
	if i := strings.Index(title, markerCompleted); i >= 0 {
		return strings.TrimSpace(title[:i]), StatusCompleted
	}
	if i := strings.Index(title, markerPending); i >= 0 {
		if strings.Contains(strings.ToLower(title[i:]), "in progress") {
			status = StatusInProgress
		}
		title = title[:i]
	}
	return strings.TrimSpace(title), status
}

// indexPrefix returns the first line index at or after from starting with prefix.
func indexPrefix(lines []string, from int, prefix string) int {
	for i := from; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], prefix) {
			return i
		}
	}
	return -1
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func parseObjective(lines []string) (string, bool) {
	const prefix = "**Objective**:"
	i := indexPrefix(lines, 0, prefix)
	if i < 0 {
		return "", false
	}

	parts := []string{strings.TrimPrefix(lines[i], prefix)}
	for _, line := range lines[i+1:] {
		if isBlank(line) || strings.HasPrefix(line, "**Requirements**") {
			break
		}
		parts = append(parts, line)
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), true
}

func parseRequirements(lines []string) ([]string, bool) {
	const prefix = "**Requirements**:"
	i := indexPrefix(lines, 0, prefix)
	if i < 0 {
		return nil, false
	}

	var body []string
	if rest := strings.TrimSpace(strings.TrimPrefix(lines[i], prefix)); rest != "" {
		body = append(body, rest)
	}
	j := i + 1
	for len(body) == 0 && j < len(lines) && isBlank(lines[j]) {
		j++
	}
	for ; j < len(lines); j++ {
		line := lines[j]
		if isBlank(line) || strings.HasPrefix(line, "## ") {
			break
		}
		body = append(body, line)
	}

	requirements := []string{}
	for _, line := range body {
		if m := requirementRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			requirements = append(requirements, strings.TrimSpace(m[1]))
			continue
		}
		if n := len(requirements); n > 0 {
			requirements[n-1] += " " + strings.TrimSpace(line)
		}
	}
	return requirements, true
}

func parseOverview(lines []string) (string, bool) {
	i := indexPrefix(lines, 0, "## Overview")
	if i < 0 {
		return "", false
	}

	var parts []string
	for _, line := range lines[i+1:] {
		if strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "**IMPORTANT**") {
			break
		}
		parts = append(parts, line)
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), true
}

// section returns the lines after the heading that starts with prefix, up to
// the next level-two heading.
func section(lines []string, prefix string) []string {
	i := indexPrefix(lines, 0, prefix)
	if i < 0 {
		return nil
	}
	end := indexPrefix(lines, i+1, "## ")
	if end < 0 {
		end = len(lines)
	}
	return lines[i+1 : end]
}

func parseSubtasks(lines []string) []Subtask {
	subtasks := []Subtask{}

	for i := 0; i < len(lines); i++ {
		m := subtaskHeaderRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}

		end := i + 1
		for end < len(lines) && !strings.HasPrefix(lines[end], "### Task") && !strings.HasPrefix(lines[end], "## ") {
			end++
		}

		st := parseSubtaskBody(lines[i+1 : end])
		st.ID = m[1]
		st.Title, st.Status = splitStatus(m[2])
		subtasks = append(subtasks, st)

		i = end - 1
	}
	return subtasks
}

func parseSubtaskBody(body []string) Subtask {
	st := Subtask{Steps: []string{}, Dependencies: []string{}}

	for _, para := range paragraphs(body) {
		first := strings.TrimSpace(para[0])
		if strings.HasPrefix(first, "**") || strings.HasPrefix(first, "-") || strings.HasPrefix(first, "|") {
			continue
		}
		st.Description = strings.TrimSpace(strings.Join(para, "\n"))
		break
	}

	for _, line := range body {
		if m := modeLineRe.FindStringSubmatch(line); m != nil {
			switch mode := strings.ToLower(m[1]); mode {
			case "sequential", "parallel":
				st.ExecutionMode = mode
			}
		}
		if m := depsLineRe.FindStringSubmatch(line); m != nil {
			st.Dependencies = taskRefs(m[1])
		}
	}

	st.Steps = parseSteps(body)
	return st
}

// paragraphs splits lines into runs of non-blank lines.
func paragraphs(lines []string) [][]string {
	var out [][]string
	var cur []string
	for _, line := range lines {
		if isBlank(line) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// parseSteps collects checkbox steps under **Implementation Steps** until
// the next bold section. Indented items are folded into their step.
func parseSteps(body []string) []string {
	steps := []string{}

	i := indexPrefix(body, 0, "**Implementation Steps**")
	if i < 0 {
		return steps
	}

	for _, line := range body[i+1:] {
		if strings.HasPrefix(line, "**") {
			break
		}
		if m := stepRe.FindStringSubmatch(line); m != nil {
			steps = append(steps, m[1]+" "+strings.TrimSpace(m[2]))
			continue
		}
		if m := subStepRe.FindStringSubmatch(line); m != nil && len(steps) > 0 {
			sub := stripCheckbox(strings.TrimSpace(m[1]))
			steps[len(steps)-1] += "\n  - " + sub
		}
	}
	return steps
}

func stripCheckbox(s string) string {
	for _, box := range []string{"[ ] ", "[x] ", "[X] "} {
		if strings.HasPrefix(s, box) {
			return strings.TrimSpace(s[len(box):])
		}
	}
	return s
}

// taskRefs extracts "Task 3" or "task-3" references as task-N ids, in order
// and without repeats.
func taskRefs(text string) []string {
	refs := []string{}
	seen := make(map[string]bool)
	for _, m := range taskRefRe.FindAllStringSubmatch(text, -1) {
		ref := "task-" + m[1]
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

func parseResources(lines []string) map[string][]string {
	resources := map[string][]string{}

	key := ""
	for _, line := range section(lines, "## Resources") {
		if m := resourceHeadRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			key = resourceKey(m[1])
			if _, ok := resources[key]; !ok {
				resources[key] = []string{}
			}
			continue
		}
		item, ok := strings.CutPrefix(strings.TrimSpace(line), "- ")
		if !ok || key == "" {
			continue
		}
		item = stripCheckbox(strings.TrimSpace(item))
		if m := linkRe.FindStringSubmatch(item); m != nil {
			item = fmt.Sprintf("%s: %s", m[1], m[2])
		}
		resources[key] = append(resources[key], item)
	}
	return resources
}

func resourceKey(name string) string {
	if key, ok := resourceKeys[name]; ok {
		return key
	}
	return util.Slugify(name)
}

func parseUsageTable(lines []string) []UsageExample {
	examples := []UsageExample{}

	header := true
	for _, line := range section(lines, "## Usage Table") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		if header {
			header = false
			continue
		}
		if separatorRowRe.MatchString(line) {
			continue
		}

		cells := strings.Split(strings.Trim(line, "|"), "|")
		if len(cells) != 4 {
			continue
		}
		examples = append(examples, UsageExample{
			Command:        strings.TrimSpace(cells[0]),
			Description:    strings.TrimSpace(cells[1]),
			Example:        strings.TrimSpace(cells[2]),
			ExpectedOutput: strings.TrimSpace(cells[3]),
		})
	}
	return examples
}
