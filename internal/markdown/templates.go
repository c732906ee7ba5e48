package markdown

import (
	"embed"
	"strings"
)

//go:embed templates/*.md
var templateFS embed.FS

// RequiredSections are the sections every task document must contain.
var RequiredSections = []string{
	"# Task",
	"**Objective**",
	"**Requirements**",
	"## Overview",
	"## Implementation Tasks",
	"## Usage Table",
	"## Version Control Plan",
	"## Resources",
	"## Progress Tracking",
	"## Report Documentation Requirements",
}

// templateFiles maps a section to the template inserted when it is missing.
var templateFiles = map[string]string{
	"**Objective**":                        "objective.md",
	"**Requirements**":                     "requirements.md",
	"## Overview":                          "overview.md",
	"## Research Summary":                  "research_summary.md",
	"## MANDATORY Research Process":        "research_process.md",
	"## Implementation Tasks":              "implementation_tasks.md",
	"### Task":                             "task.md",
	"### Task Verification":                "verification_task.md",
	"## Usage Table":                       "usage_table.md",
	"## Version Control Plan":              "version_control.md",
	"## Resources":                         "resources.md",
	"## Progress Tracking":                 "progress_tracking.md",
	"## Report Documentation Requirements": "report_requirements.md",
}

// sectionOrder is the order sections appear in the template.
var sectionOrder = []string{
	"# Task",
	"**Objective**",
	"**Requirements**",
	"## Overview",
	"## Research Summary",
	"## MANDATORY Research Process",
	"## Implementation Tasks",
	"### Task",
	"### Task Verification",
	"## Usage Table",
	"## Version Control Plan",
	"## Resources",
	"## Progress Tracking",
	"## Report Documentation Requirements",
}

// Template returns the template text for section, without trailing newlines.
func Template(section string) (string, bool) {
	name, ok := templateFiles[section]
	if !ok {
		return "", false
	}
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(data), "\n"), true
}

func mustTemplate(section string) string {
	t, ok := Template(section)
	if !ok {
		panic("markdown: missing template for " + section)
	}
	return t
}
